package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Registry  RegistryConfig
	Extractor ExtractorConfig
	Defaults  DefaultsConfig
}

type RegistryConfig struct {
	DataDir   string  // root directory for metadata and image assets
	Threshold float64 // match threshold, overrides the embedded default when set
}

// MetadataPath returns the path of the metadata document.
func (c *RegistryConfig) MetadataPath() string {
	return filepath.Join(c.DataDir, "metadata.json")
}

// AssetsDir returns the root directory of per-user image directories.
func (c *RegistryConfig) AssetsDir() string {
	return filepath.Join(c.DataDir, "known_faces")
}

type ExtractorConfig struct {
	URL string // face-embedding service base URL (defaults to http://localhost:8000)
}

type DefaultsConfig struct {
	Matching MatchingDefaults `yaml:"matching"`
	Imaging  ImagingDefaults  `yaml:"imaging"`
}

type MatchingDefaults struct {
	Threshold    float64 `yaml:"threshold"`
	MaxNeighbors int     `yaml:"max_neighbors"`
}

type ImagingDefaults struct {
	MaxEdge int `yaml:"max_edge"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var defaults DefaultsConfig
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	dataDir := os.Getenv("REGISTRY_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	defaults.Matching.MaxNeighbors = envInt("MATCH_MAX_NEIGHBORS", defaults.Matching.MaxNeighbors)
	defaults.Imaging.MaxEdge = envInt("IMAGE_MAX_EDGE", defaults.Imaging.MaxEdge)

	return &Config{
		Registry: RegistryConfig{
			DataDir:   dataDir,
			Threshold: envFloat("MATCH_THRESHOLD", defaults.Matching.Threshold),
		},
		Extractor: ExtractorConfig{
			URL: os.Getenv("EXTRACTOR_URL"),
		},
		Defaults: defaults,
	}
}
