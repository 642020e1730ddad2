package config

import (
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REGISTRY_DATA_DIR", "")
	t.Setenv("MATCH_THRESHOLD", "")
	t.Setenv("MATCH_MAX_NEIGHBORS", "")
	t.Setenv("IMAGE_MAX_EDGE", "")
	t.Setenv("EXTRACTOR_URL", "")

	cfg := Load()

	if cfg.Registry.DataDir != "data" {
		t.Errorf("expected default data dir, got %q", cfg.Registry.DataDir)
	}
	if cfg.Registry.Threshold != 0.4 {
		t.Errorf("expected embedded default threshold 0.4, got %f", cfg.Registry.Threshold)
	}
	if cfg.Defaults.Matching.MaxNeighbors != 16 {
		t.Errorf("expected default max neighbors 16, got %d", cfg.Defaults.Matching.MaxNeighbors)
	}
	if cfg.Defaults.Imaging.MaxEdge != 640 {
		t.Errorf("expected default max edge 640, got %d", cfg.Defaults.Imaging.MaxEdge)
	}
	if cfg.Extractor.URL != "" {
		t.Errorf("expected empty extractor URL, got %q", cfg.Extractor.URL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REGISTRY_DATA_DIR", "/srv/faces")
	t.Setenv("MATCH_THRESHOLD", "0.55")
	t.Setenv("MATCH_MAX_NEIGHBORS", "32")
	t.Setenv("IMAGE_MAX_EDGE", "1024")
	t.Setenv("EXTRACTOR_URL", "http://extractor:9000")

	cfg := Load()

	if cfg.Registry.DataDir != "/srv/faces" {
		t.Errorf("expected /srv/faces, got %q", cfg.Registry.DataDir)
	}
	if cfg.Registry.Threshold != 0.55 {
		t.Errorf("expected threshold 0.55, got %f", cfg.Registry.Threshold)
	}
	if cfg.Defaults.Matching.MaxNeighbors != 32 {
		t.Errorf("expected max neighbors 32, got %d", cfg.Defaults.Matching.MaxNeighbors)
	}
	if cfg.Defaults.Imaging.MaxEdge != 1024 {
		t.Errorf("expected max edge 1024, got %d", cfg.Defaults.Imaging.MaxEdge)
	}
	if cfg.Extractor.URL != "http://extractor:9000" {
		t.Errorf("expected extractor URL, got %q", cfg.Extractor.URL)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REGISTRY_DATA_DIR", "")
	t.Setenv("MATCH_THRESHOLD", "not-a-number")
	t.Setenv("MATCH_MAX_NEIGHBORS", "-5")
	t.Setenv("IMAGE_MAX_EDGE", "zero")

	cfg := Load()

	if cfg.Registry.Threshold != 0.4 {
		t.Errorf("invalid threshold must fall back to 0.4, got %f", cfg.Registry.Threshold)
	}
	if cfg.Defaults.Matching.MaxNeighbors != 16 {
		t.Errorf("negative max neighbors must fall back to 16, got %d", cfg.Defaults.Matching.MaxNeighbors)
	}
	if cfg.Defaults.Imaging.MaxEdge != 640 {
		t.Errorf("invalid max edge must fall back to 640, got %d", cfg.Defaults.Imaging.MaxEdge)
	}
}

func TestRegistryConfig_Paths(t *testing.T) {
	cfg := RegistryConfig{DataDir: "/srv/faces"}

	if got := cfg.MetadataPath(); got != filepath.Join("/srv/faces", "metadata.json") {
		t.Errorf("unexpected metadata path %q", got)
	}
	if got := cfg.AssetsDir(); got != filepath.Join("/srv/faces", "known_faces") {
		t.Errorf("unexpected assets dir %q", got)
	}
}
