package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kozaktomas/face-registry/internal/config"
	"github.com/kozaktomas/face-registry/internal/extractor"
	"github.com/kozaktomas/face-registry/internal/registry"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-registry",
	Short: "A CLI tool for managing a face identity registry",
	Long: `Face Registry manages a store of enrolled face identities.
It enrolls users from reference images, matches probe images against the
enrolled set using face embeddings from an external embedding service,
and keeps the metadata document consistent with the stored image files.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// openRegistry loads the configuration and constructs the registry with
// the HTTP extractor client. The initial cache rebuild happens here.
func openRegistry() (*registry.Registry, *config.Config, error) {
	cfg := config.Load()

	ext := extractor.NewClient(cfg.Extractor.URL)
	reg, err := registry.New(
		cfg.Registry.MetadataPath(),
		cfg.Registry.AssetsDir(),
		ext,
		cfg.Registry.Threshold,
		cfg.Defaults.Matching.MaxNeighbors,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("opening registry: %w", err)
	}
	return reg, cfg, nil
}

// readImageFile reads an image from disk for enrollment or identification.
func readImageFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image %s: %w", path, err)
	}
	return data, nil
}
