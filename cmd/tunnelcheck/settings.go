package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/tunnelcheck/internal/config"
)

// addProjectFlags registers the flags shared by diagnose and fix.
func addProjectFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("dir", "d", ".",
		"Project directory containing app.json and package.json")
	cmd.Flags().StringP("config", "c", "",
		"Settings file path (default: .tunnelcheck in the project or home directory)")
	cmd.Flags().Bool("save", false,
		"Record this run in the history database")
}

// buildConfig creates a Config from defaults, the settings file, and the
// shared project flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}
	cfg.WorkDir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory %s: %w", dir, err)
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	if err := loadSettings(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadSettings overlays the settings file onto cfg.
// If the user explicitly specified a file path, a missing file is an error.
// Otherwise the built-in defaults are used silently.
func loadSettings(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	path := config.FindConfigFile(cfg.ConfigFilePath, cfg.WorkDir)

	if path == "" {
		if explicit {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load settings file %s: %w", path, err)
	}
	if err := file.Apply(cfg); err != nil {
		return fmt.Errorf("failed to apply settings file %s: %w", path, err)
	}
	return nil
}
