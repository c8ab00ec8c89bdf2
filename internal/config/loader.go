package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default settings file name.
const DefaultConfigFile = ".tunnelcheck"

// ErrConfigNotFound is returned when the settings file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .tunnelcheck settings file.
// Every field is optional; zero values keep the built-in defaults.
type File struct {
	// Ports replaces the candidate port list.
	Ports []int `yaml:"ports,omitempty"`

	// Hosts replaces the host alias list.
	Hosts []string `yaml:"hosts,omitempty"`

	// Origins replaces the CORS test origins.
	Origins []string `yaml:"origins,omitempty"`

	// ExtraOrigins are appended to the (default or replaced) origins.
	ExtraOrigins []string `yaml:"extraOrigins,omitempty"`

	// ProbeTimeout overrides the reachability timeout, e.g. "3s".
	ProbeTimeout time.Duration `yaml:"probeTimeout,omitempty"`

	// CorsTimeout overrides the CORS preflight timeout, e.g. "5s".
	CorsTimeout time.Duration `yaml:"corsTimeout,omitempty"`

	// Concurrency overrides the number of requests in flight per phase.
	Concurrency int `yaml:"concurrency,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply overlays the non-zero settings of the file onto c.
// Origins from the file are normalized with NormalizeOrigin.
func (cf *File) Apply(c *Config) error {
	if len(cf.Ports) > 0 {
		c.Ports = append([]int(nil), cf.Ports...)
	}
	if len(cf.Hosts) > 0 {
		c.Hosts = append([]string(nil), cf.Hosts...)
	}

	if len(cf.Origins) > 0 {
		origins, err := normalizeOrigins(cf.Origins)
		if err != nil {
			return err
		}
		c.Origins = origins
	}
	if len(cf.ExtraOrigins) > 0 {
		extra, err := normalizeOrigins(cf.ExtraOrigins)
		if err != nil {
			return err
		}
		c.Origins = appendUnique(c.Origins, extra...)
	}

	if cf.ProbeTimeout != 0 {
		c.ProbeTimeout = cf.ProbeTimeout
	}
	if cf.CorsTimeout != 0 {
		c.CorsTimeout = cf.CorsTimeout
	}
	if cf.Concurrency != 0 {
		c.Concurrency = cf.Concurrency
	}

	return nil
}

func normalizeOrigins(origins []string) ([]string, error) {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		normalized, err := NormalizeOrigin(origin)
		if err != nil {
			return nil, fmt.Errorf("settings file: %w", err)
		}
		out = append(out, normalized)
	}
	return out, nil
}

func appendUnique(dst []string, values ...string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}

// FindConfigFile searches for the settings file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .tunnelcheck in the project directory
// 3. Look for .tunnelcheck in the user's home directory
//
// Returns the path to the settings file if found, or empty string if not found.
func FindConfigFile(configPath, workDir string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if workDir != "" {
		local := filepath.Join(workDir, DefaultConfigFile)
		if _, err := os.Stat(local); err == nil {
			return local
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
