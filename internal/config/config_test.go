package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Defaults are documented through tests so that changes to them are intentional.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default ports in priority order", func(t *testing.T) {
		t.Parallel()
		want := []int{8081, 19000, 19006, 19001, 19002}
		if !slices.Equal(cfg.Ports, want) {
			t.Errorf("expected ports %v, got %v", want, cfg.Ports)
		}
	})

	t.Run("default hosts start with localhost", func(t *testing.T) {
		t.Parallel()
		want := []string{"localhost", "127.0.0.1", "0.0.0.0"}
		if !slices.Equal(cfg.Hosts, want) {
			t.Errorf("expected hosts %v, got %v", want, cfg.Hosts)
		}
	})

	t.Run("default origins include the tempo origin", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Origins) != 5 {
			t.Fatalf("expected 5 origins, got %d", len(cfg.Origins))
		}
		if cfg.Origins[0] != "https://app.tempo.build" {
			t.Errorf("expected first origin https://app.tempo.build, got %q", cfg.Origins[0])
		}
	})

	t.Run("default ProbeTimeout is 3000ms", func(t *testing.T) {
		t.Parallel()
		if cfg.ProbeTimeout != 3000*time.Millisecond {
			t.Errorf("expected 3s, got %v", cfg.ProbeTimeout)
		}
	})

	t.Run("default CorsTimeout is 5000ms", func(t *testing.T) {
		t.Parallel()
		if cfg.CorsTimeout != 5000*time.Millisecond {
			t.Errorf("expected 5s, got %v", cfg.CorsTimeout)
		}
	})

	t.Run("default WorkDir is current directory", func(t *testing.T) {
		t.Parallel()
		if cfg.WorkDir != "." {
			t.Errorf("expected '.', got %q", cfg.WorkDir)
		}
	})

	t.Run("history is off by default", func(t *testing.T) {
		t.Parallel()
		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false")
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"empty ports", func(c *Config) { c.Ports = nil }, ErrNoPorts},
		{"port zero", func(c *Config) { c.Ports = []int{0} }, ErrInvalidPort},
		{"port too large", func(c *Config) { c.Ports = []int{8081, 70000} }, ErrInvalidPort},
		{"empty hosts", func(c *Config) { c.Hosts = []string{} }, ErrNoHosts},
		{"empty origins", func(c *Config) { c.Origins = nil }, ErrNoOrigins},
		{"origin without scheme", func(c *Config) { c.Origins = []string{"app.tempo.build"} }, ErrInvalidOrigin},
		{"origin with path", func(c *Config) { c.Origins = []string{"https://app.tempo.build/x"} }, ErrInvalidOrigin},
		{"ftp origin", func(c *Config) { c.Origins = []string{"ftp://example.com"} }, ErrInvalidOrigin},
		{"zero probe timeout", func(c *Config) { c.ProbeTimeout = 0 }, ErrInvalidTimeout},
		{"negative cors timeout", func(c *Config) { c.CorsTimeout = -time.Second }, ErrInvalidTimeout},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"json and markdown", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestNormalizeOrigin(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://app.tempo.build", want: "https://app.tempo.build"},
		{in: "https://app.tempo.build/", want: "https://app.tempo.build"},
		{in: "HTTP://localhost:3000", want: "http://localhost:3000"},
		{in: "https://bücher.example", want: "https://xn--bcher-kva.example"},
		{in: "http://[::1]:3000", want: "http://[::1]:3000"},
		{in: "localhost:3000", wantErr: true},
		{in: "https://", wantErr: true},
		{in: "https://example.com/?q=1", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeOrigin(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidOrigin) {
					t.Errorf("expected ErrInvalidOrigin, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, expected %q", got, tc.want)
			}
		})
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile("/nonexistent/path/.tunnelcheck")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cf != nil {
			t.Error("expected nil file when not found")
		}
	})

	t.Run("loads valid YAML settings", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".tunnelcheck")
		content := `ports: [8081, 8082]
hosts:
  - 127.0.0.1
extraOrigins:
  - https://preview.example.com/
probeTimeout: 1500ms
corsTimeout: 4s
concurrency: 2
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		if err := cf.Apply(cfg); err != nil {
			t.Fatalf("unexpected apply error: %v", err)
		}

		if !slices.Equal(cfg.Ports, []int{8081, 8082}) {
			t.Errorf("unexpected ports %v", cfg.Ports)
		}
		if !slices.Equal(cfg.Hosts, []string{"127.0.0.1"}) {
			t.Errorf("unexpected hosts %v", cfg.Hosts)
		}
		if len(cfg.Origins) != 6 || cfg.Origins[5] != "https://preview.example.com" {
			t.Errorf("expected normalized extra origin appended, got %v", cfg.Origins)
		}
		if cfg.ProbeTimeout != 1500*time.Millisecond {
			t.Errorf("expected probe timeout 1.5s, got %v", cfg.ProbeTimeout)
		}
		if cfg.CorsTimeout != 4*time.Second {
			t.Errorf("expected cors timeout 4s, got %v", cfg.CorsTimeout)
		}
		if cfg.Concurrency != 2 {
			t.Errorf("expected concurrency 2, got %d", cfg.Concurrency)
		}
	})

	t.Run("extra origins are not duplicated", func(t *testing.T) {
		t.Parallel()

		cf := &File{ExtraOrigins: []string{"https://app.tempo.build/"}}
		cfg := NewConfig()
		if err := cf.Apply(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.Origins) != 5 {
			t.Errorf("expected 5 origins, got %v", cfg.Origins)
		}
	})

	t.Run("invalid origin in file is rejected", func(t *testing.T) {
		t.Parallel()

		cf := &File{Origins: []string{"not an origin"}}
		if err := cf.Apply(NewConfig()); !errors.Is(err, ErrInvalidOrigin) {
			t.Errorf("expected ErrInvalidOrigin, got %v", err)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".tunnelcheck")
		if err := os.WriteFile(configPath, []byte(`ports: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path that exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("ports: [8081]\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path, ""); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit path that does not exist", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml"), ""); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("file in project directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte("concurrency: 1\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile("", dir); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})
}
