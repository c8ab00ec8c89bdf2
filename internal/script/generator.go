// Package script writes the companion launch script for a tunnelled Expo
// dev server.
package script

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/tunnelcheck/internal/config"
	"github.com/nao1215/tunnelcheck/internal/fileutil"
)

//go:embed start-with-tunnel.sh
var launchScript []byte

// scriptMode is applied where the platform has permission bits.
const scriptMode os.FileMode = 0o755

// Generator writes scripts/start-with-tunnel.sh.
type Generator struct {
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Generate writes the launch script below dir and returns its path.
// The script is fully derived, so it is overwritten on every run
// without a backup.
func (g *Generator) Generate(dir string) (string, error) {
	path := filepath.Join(dir, filepath.FromSlash(config.LaunchScript))

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create script directory: %w", err)
	}

	if err := fileutil.WriteAtomic(path, launchScript, scriptMode); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	g.logger.Info("launch script written", "path", path)
	return path, nil
}
