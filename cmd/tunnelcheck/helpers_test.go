package main

import (
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/tunnelcheck/internal/config"
)

// discardLogger returns a logger that drops everything.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// unusedPort returns a port nothing listens on.
func unusedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	if err := ln.Close(); err != nil {
		t.Fatal(err)
	}
	return port
}

// testConfig returns a config for a temporary project that probes only
// loopback ports and keeps its history database in a temporary directory.
func testConfig(t *testing.T, ports ...int) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.WorkDir = t.TempDir()
	cfg.Hosts = []string{"127.0.0.1"}
	cfg.Ports = ports
	if len(ports) == 0 {
		cfg.Ports = []int{unusedPort(t)}
	}
	cfg.ProbeTimeout = 2 * time.Second
	cfg.CorsTimeout = 2 * time.Second
	cfg.DBDir = t.TempDir()
	return cfg
}

// writeProjectFile writes name under dir.
func writeProjectFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
