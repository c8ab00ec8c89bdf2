// Package config provides configuration structures and utilities for tunnelcheck.
// It defines the candidate ports, hosts and origins that are probed, the
// per-request timeouts, and report output preferences.
package config
