package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "tunnelcheck"

	// DefaultProbeTimeout bounds a single reachability request.
	DefaultProbeTimeout = 3000 * time.Millisecond

	// DefaultCorsTimeout bounds a single CORS preflight request.
	// Preflights get more time because dev servers compile on first request.
	DefaultCorsTimeout = 5000 * time.Millisecond

	// DefaultConcurrency is the number of requests in flight within a phase.
	DefaultConcurrency = 4

	// DefaultServerPort is written to server.port by the repairer.
	DefaultServerPort = 8081

	// WildcardBindAddress means "listen on all interfaces".
	WildcardBindAddress = "0.0.0.0"
)

// Project files, relative to the working directory.
const (
	AppConfigFile   = "app.json"
	PackageFile     = "package.json"
	MetroConfigFile = "metro.config.js"
	LaunchScript    = "scripts/start-with-tunnel.sh"
)

// DefaultPorts returns the Expo dev server ports in priority order.
// Metro listens on 8081; the legacy Expo CLI used the 19000 range.
func DefaultPorts() []int {
	return []int{8081, 19000, 19006, 19001, 19002}
}

// DefaultHosts returns the host aliases tried for every port.
// localhost comes first because it is what developers type.
func DefaultHosts() []string {
	return []string{"localhost", "127.0.0.1", WildcardBindAddress}
}

// DefaultOrigins returns the literal origins used for CORS trials.
func DefaultOrigins() []string {
	return []string{
		"https://app.tempo.build",
		"http://localhost:3000",
		"https://localhost:3000",
		"http://127.0.0.1:3000",
		"https://127.0.0.1:3000",
	}
}

// Config holds all configuration options for tunnelcheck.
// This struct is populated from defaults, the optional settings file, and
// CLI flags, and is passed through the application explicitly.
type Config struct {
	// WorkDir is the project directory holding app.json and package.json.
	WorkDir string

	// Ports are the candidate server ports in priority order.
	Ports []int

	// Hosts are the host aliases probed for each port.
	Hosts []string

	// Origins are the literal origins sent in CORS preflight requests.
	Origins []string

	// ProbeTimeout bounds each reachability request.
	ProbeTimeout time.Duration

	// CorsTimeout bounds each CORS preflight request.
	CorsTimeout time.Duration

	// Concurrency is the number of requests in flight within one phase.
	Concurrency int

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path of the settings file given by --config.
	ConfigFilePath string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report; stdout when empty.
	ReportFile string

	// SaveToDB records the run in the history database.
	SaveToDB bool

	// DBDir is the directory of the history database.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		WorkDir:      ".",
		Ports:        DefaultPorts(),
		Hosts:        DefaultHosts(),
		Origins:      DefaultOrigins(),
		ProbeTimeout: DefaultProbeTimeout,
		CorsTimeout:  DefaultCorsTimeout,
		Concurrency:  DefaultConcurrency,
		DBDir:        XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for tunnelcheck.
// On Linux: ~/.local/share/tunnelcheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found, wrapped with detail where useful.
func (c *Config) Validate() error {
	if len(c.Ports) == 0 {
		return ErrNoPorts
	}
	for _, port := range c.Ports {
		if port < 1 || port > 65535 {
			return fmt.Errorf("%w: %d", ErrInvalidPort, port)
		}
	}

	if len(c.Hosts) == 0 {
		return ErrNoHosts
	}

	if len(c.Origins) == 0 {
		return ErrNoOrigins
	}
	for _, origin := range c.Origins {
		if err := validateOrigin(origin); err != nil {
			return err
		}
	}

	if c.ProbeTimeout <= 0 || c.CorsTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
