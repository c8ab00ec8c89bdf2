package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoPorts is returned when the candidate port list is empty.
	ErrNoPorts = errors.New("no ports configured: at least one candidate port is required")

	// ErrInvalidPort is returned when a candidate port is outside 1-65535.
	ErrInvalidPort = errors.New("invalid port: must be between 1 and 65535")

	// ErrNoHosts is returned when the host alias list is empty.
	ErrNoHosts = errors.New("no hosts configured: at least one host alias is required")

	// ErrNoOrigins is returned when there are no CORS test origins.
	ErrNoOrigins = errors.New("no origins configured: at least one test origin is required")

	// ErrInvalidOrigin is returned when an origin is not of the form
	// scheme://host[:port] with an http or https scheme.
	ErrInvalidOrigin = errors.New("invalid origin: expected http(s)://host[:port]")

	// ErrInvalidTimeout is returned when a probe or CORS timeout is not positive.
	// A timeout of zero would let a single probe block the run forever.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
