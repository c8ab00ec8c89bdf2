package model

import (
	"encoding/json"
	"fmt"
)

// Severity represents how serious a configuration issue is.
//
// Design decision: We use iota-based constants rather than string constants
// for cheap comparisons and ordering. The String() method provides the
// human-readable form and JSON uses the same text.
type Severity int

const (
	// SeverityInfo marks informational findings that need no action.
	// Examples: the configured URL scheme, router settings.
	SeverityInfo Severity = iota

	// SeverityWarning marks findings that likely break external access
	// or files that are absent. Processing always continues.
	// Examples: server.host bound to localhost, missing app.json.
	SeverityWarning

	// SeverityError marks documents that could not be processed at all.
	// Examples: malformed JSON in app.json or package.json.
	SeverityError
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity converts the text form produced by String back to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", s)
	}
}

// MarshalJSON encodes the severity as its text form.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the text form of a severity.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	parsed, err := ParseSeverity(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
