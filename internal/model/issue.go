package model

import "fmt"

// ConfigIssue is a detected misconfiguration. Issues are never fatal.
type ConfigIssue struct {
	// Severity tells whether the issue is informational, a warning or an error.
	Severity Severity `json:"severity"`

	// Source is the path of the file the issue was found in.
	Source string `json:"source,omitempty"`

	// Description explains what was detected.
	Description string `json:"description"`
}

// String implements fmt.Stringer.
func (i ConfigIssue) String() string {
	if i.Source == "" {
		return fmt.Sprintf("[%s] %s", i.Severity, i.Description)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Source, i.Description)
}

// Recommendation is remediation text paired with one or more issues.
type Recommendation struct {
	Description string `json:"description"`
}
