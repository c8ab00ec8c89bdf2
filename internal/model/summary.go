package model

import "time"

// Summary is the aggregated outcome of a diagnostic run.
// It is produced by report.Aggregate and consumed by the report writers
// and the history database.
type Summary struct {
	// WorkDir is the inspected project directory.
	WorkDir string `json:"work_dir"`

	// DateScanned is when the run started.
	DateScanned time.Time `json:"date_scanned"`

	// === Reachability ===

	// ProbeCount is the number of targets that were probed.
	ProbeCount int `json:"probe_count"`

	// ReachableCount is the number of targets that answered.
	ReachableCount int `json:"reachable_count"`

	// ReachableServers lists the reachable targets in probe order.
	ReachableServers []ProbeResult `json:"reachable_servers,omitempty"`

	// ActiveServer is the URL the CORS trials ran against.
	ActiveServer string `json:"active_server,omitempty"`

	// === CORS ===

	// CorsTested is false when no CORS trial ran.
	CorsTested bool `json:"cors_tested"`

	// CorsSkipped is true when CORS testing was skipped because no
	// server answered. A cancelled run leaves it false.
	CorsSkipped bool `json:"cors_skipped"`

	// CorsSuccessCount is the number of allowed origins.
	CorsSuccessCount int `json:"cors_success_count"`

	// CorsTotal is the number of CORS trials.
	CorsTotal int `json:"cors_total"`

	// CorsOutcomes lists every trial in origin order.
	CorsOutcomes []CorsOutcome `json:"cors_outcomes,omitempty"`

	// === Configuration ===

	// Issues lists every detected configuration issue.
	Issues []ConfigIssue `json:"issues,omitempty"`

	// Recommendations lists remediation text for the issues.
	Recommendations []Recommendation `json:"recommendations,omitempty"`

	// StartScripts lists start-related package.json scripts.
	StartScripts []string `json:"start_scripts,omitempty"`

	// TroubleshootingSteps is always populated with the standard steps.
	TroubleshootingSteps []string `json:"troubleshooting_steps"`

	// Cancelled is true when the run stopped before all phases finished.
	Cancelled bool `json:"cancelled"`
}

// IssueCount returns the number of issues with at least the given severity.
func (s *Summary) IssueCount(min Severity) int {
	n := 0
	for _, issue := range s.Issues {
		if issue.Severity >= min {
			n++
		}
	}
	return n
}

// HasReachableServer reports whether any probed target answered.
func (s *Summary) HasReachableServer() bool {
	return s.ReachableCount > 0
}
