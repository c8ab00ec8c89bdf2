package model

import "time"

// DiagnosticReport accumulates everything a diagnostic run finds.
// Each pipeline step appends to its own section; nothing else writes to it.
//
// Design decision: We use a single accumulator struct rather than passing
// results between steps because the steps are independent of each other.
// The report aggregator turns it into a Summary once the run is over.
type DiagnosticReport struct {
	// WorkDir is the project directory that was inspected.
	WorkDir string `json:"work_dir"`

	// DateScanned is when the run started.
	DateScanned time.Time `json:"date_scanned"`

	// === Inspection ===

	// Issues contains findings of the configuration inspector in detection order.
	Issues []ConfigIssue `json:"issues,omitempty"`

	// Recommendations contains remediation text in detection order.
	Recommendations []Recommendation `json:"recommendations,omitempty"`

	// StartScripts lists package.json scripts related to starting the server,
	// formatted as "name: command".
	StartScripts []string `json:"start_scripts,omitempty"`

	// === Reachability ===

	// Probes contains one result per probed target, in probe order.
	Probes []ProbeResult `json:"probes,omitempty"`

	// === CORS ===

	// ActiveServer is the URL of the first reachable server, if any.
	ActiveServer string `json:"active_server,omitempty"`

	// CorsSkipped is true when no active server was found and
	// no CORS trials were attempted.
	CorsSkipped bool `json:"cors_skipped"`

	// CorsOutcomes contains one outcome per test origin, in origin order.
	CorsOutcomes []CorsOutcome `json:"cors_outcomes,omitempty"`

	// === Run status ===

	// PerformedPhases lists the phases that were executed.
	PerformedPhases []string `json:"performed_phases,omitempty"`

	// Cancelled is true when the run was stopped between phases.
	Cancelled bool `json:"cancelled"`
}

// NewDiagnosticReport creates an empty report for the given directory.
func NewDiagnosticReport(workDir string) *DiagnosticReport {
	return &DiagnosticReport{
		WorkDir:     workDir,
		DateScanned: time.Now(),
	}
}

// AddIssue records a configuration issue found in source.
func (r *DiagnosticReport) AddIssue(severity Severity, source, description string) {
	r.Issues = append(r.Issues, ConfigIssue{
		Severity:    severity,
		Source:      source,
		Description: description,
	})
}

// AddRecommendation records remediation text.
func (r *DiagnosticReport) AddRecommendation(description string) {
	r.Recommendations = append(r.Recommendations, Recommendation{Description: description})
}
