package report

import (
	"slices"

	"github.com/nao1215/tunnelcheck/internal/model"
)

// StartCommand is the command that starts a tunnelled dev server
// listening on all interfaces.
const StartCommand = "EXPO_DEVTOOLS_LISTEN_ADDRESS=0.0.0.0 npx expo start --tunnel"

// TroubleshootingSteps returns the standard steps printed with every
// diagnostic report, whatever was found.
func TroubleshootingSteps() []string {
	return []string{
		"Start dev server with tunnel and bind to all interfaces: " + StartCommand,
		"Check that tunnel URL is active and accessible",
		"Verify no browser extensions are blocking requests",
		"Try accessing from incognito mode",
		"Check firewall settings for the dev server ports",
	}
}

// NextStep is one instruction printed after a repair.
type NextStep struct {
	Title   string   `json:"title"`
	Details []string `json:"details"`
}

// NextSteps returns the instructions printed after every repair.
func NextSteps() []NextStep {
	return []NextStep{
		{
			Title:   "Start your dev server with external access",
			Details: []string{"npm run start:tunnel", "or: " + StartCommand},
		},
		{
			Title:   "Look for the tunnel URL in the output",
			Details: []string{`"Tunnel ready: https://your-project.exp.direct"`},
		},
		{
			Title:   "Verify the server is listening on 0.0.0.0",
			Details: []string{`Look for "Starting project on 0.0.0.0:8081" (not localhost)`},
		},
		{
			Title:   "Test connectivity",
			Details: []string{"tunnelcheck diagnose"},
		},
		{
			Title: "If external origins still cannot connect",
			Details: []string{
				"Try incognito mode",
				"Disable browser extensions",
				"Check firewall settings",
				"Restart the dev server",
			},
		},
	}
}

// corsNotTestedReason explains why a summary has no CORS trials.
func corsNotTestedReason(summary *model.Summary) string {
	switch {
	case summary.CorsSkipped:
		return "no active server"
	case summary.Cancelled:
		return "run cancelled"
	default:
		return "phase not run"
	}
}

// Aggregate builds the summary of a diagnostic run.
// The input is not modified and the summary shares no slices with it.
func Aggregate(r *model.DiagnosticReport) *model.Summary {
	s := &model.Summary{
		WorkDir:              r.WorkDir,
		DateScanned:          r.DateScanned,
		ProbeCount:           len(r.Probes),
		ActiveServer:         r.ActiveServer,
		CorsTested:           len(r.CorsOutcomes) > 0,
		CorsSkipped:          r.CorsSkipped,
		CorsTotal:            len(r.CorsOutcomes),
		CorsOutcomes:         slices.Clone(r.CorsOutcomes),
		Issues:               slices.Clone(r.Issues),
		Recommendations:      slices.Clone(r.Recommendations),
		StartScripts:         slices.Clone(r.StartScripts),
		TroubleshootingSteps: TroubleshootingSteps(),
		Cancelled:            r.Cancelled,
	}

	for _, probe := range r.Probes {
		if probe.Reachable {
			s.ReachableServers = append(s.ReachableServers, probe)
		}
	}
	s.ReachableCount = len(s.ReachableServers)

	for _, outcome := range r.CorsOutcomes {
		if outcome.Allowed {
			s.CorsSuccessCount++
		}
	}

	return s
}
