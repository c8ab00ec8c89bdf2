package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/tunnelcheck/internal/model"
)

const lineWidth = 70

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors or emoji because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose adds informational issues and unreachable probes.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the diagnostic summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "tunnelcheck diagnostic report")
	w.writeRunInfo(&sb, summary)
	w.writeAccessibility(&sb, summary)
	w.writeCors(&sb, summary)
	w.writeIssues(&sb, summary)
	w.writeList(&sb, "recommendations", recommendationTexts(summary.Recommendations))
	w.writeList(&sb, "start scripts in package.json", summary.StartScripts)
	w.writeTroubleshooting(&sb, summary)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteRepair outputs the result of a repair run in human-readable format.
func (w *SimpleWriter) WriteRepair(report *model.RepairReport) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "tunnelcheck repair report")
	sb.WriteString(fmt.Sprintf("Project:        %s\n", report.WorkDir))
	if report.HasErrors() {
		sb.WriteString(fmt.Sprintf("Status:         %d file(s) could not be repaired\n", len(report.Errors)))
	} else {
		sb.WriteString("Status:         Complete\n")
	}
	sb.WriteString("\n")

	w.writeSection(&sb, "changes made")
	if len(report.Changes) == 0 {
		sb.WriteString("  No changes needed - configuration already optimal!\n")
	}
	for _, change := range report.Changes {
		sb.WriteString(fmt.Sprintf("  * %s\n    File: %s\n", change.Description, change.Path))
	}
	if report.ScriptPath != "" {
		sb.WriteString(fmt.Sprintf("  * Created startup script with tunnel support\n    File: %s\n", report.ScriptPath))
	}
	sb.WriteString("\n")

	errs := make([]string, 0, len(report.Errors))
	for _, e := range report.Errors {
		errs = append(errs, e.String())
	}
	w.writeList(&sb, "errors", errs)
	w.writeList(&sb, "warnings", report.Warnings)

	notes := make([]string, 0, len(report.Notes))
	for _, note := range report.Notes {
		notes = append(notes, note.String())
	}
	w.writeList(&sb, "notes", notes)

	w.writeSection(&sb, "next steps")
	for i, step := range NextSteps() {
		sb.WriteString(fmt.Sprintf("  %d. %s:\n", i+1, step.Title))
		for _, detail := range step.Details {
			sb.WriteString(fmt.Sprintf("     %s\n", detail))
		}
	}
	sb.WriteString("\n")

	if len(report.Backups) > 0 || w.showEmpty {
		w.writeSection(&sb, "backup files created")
		if len(report.Backups) == 0 {
			sb.WriteString("  None\n")
		}
		for _, b := range report.Backups {
			sb.WriteString(fmt.Sprintf("  %s -> %s\n", b.OriginalPath, b.BackupPath))
		}
		sb.WriteString("\n")
	}

	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// writeBanner writes the report title framed by double rules.
func (w *SimpleWriter) writeBanner(sb *strings.Builder, title string) {
	title = cases.Upper(language.English).String(title)
	pad := max((lineWidth-len(title))/2, 0)

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", pad) + title + "\n")
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n\n")
}

// writeSection writes a section heading.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n")
	sb.WriteString(cases.Upper(language.English).String(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeRunInfo(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(fmt.Sprintf("Project:        %s\n", summary.WorkDir))
	sb.WriteString(fmt.Sprintf("Scan Date:      %s\n", summary.DateScanned.Format("2006-01-02 15:04:05 MST")))
	if summary.Cancelled {
		sb.WriteString("Status:         CANCELLED (partial results)\n")
	} else {
		sb.WriteString("Status:         Complete\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeAccessibility(sb *strings.Builder, summary *model.Summary) {
	w.writeSection(sb, "server accessibility")

	if !summary.HasReachableServer() {
		sb.WriteString("  [-] No accessible servers found!\n")
		sb.WriteString("      Make sure to start your dev server first:\n")
		sb.WriteString("      " + StartCommand + "\n")
	} else {
		sb.WriteString(fmt.Sprintf("  [+] Found %d accessible server(s) of %d probed\n",
			summary.ReachableCount, summary.ProbeCount))
		for _, probe := range summary.ReachableServers {
			sb.WriteString(fmt.Sprintf("      %s - %d - CORS: %s\n",
				probe.Target.URL(), probe.StatusCode, orNone(probe.AllowOrigin())))
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCors(sb *strings.Builder, summary *model.Summary) {
	w.writeSection(sb, "cors test results")

	if !summary.CorsTested {
		sb.WriteString(fmt.Sprintf("  [!] No CORS tests performed (%s)\n\n", corsNotTestedReason(summary)))
		return
	}

	sb.WriteString(fmt.Sprintf("  Active server: %s\n", summary.ActiveServer))
	sb.WriteString(fmt.Sprintf("  Successful:    %d/%d\n\n", summary.CorsSuccessCount, summary.CorsTotal))
	for _, outcome := range summary.CorsOutcomes {
		mark := "-"
		if outcome.Allowed {
			mark = "+"
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s: %s\n", mark, outcome.Trial.Origin, outcome.Message))
		if w.verbose && outcome.AllowedHeaders != "" {
			sb.WriteString(fmt.Sprintf("      Allowed headers: %s\n", outcome.AllowedHeaders))
		}
	}
	sb.WriteString("\n")
}

// writeIssues lists warnings and errors; informational issues only in
// verbose mode.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, summary *model.Summary) {
	minSeverity := model.SeverityWarning
	if w.verbose {
		minSeverity = model.SeverityInfo
	}

	if summary.IssueCount(minSeverity) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, "configuration issues")
	if summary.IssueCount(minSeverity) == 0 {
		sb.WriteString("  None\n")
	}
	for _, issue := range summary.Issues {
		if issue.Severity < minSeverity {
			continue
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", severityIndicator(issue.Severity), issue.Description))
		if w.verbose && issue.Source != "" {
			sb.WriteString(fmt.Sprintf("      Source: %s\n", issue.Source))
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, title)
	if len(items) == 0 {
		sb.WriteString("  None\n")
	}
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("  * %s\n", item))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeTroubleshooting(sb *strings.Builder, summary *model.Summary) {
	w.writeSection(sb, "standard troubleshooting steps")
	for i, step := range summary.TroubleshootingSteps {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by tunnelcheck\n")
	sb.WriteString("https://github.com/nao1215/tunnelcheck\n")
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")
}

// severityIndicator returns a visual indicator for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityError:
		return "!!"
	case model.SeverityWarning:
		return "!"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

func recommendationTexts(recs []model.Recommendation) []string {
	texts := make([]string, 0, len(recs))
	for _, r := range recs {
		texts = append(texts, r.Description)
	}
	return texts
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
