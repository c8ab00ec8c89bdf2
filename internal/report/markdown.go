package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/tunnelcheck/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, e.g. pasting a
// diagnosis into an issue.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the diagnostic summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeAccessibility(md, summary)
	w.writeCors(md, summary)
	w.writeIssues(md, summary)
	w.writeTroubleshooting(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteRepair outputs the repair report in Markdown format.
func (w *MarkdownWriter) WriteRepair(report *model.RepairReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("tunnelcheck Repair Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Project", "`" + report.WorkDir + "`"},
			{"Changes", strconv.Itoa(len(report.Changes))},
			{"Backups", strconv.Itoa(len(report.Backups))},
			{"Errors", strconv.Itoa(len(report.Errors))},
		},
	})
	md.PlainText("")

	md.H2("Changes Made")
	md.PlainText("")
	if len(report.Changes) == 0 {
		md.Tip("No changes needed - configuration already optimal!")
	} else {
		rows := make([][]string, 0, len(report.Changes))
		for _, change := range report.Changes {
			rows = append(rows, []string{"`" + change.Path + "`", change.Description})
		}
		md.Table(markdown.TableSet{Header: []string{"File", "Change"}, Rows: rows})
	}
	md.PlainText("")

	if report.ScriptPath != "" {
		md.PlainTextf("Launch script written to `%s`.", report.ScriptPath)
		md.PlainText("")
	}

	for _, e := range report.Errors {
		md.Cautionf("%s: %s", e.Path, e.Message)
		md.PlainText("")
	}
	for _, warning := range report.Warnings {
		md.Warning(warning)
		md.PlainText("")
	}
	for _, note := range report.Notes {
		md.Note(note.Description)
		md.PlainText("")
	}

	md.H2("Next Steps")
	md.PlainText("")
	for i, step := range NextSteps() {
		md.PlainTextf("%d. %s", i+1, step.Title)
		md.PlainText("")
		md.BulletList(step.Details...)
		md.PlainText("")
	}

	if len(report.Backups) > 0 {
		md.H2("Backup Files")
		md.PlainText("")
		rows := make([][]string, 0, len(report.Backups))
		for _, b := range report.Backups {
			rows = append(rows, []string{"`" + b.OriginalPath + "`", "`" + b.BackupPath + "`"})
		}
		md.Table(markdown.TableSet{Header: []string{"Original", "Backup"}, Rows: rows})
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("tunnelcheck Diagnostic Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Project", "`" + summary.WorkDir + "`"},
			{"Scan Date", summary.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Targets Probed", strconv.Itoa(summary.ProbeCount)},
			{"Status", statusText(summary)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, summary)
}

// statusText returns the status text based on summary state.
func statusText(summary *model.Summary) string {
	if summary.Cancelled {
		return "⚠️ Cancelled (partial results)"
	}
	return "✅ Complete"
}

// writeAlert writes an alert that matches the overall verdict.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.Summary) {
	switch {
	case !summary.HasReachableServer():
		md.Cautionf("No accessible dev server found. Start it with `%s`.", StartCommand)
	case summary.CorsTested && summary.CorsSuccessCount < summary.CorsTotal:
		md.Warningf("%d of %d origins are blocked by the server's CORS policy.",
			summary.CorsTotal-summary.CorsSuccessCount, summary.CorsTotal)
	case summary.IssueCount(model.SeverityWarning) > 0:
		md.Importantf("%d configuration issue(s) may prevent external access.",
			summary.IssueCount(model.SeverityWarning))
	default:
		md.Tip("The dev server is reachable and accepts every tested origin.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeAccessibility(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Server Accessibility")
	md.PlainText("")

	if !summary.HasReachableServer() {
		md.PlainText("No accessible servers found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(summary.ReachableServers))
	for _, probe := range summary.ReachableServers {
		rows = append(rows, []string{
			probe.Target.URL(),
			strconv.Itoa(probe.StatusCode),
			orNone(probe.AllowOrigin()),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Access-Control-Allow-Origin"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeCors(md *markdown.Markdown, summary *model.Summary) {
	md.H2("CORS Test Results")
	md.PlainText("")

	if !summary.CorsTested {
		md.PlainTextf("No CORS tests performed (%s).", corsNotTestedReason(summary))
		md.PlainText("")
		return
	}

	md.PlainTextf("Active server: `%s`. Successful: **%d/%d**.",
		summary.ActiveServer, summary.CorsSuccessCount, summary.CorsTotal)
	md.PlainText("")

	rows := make([][]string, 0, len(summary.CorsOutcomes))
	for _, outcome := range summary.CorsOutcomes {
		verdict := "❌"
		if outcome.Allowed {
			verdict = "✅"
		}
		rows = append(rows, []string{verdict, outcome.Trial.Origin, outcome.Message})
	}
	md.Table(markdown.TableSet{
		Header: []string{"", "Origin", "Result"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, summary)
}

// writePieChart writes a mermaid pie chart of allowed and blocked origins.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("CORS Trial Results"),
		piechart.WithShowData(true),
	)

	if summary.CorsSuccessCount > 0 {
		chart.LabelAndIntValue("Allowed", uint64(summary.CorsSuccessCount))
	}
	if blocked := summary.CorsTotal - summary.CorsSuccessCount; blocked > 0 {
		chart.LabelAndIntValue("Blocked", uint64(blocked))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Configuration")
	md.PlainText("")

	if len(summary.Issues) == 0 {
		md.PlainText("No configuration issues detected.")
		md.PlainText("")
	} else {
		rows := make([][]string, 0, len(summary.Issues))
		for _, issue := range summary.Issues {
			source := issue.Source
			if source == "" {
				source = "-"
			}
			rows = append(rows, []string{
				cases.Title(language.English).String(issue.Severity.String()),
				truncateString(source, 40),
				issue.Description,
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Severity", "Source", "Description"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(summary.Recommendations) > 0 {
		md.H3("Recommendations")
		md.PlainText("")
		md.BulletList(recommendationTexts(summary.Recommendations)...)
		md.PlainText("")
	}

	if len(summary.StartScripts) > 0 {
		md.H3("Start Scripts")
		md.PlainText("")
		md.BulletList(summary.StartScripts...)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeTroubleshooting(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Standard Troubleshooting Steps")
	md.PlainText("")
	md.OrderedList(summary.TroubleshootingSteps...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [tunnelcheck](https://github.com/nao1215/tunnelcheck)*")
}

// truncateString truncates a string to maxLen bytes, keeping the end,
// which for file paths is the informative part.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[len(s)-maxLen:]
	}
	return "..." + s[len(s)-maxLen+3:]
}
