// Package report turns run results into output.
//
// Aggregate merges the sections of a model.DiagnosticReport into a
// model.Summary. It is a pure function: the same probe, CORS and
// inspection results always produce the same summary.
//
// Writers render a Summary or a model.RepairReport:
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: Markdown with tables and a mermaid chart for sharing
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
package report
