package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/tunnelcheck/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because the output is produced from our own structs with
// json tags; there is no foreign document whose layout must be preserved.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is recorded in every document; empty omits it.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the tool version in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// DiagnosticDocument is the JSON shape of a diagnostic run.
//
// Design decision: We wrap the summary rather than adding fields to it
// because this allows us to add output-specific fields without polluting
// the core data structure.
type DiagnosticDocument struct {
	Version string         `json:"version,omitempty"`
	Summary *model.Summary `json:"summary"`
}

// RepairDocument is the JSON shape of a repair run.
type RepairDocument struct {
	Version   string              `json:"version,omitempty"`
	Repair    *model.RepairReport `json:"repair"`
	NextSteps []NextStep          `json:"next_steps"`
}

// Write outputs the diagnostic summary in JSON format.
func (w *JSONWriter) Write(summary *model.Summary) (int, error) {
	return w.writeJSON(&DiagnosticDocument{Version: w.version, Summary: summary})
}

// WriteRepair outputs the repair report in JSON format.
func (w *JSONWriter) WriteRepair(report *model.RepairReport) (int, error) {
	return w.writeJSON(&RepairDocument{Version: w.version, Repair: report, NextSteps: NextSteps()})
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
