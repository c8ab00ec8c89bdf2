package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/tunnelcheck/internal/config"
	"github.com/nao1215/tunnelcheck/internal/report"
)

// openReportWriter returns the writer for a run's report. Without
// cfg.ReportFile the selected format goes to stdout. With it, the selected
// format goes to the file and the text report still goes to stdout.
// The returned close function is never nil.
func openReportWriter(cfg *config.Config, stdout io.Writer) (report.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return newReportWriter(cfg, stdout), func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports list local paths and server URLs; keep them owner-readable.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	writer := report.NewMultiWriter(
		newReportWriter(cfg, f),
		newSimpleWriter(stdout, cfg.Verbose),
	)
	return writer, f.Close, nil
}

// newReportWriter selects the report format requested in cfg.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return newSimpleWriter(output, cfg.Verbose)
	}
}

// newSimpleWriter returns the text writer. Verbose runs also list the
// sections that have no entries, so "None" is printed instead of nothing.
func newSimpleWriter(output io.Writer, verbose bool) *report.SimpleWriter {
	return report.NewSimpleWriter(output, report.WithVerbose(verbose), report.WithShowEmpty(verbose))
}

// addFormatFlags registers the report format flags.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// readFormatFlags copies the report format flags into cfg.
func readFormatFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	return err
}
