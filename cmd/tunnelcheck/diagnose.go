package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/tunnelcheck/internal/config"
	"github.com/nao1215/tunnelcheck/internal/database"
	"github.com/nao1215/tunnelcheck/internal/model"
	"github.com/nao1215/tunnelcheck/internal/pipeline"
	"github.com/nao1215/tunnelcheck/internal/report"
)

// NewDiagnoseCmd creates the diagnose command.
func NewDiagnoseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Diagnose why the development server is not reachable",
		Long: `Diagnose inspects the project and the running development server:

- app.json, metro.config.js and package.json are checked for settings that
  block external access (nothing is modified)
- every candidate port is probed on localhost, 127.0.0.1 and 0.0.0.0
- the first reachable server receives a CORS preflight per test origin

Examples:
  # Diagnose the project in the current directory
  tunnelcheck diagnose

  # Diagnose another project and write a Markdown report
  tunnelcheck diagnose --dir ../my-app --markdown -o report.md

  # Output JSON and record the run in the history database
  tunnelcheck diagnose --json --save`,
		Args: cobra.NoArgs,
		RunE: runDiagnoseCmd,
	}

	addProjectFlags(cmd)
	addFormatFlags(cmd)

	return cmd
}

// runDiagnoseCmd executes the diagnose command.
func runDiagnoseCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := readFormatFlags(cmd, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)

	ctx, stop := signalContext(cmd.Context(), logger)
	defer stop()

	return runDiagnose(ctx, cfg, logger, cmd.OutOrStdout())
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, func()) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, finishing current phase...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// runDiagnose runs the diagnostic pipeline and writes the report.
// A cancelled run still produces a (partial) report.
func runDiagnose(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	logger.Info("starting diagnosis",
		"dir", cfg.WorkDir,
		"ports", cfg.Ports,
		"origins", len(cfg.Origins),
	)

	diag := model.NewDiagnosticReport(cfg.WorkDir)
	p := pipeline.NewDiagnosticPipeline(cfg, logger)
	if err := p.Execute(ctx, diag); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("diagnosis failed: %w", err)
	}

	summary := report.Aggregate(diag)

	if err := outputSummary(cfg, summary, stdout); err != nil {
		return err
	}

	if cfg.SaveToDB {
		if err := saveDiagnostic(ctx, cfg, summary, logger); err != nil {
			return err
		}
	}

	return nil
}

// outputSummary writes the summary in the requested format.
func outputSummary(cfg *config.Config, summary *model.Summary, stdout io.Writer) error {
	writer, closeOutput, err := openReportWriter(cfg, stdout)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // write errors are reported by Write

	if _, err := writer.Write(summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// saveDiagnostic records the summary in the history database.
func saveDiagnostic(ctx context.Context, cfg *config.Config, summary *model.Summary, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	// The run itself may have been cancelled; saving should still happen.
	id, err := db.SaveDiagnostic(context.WithoutCancel(ctx), summary)
	if err != nil {
		return err
	}

	logger.Info("diagnostic run saved", "id", id, "db", db.Path())
	return nil
}
