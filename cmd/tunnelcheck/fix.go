package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/tunnelcheck/internal/config"
	"github.com/nao1215/tunnelcheck/internal/database"
	"github.com/nao1215/tunnelcheck/internal/model"
	"github.com/nao1215/tunnelcheck/internal/repair"
	"github.com/nao1215/tunnelcheck/internal/script"
)

// NewFixCmd creates the fix command.
func NewFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Repair the project configuration for external access",
		Long: `Fix patches app.json and package.json so the development server accepts
connections from other machines, and generates scripts/start-with-tunnel.sh.

Every modified file is backed up first as <file>.backup.<epoch-millis>.
Running fix again on a repaired project changes nothing.

app.json:
- server.host is set to "0.0.0.0" and server.port defaults to 8081
- restrictive cors settings are removed
- expo.extra.router.origin is set to false

package.json:
- start:tunnel and start:clean scripts are added when missing

Examples:
  # Repair the project in the current directory
  tunnelcheck fix

  # Repair another project and record the run
  tunnelcheck fix --dir ../my-app --save`,
		Args: cobra.NoArgs,
		RunE: runFixCmd,
	}

	addProjectFlags(cmd)
	addFormatFlags(cmd)

	return cmd
}

// runFixCmd executes the fix command.
func runFixCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := readFormatFlags(cmd, cfg); err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}

	logger := setupLogger(cfg.Verbose)

	return runFix(cmd.Context(), cfg, logger, cmd.OutOrStdout())
}

// runFix repairs the project, generates the launch script and writes the
// repair report. Per-file failures end up in the report, not in the
// returned error.
func runFix(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Info("starting repair", "dir", cfg.WorkDir)

	result := repair.NewRepairer(repair.WithLogger(logger)).Repair(cfg.WorkDir)

	scriptPath, err := script.NewGenerator(script.WithLogger(logger)).Generate(cfg.WorkDir)
	if err != nil {
		result.AddError(filepath.Join(cfg.WorkDir, filepath.FromSlash(config.LaunchScript)), err)
	} else {
		result.ScriptPath = scriptPath
	}

	if err := outputRepair(cfg, result, stdout); err != nil {
		return err
	}

	if cfg.SaveToDB {
		if err := saveRepair(ctx, cfg, result, logger); err != nil {
			return err
		}
	}

	return nil
}

// outputRepair writes the repair report in the requested format.
func outputRepair(cfg *config.Config, result *model.RepairReport, stdout io.Writer) error {
	writer, closeOutput, err := openReportWriter(cfg, stdout)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // write errors are reported by WriteRepair

	if _, err := writer.WriteRepair(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// saveRepair records the repair run and its backups in the history database.
func saveRepair(ctx context.Context, cfg *config.Config, result *model.RepairReport, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveRepair(ctx, result)
	if err != nil {
		return err
	}

	logger.Info("repair run saved", "id", id, "db", db.Path())
	return nil
}
