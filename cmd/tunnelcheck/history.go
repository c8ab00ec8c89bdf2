package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/tunnelcheck/internal/config"
	"github.com/nao1215/tunnelcheck/internal/database"
)

// historyOptions selects what the history command prints.
type historyOptions struct {
	// dbDir is the directory of the history database.
	dbDir string

	// workDir filters runs by project directory; empty lists all projects.
	workDir string

	// limit caps the number of runs per list; <= 0 means no limit.
	limit int

	// diagnosticID prints one stored diagnostic report instead of the lists.
	diagnosticID int64

	// repairID prints one stored repair report instead of the lists.
	repairID int64

	// backups lists recorded backup files.
	backups bool

	verbose bool
}

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs recorded with --save",
		Long: `History lists diagnose and fix runs recorded with --save, newest first.

Examples:
  # List recent runs of every project
  tunnelcheck history

  # List runs of one project
  tunnelcheck history --dir ../my-app

  # Show a stored diagnostic report
  tunnelcheck history --show 3

  # List backup files created by fix
  tunnelcheck history --backups`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("dir", "d", "",
		"Only list runs of this project directory")
	cmd.Flags().IntP("limit", "n", 10,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().Int64("show", 0,
		"Print the stored report of a diagnostic run")
	cmd.Flags().Int64("show-fix", 0,
		"Print the stored report of a fix run")
	cmd.Flags().Bool("backups", false,
		"List backup files created by fix runs")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	opts := historyOptions{
		dbDir:   config.XDGDataDir(),
		verbose: getVerboseFlag(cmd),
	}

	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	if dir != "" {
		if opts.workDir, err = filepath.Abs(dir); err != nil {
			return fmt.Errorf("failed to resolve project directory %s: %w", dir, err)
		}
	}

	if opts.limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return err
	}
	if opts.diagnosticID, err = cmd.Flags().GetInt64("show"); err != nil {
		return err
	}
	if opts.repairID, err = cmd.Flags().GetInt64("show-fix"); err != nil {
		return err
	}
	if opts.backups, err = cmd.Flags().GetBool("backups"); err != nil {
		return err
	}

	setupLogger(opts.verbose)

	return runHistory(cmd.Context(), opts, cmd.OutOrStdout())
}

// runHistory prints the requested part of the history database.
func runHistory(ctx context.Context, opts historyOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseMissing) {
		fmt.Fprintln(out, "No runs recorded yet. Use --save with diagnose or fix to record runs.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	writer := newSimpleWriter(out, opts.verbose)

	switch {
	case opts.diagnosticID > 0:
		summary, err := db.GetDiagnostic(ctx, opts.diagnosticID)
		if err != nil {
			return err
		}
		_, err = writer.Write(summary)
		return err

	case opts.repairID > 0:
		result, err := db.GetRepair(ctx, opts.repairID)
		if err != nil {
			return err
		}
		_, err = writer.WriteRepair(result)
		return err

	case opts.backups:
		return listBackups(ctx, db, opts, out)
	}

	if err := listDiagnostics(ctx, db, opts, out); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return listRepairs(ctx, db, opts, out)
}

func listDiagnostics(ctx context.Context, db *database.HistoryDB, opts historyOptions, out io.Writer) error {
	runs, err := db.ListDiagnostics(ctx, opts.workDir, opts.limit)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Diagnostic runs:")
	if len(runs) == 0 {
		fmt.Fprintln(out, "  (none)")
		return nil
	}

	for _, run := range runs {
		status := ""
		if run.Cancelled {
			status = " (cancelled)"
		}
		fmt.Fprintf(out, "  #%-4d %s  servers: %d  CORS: %d/%d  issues: %d%s\n",
			run.ID, formatTimestamp(run.Timestamp), run.ReachableCount,
			run.CorsSuccess, run.CorsTotal, run.IssueCount, status)
		fmt.Fprintf(out, "        %s\n", run.WorkDir)
	}
	return nil
}

func listRepairs(ctx context.Context, db *database.HistoryDB, opts historyOptions, out io.Writer) error {
	runs, err := db.ListRepairs(ctx, opts.workDir, opts.limit)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Fix runs:")
	if len(runs) == 0 {
		fmt.Fprintln(out, "  (none)")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(out, "  #%-4d %s  changes: %d  errors: %d\n",
			run.ID, formatTimestamp(run.Timestamp), run.ChangeCount, run.ErrorCount)
		fmt.Fprintf(out, "        %s\n", run.WorkDir)
	}
	return nil
}

func listBackups(ctx context.Context, db *database.HistoryDB, opts historyOptions, out io.Writer) error {
	backups, err := db.ListBackups(ctx, "")
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Backup files:")
	n := 0
	for _, b := range backups {
		if opts.workDir != "" && filepath.Dir(b.OriginalPath) != opts.workDir {
			continue
		}
		fmt.Fprintf(out, "  %s  %s\n", formatTimestamp(time.UnixMilli(b.TimestampMillis)), b.BackupPath)
		n++
	}
	if n == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
