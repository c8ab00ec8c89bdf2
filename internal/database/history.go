package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/tunnelcheck/internal/model"
)

// FileName is the name of the history database inside the data directory.
const FileName = "tunnelcheck.db"

// HistoryDB stores diagnostic and repair runs.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now returns the time recorded for repair runs.
	now func() time.Time
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// When CreateIfNotExists is false and the database doesn't exist,
// ErrDatabaseMissing is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseMissing, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a new file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS diagnostic_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		work_dir TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		reachable_count INTEGER NOT NULL,
		cors_success INTEGER NOT NULL,
		cors_total INTEGER NOT NULL,
		issue_count INTEGER NOT NULL,
		cancelled INTEGER NOT NULL DEFAULT 0,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_diag_work_dir ON diagnostic_runs(work_dir);

	CREATE TABLE IF NOT EXISTS repair_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		work_dir TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		change_count INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_repair_work_dir ON repair_runs(work_dir);

	CREATE TABLE IF NOT EXISTS backups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		repair_run_id INTEGER NOT NULL REFERENCES repair_runs(id),
		original_path TEXT NOT NULL,
		backup_path TEXT NOT NULL UNIQUE,
		timestamp_millis INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_backups_original ON backups(original_path);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunMetadata is the listing view of a stored run.
type RunMetadata struct {
	ID        int64
	WorkDir   string
	Timestamp time.Time

	// Diagnostic runs.
	ReachableCount int
	CorsSuccess    int
	CorsTotal      int
	IssueCount     int
	Cancelled      bool

	// Repair runs.
	ChangeCount int
	ErrorCount  int
}

// SaveDiagnostic stores a diagnostic summary and returns its run ID.
func (h *HistoryDB) SaveDiagnostic(ctx context.Context, summary *model.Summary) (int64, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	query := `
	INSERT INTO diagnostic_runs
		(work_dir, timestamp, reachable_count, cors_success, cors_total, issue_count, cancelled, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := h.db.ExecContext(ctx, query,
		summary.WorkDir,
		summary.DateScanned.UTC().Format(time.RFC3339Nano),
		summary.ReachableCount,
		summary.CorsSuccessCount,
		summary.CorsTotal,
		summary.IssueCount(model.SeverityWarning),
		summary.Cancelled,
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save diagnostic run: %w", err)
	}

	return result.LastInsertId()
}

// SaveRepair stores a repair report and its backups in one transaction
// and returns the run ID.
func (h *HistoryDB) SaveRepair(ctx context.Context, report *model.RepairReport) (id int64, err error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize repair report: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO repair_runs (work_dir, timestamp, change_count, error_count, report_json)
	VALUES (?, ?, ?, ?, ?)
	`,
		report.WorkDir,
		h.now().UTC().Format(time.RFC3339Nano),
		len(report.Changes),
		len(report.Errors),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save repair run: %w", err)
	}

	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read repair run id: %w", err)
	}

	for _, b := range report.Backups {
		if _, err = tx.ExecContext(ctx, `
		INSERT INTO backups (repair_run_id, original_path, backup_path, timestamp_millis)
		VALUES (?, ?, ?, ?)
		`, id, b.OriginalPath, b.BackupPath, b.TimestampMillis); err != nil {
			return 0, fmt.Errorf("failed to save backup %s: %w", b.BackupPath, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit repair run: %w", err)
	}
	return id, nil
}

// ListDiagnostics returns diagnostic runs, newest first.
// An empty workDir lists runs of every directory; limit <= 0 means no limit.
func (h *HistoryDB) ListDiagnostics(ctx context.Context, workDir string, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, work_dir, timestamp, reachable_count, cors_success, cors_total, issue_count, cancelled
	FROM diagnostic_runs
	WHERE (? = '' OR work_dir = ?)
	ORDER BY id DESC
	`
	args := []any{workDir, workDir}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostic runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var (
			meta      RunMetadata
			timestamp string
		)
		if err := rows.Scan(&meta.ID, &meta.WorkDir, &timestamp,
			&meta.ReachableCount, &meta.CorsSuccess, &meta.CorsTotal,
			&meta.IssueCount, &meta.Cancelled); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic run: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListRepairs returns repair runs, newest first.
// An empty workDir lists runs of every directory; limit <= 0 means no limit.
func (h *HistoryDB) ListRepairs(ctx context.Context, workDir string, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, work_dir, timestamp, change_count, error_count
	FROM repair_runs
	WHERE (? = '' OR work_dir = ?)
	ORDER BY id DESC
	`
	args := []any{workDir, workDir}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query repair runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var (
			meta      RunMetadata
			timestamp string
		)
		if err := rows.Scan(&meta.ID, &meta.WorkDir, &timestamp,
			&meta.ChangeCount, &meta.ErrorCount); err != nil {
			return nil, fmt.Errorf("failed to scan repair run: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetDiagnostic returns the stored summary of a diagnostic run.
func (h *HistoryDB) GetDiagnostic(ctx context.Context, id int64) (*model.Summary, error) {
	var summaryJSON string
	err := h.db.QueryRowContext(ctx,
		"SELECT summary_json FROM diagnostic_runs WHERE id = ?", id,
	).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: diagnostic run %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diagnostic run: %w", err)
	}

	var summary model.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to deserialize summary: %w", err)
	}
	return &summary, nil
}

// GetRepair returns the stored report of a repair run.
func (h *HistoryDB) GetRepair(ctx context.Context, id int64) (*model.RepairReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx,
		"SELECT report_json FROM repair_runs WHERE id = ?", id,
	).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: repair run %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repair run: %w", err)
	}

	var report model.RepairReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to deserialize repair report: %w", err)
	}
	return &report, nil
}

// ListBackups returns recorded backups, newest first.
// An empty originalPath lists every backup.
func (h *HistoryDB) ListBackups(ctx context.Context, originalPath string) ([]model.BackupRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT original_path, backup_path, timestamp_millis
	FROM backups
	WHERE (? = '' OR original_path = ?)
	ORDER BY timestamp_millis DESC, id DESC
	`, originalPath, originalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to query backups: %w", err)
	}
	defer rows.Close()

	var results []model.BackupRecord
	for rows.Next() {
		var b model.BackupRecord
		if err := rows.Scan(&b.OriginalPath, &b.BackupPath, &b.TimestampMillis); err != nil {
			return nil, fmt.Errorf("failed to scan backup: %w", err)
		}
		results = append(results, b)
	}

	return results, rows.Err()
}

var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp parses a stored timestamp, returning zero time when no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
