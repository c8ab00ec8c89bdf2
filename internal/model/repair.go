package model

import "fmt"

// BackupRecord proves that a byte-identical copy of a file was made
// before it was rewritten.
type BackupRecord struct {
	OriginalPath    string `json:"original_path"`
	BackupPath      string `json:"backup_path"`
	TimestampMillis int64  `json:"timestamp_millis"`
}

// ChangeLogEntry describes one semantic edit that was written to disk.
type ChangeLogEntry struct {
	// Path is the file that was edited.
	Path string `json:"path"`

	// Description is a human-readable summary of the edit.
	Description string `json:"description"`
}

// String implements fmt.Stringer.
func (e ChangeLogEntry) String() string {
	return e.Description
}

// FileError records a per-file failure of a repair run.
// The run continues with the remaining files.
type FileError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// String implements fmt.Stringer.
func (e FileError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// RepairReport is the state of a single repair run.
//
// Design decision: The change log and the backup registry are owned by one
// run and passed explicitly through every patch routine instead of living in
// a long-lived repairer. Two runs therefore never share state.
type RepairReport struct {
	// WorkDir is the project directory that was repaired.
	WorkDir string `json:"work_dir"`

	// Changes lists the written edits in the order they were applied.
	Changes []ChangeLogEntry `json:"changes"`

	// Backups lists the backup copies taken before each write.
	Backups []BackupRecord `json:"backups"`

	// Errors lists files whose repair was aborted.
	Errors []FileError `json:"errors,omitempty"`

	// Warnings lists non-fatal conditions such as missing files.
	Warnings []string `json:"warnings,omitempty"`

	// Notes holds inspector findings worth showing after a repair.
	Notes []ConfigIssue `json:"notes,omitempty"`

	// ScriptPath is the launch script written by the run, if any.
	ScriptPath string `json:"script_path,omitempty"`
}

// NewRepairReport creates an empty repair report for the given directory.
func NewRepairReport(workDir string) *RepairReport {
	return &RepairReport{
		WorkDir: workDir,
		Changes: make([]ChangeLogEntry, 0),
		Backups: make([]BackupRecord, 0),
	}
}

// AddError records that the repair of path was aborted.
func (r *RepairReport) AddError(path string, err error) {
	r.Errors = append(r.Errors, FileError{Path: path, Message: err.Error()})
}

// AddWarning records a non-fatal condition.
func (r *RepairReport) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any file failed to repair.
func (r *RepairReport) HasErrors() bool {
	return len(r.Errors) > 0
}
