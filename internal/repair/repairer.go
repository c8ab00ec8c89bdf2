package repair

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gowebpki/jcs"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/nao1215/tunnelcheck/internal/config"
	"github.com/nao1215/tunnelcheck/internal/fileutil"
	"github.com/nao1215/tunnelcheck/internal/model"
)

// formatOptions re-indents written documents with two spaces and keeps
// the original key order.
var formatOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// Repairer applies the app.json and package.json patches.
// It holds no per-run state; every Repair call returns its own report.
type Repairer struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Repairer.
type Option func(*Repairer)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repairer) {
		r.logger = logger
	}
}

// WithClock sets the time source used to name backups.
func WithClock(now func() time.Time) Option {
	return func(r *Repairer) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRepairer creates a Repairer.
func NewRepairer(opts ...Option) *Repairer {
	r := &Repairer{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Repair patches the configuration files in dir and returns what it did.
// Failures are per file: a malformed package.json never prevents the
// app.json repair and vice versa.
func (r *Repairer) Repair(dir string) *model.RepairReport {
	report := model.NewRepairReport(dir)

	r.patchFile(report, filepath.Join(dir, config.AppConfigFile), appConfigSteps())
	r.patchFile(report, filepath.Join(dir, config.PackageFile), packageSteps())
	r.checkMetroConfig(report, filepath.Join(dir, config.MetroConfigFile))

	return report
}

// patchFile runs steps against one file under the backup-then-write
// discipline. Change entries and the backup record are added to report
// only after the new content is on disk.
func (r *Repairer) patchFile(report *model.RepairReport, path string, steps []step) {
	original, err := os.ReadFile(path) //nolint:gosec // path is a project file inside the working directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			report.AddWarning("%s not found", path)
			r.logger.Warn("configuration file not found", "path", path)
			return
		}
		report.AddError(path, fmt.Errorf("read: %w", err))
		return
	}

	if err := checkObject(original); err != nil {
		report.AddError(path, err)
		r.logger.Error("configuration file is malformed", "path", path, "error", err)
		return
	}

	doc := original
	var applied []string
	for _, s := range steps {
		next, changed, err := s.apply(doc)
		if err != nil {
			report.AddError(path, err)
			r.logger.Error("patch step failed", "path", path, "step", s.description, "error", err)
			return
		}
		if changed {
			doc = next
			applied = append(applied, s.description)
		}
	}

	if len(applied) == 0 || semanticallyEqual(original, doc) {
		r.logger.Info("configuration already correct", "path", path)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		report.AddError(path, fmt.Errorf("stat: %w", err))
		return
	}

	backup, err := r.backup(path)
	if err != nil {
		report.AddError(path, err)
		return
	}

	if err := fileutil.WriteAtomic(path, pretty.PrettyOptions(doc, formatOptions), info.Mode().Perm()); err != nil {
		report.AddError(path, fmt.Errorf("%w: %w", ErrWrite, err))
		return
	}

	report.Backups = append(report.Backups, backup)
	for _, description := range applied {
		report.Changes = append(report.Changes, model.ChangeLogEntry{Path: path, Description: description})
	}
	r.logger.Info("configuration updated", "path", path, "changes", len(applied), "backup", backup.BackupPath)
}

// backup copies path to "<path>.backup.<epoch-millis>". An existing file at
// that name is never overwritten; the write is abandoned instead.
func (r *Repairer) backup(path string) (model.BackupRecord, error) {
	millis := r.now().UnixMilli()
	backupPath := path + ".backup." + strconv.FormatInt(millis, 10)

	if err := fileutil.CopyExclusive(path, backupPath); err != nil {
		return model.BackupRecord{}, fmt.Errorf("%w: %w", ErrBackup, err)
	}

	return model.BackupRecord{
		OriginalPath:    path,
		BackupPath:      backupPath,
		TimestampMillis: millis,
	}, nil
}

// checkMetroConfig notes metro settings that can shadow the repaired
// app.json. Both "server" and "host" must appear, which keeps the note
// quieter than the inspector's warning.
func (r *Repairer) checkMetroConfig(report *model.RepairReport, path string) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a project file inside the working directory
	if err != nil {
		return
	}
	content := string(data)
	if strings.Contains(content, "server") && strings.Contains(content, "host") {
		report.Notes = append(report.Notes,
			model.ConfigIssue{
				Severity:    model.SeverityWarning,
				Source:      path,
				Description: "Metro config contains server settings that might override app.json",
			},
			model.ConfigIssue{
				Severity:    model.SeverityInfo,
				Source:      path,
				Description: "Consider reviewing metro.config.js for conflicting server settings",
			},
		)
	}
}

// checkObject returns ErrParse unless data is a single JSON object.
// encoding/json supplies the error detail, which includes the offset of
// the first syntax error. A literal null and objects that repeat a key
// are rejected too: the steps edit the first occurrence of a key while
// most readers honour the last one.
func checkObject(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err) //nolint:errorlint // json error is detail only
	}
	if doc == nil {
		return fmt.Errorf("%w: top-level value is null", ErrParse)
	}
	if key, ok := duplicateKey(gjson.ParseBytes(data)); ok {
		return fmt.Errorf("%w: duplicate key %q", ErrParse, key)
	}
	return nil
}

// duplicateKey reports the first key that appears twice in the same
// object, searching nested objects depth first.
func duplicateKey(value gjson.Result) (string, bool) {
	if !value.IsObject() {
		return "", false
	}
	var (
		dup   string
		found bool
	)
	seen := make(map[string]struct{})
	value.ForEach(func(key, child gjson.Result) bool {
		name := key.String()
		if _, ok := seen[name]; ok {
			dup, found = name, true
			return false
		}
		seen[name] = struct{}{}
		dup, found = duplicateKey(child)
		return !found
	})
	return dup, found
}

// semanticallyEqual compares two documents in RFC 8785 canonical form,
// so whitespace and key order never count as a change. If either side
// cannot be canonicalized the raw bytes are compared.
func semanticallyEqual(a, b []byte) bool {
	ca, errA := jcs.Transform(a)
	cb, errB := jcs.Transform(b)
	if errA != nil || errB != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca, cb)
}
