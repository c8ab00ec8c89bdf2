package inspect

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/nao1215/tunnelcheck/internal/config"
	"github.com/nao1215/tunnelcheck/internal/model"
)

//go:embed app.schema.json
var appSchema []byte

// Findings is the result of one inspection.
type Findings struct {
	// Issues lists everything detected, in file order.
	Issues []model.ConfigIssue

	// Recommendations lists remediation text for the issues.
	Recommendations []model.Recommendation

	// StartScripts lists package.json scripts whose name contains
	// "start" or "dev", formatted as "name: command".
	StartScripts []string
}

func (f *Findings) add(severity model.Severity, source, format string, args ...any) {
	f.Issues = append(f.Issues, model.ConfigIssue{
		Severity:    severity,
		Source:      source,
		Description: fmt.Sprintf(format, args...),
	})
}

func (f *Findings) recommend(description string) {
	f.Recommendations = append(f.Recommendations, model.Recommendation{Description: description})
}

// Inspector examines project configuration files.
type Inspector struct {
	schema *jsonschema.Schema
	logger *slog.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		i.logger = logger
	}
}

// NewInspector creates an Inspector.
// The embedded schema is compiled once; a compile failure disables the
// shape check and is logged rather than returned, because the remaining
// checks do not depend on it.
func NewInspector(opts ...Option) *Inspector {
	i := &Inspector{}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = slog.Default()
	}

	schema, err := jsonschema.NewCompiler().Compile(appSchema)
	if err != nil {
		i.logger.Warn("app.json schema unavailable", "error", err)
	} else {
		i.schema = schema
	}

	return i
}

// Inspect examines the configuration files in dir.
// A problem with one file never stops inspection of the others.
func (i *Inspector) Inspect(dir string) *Findings {
	findings := &Findings{}
	i.checkAppConfig(dir, findings)
	i.checkMetroConfig(dir, findings)
	i.checkPackage(dir, findings)
	return findings
}

func (i *Inspector) checkAppConfig(dir string, findings *Findings) {
	path := filepath.Join(dir, config.AppConfigFile)

	data, err := os.ReadFile(path) //nolint:gosec // path is the project's own app.json
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			findings.add(model.SeverityWarning, path, "%s not found", config.AppConfigFile)
			return
		}
		findings.add(model.SeverityError, path, "Failed to read %s: %v", config.AppConfigFile, err)
		return
	}

	if err := parseObject(data); err != nil {
		findings.add(model.SeverityError, path, "Failed to parse %s: %v", config.AppConfigFile, err)
		findings.recommend(fmt.Sprintf("Fix the JSON syntax of %s, then run \"tunnelcheck fix\"", path))
		return
	}

	server := gjson.GetBytes(data, "server")
	if truthy(server) {
		findings.add(model.SeverityInfo, path, "Server config found: %s", compact(server.Raw))

		host := server.Get("host")
		if truthy(host) && host.String() != config.WildcardBindAddress {
			findings.add(model.SeverityWarning, path,
				"Server host is set to '%s' instead of '%s'", host.String(), config.WildcardBindAddress)
			findings.recommend(fmt.Sprintf(
				"Set server.host to %q in %s for external access", config.WildcardBindAddress, config.AppConfigFile))
		}
	} else {
		findings.add(model.SeverityInfo, path, "No server config found")
	}

	if scheme := gjson.GetBytes(data, "expo.scheme"); truthy(scheme) {
		findings.add(model.SeverityInfo, path, "URL scheme: %s", scheme.String())
	}

	if router := gjson.GetBytes(data, "expo.extra.router"); truthy(router) {
		findings.add(model.SeverityInfo, path, "Router config: %s", compact(router.Raw))
	}

	for _, violation := range i.validateShape(data) {
		findings.add(model.SeverityWarning, path, "Unexpected %s shape: %s", config.AppConfigFile, violation)
	}
}

// validateShape checks data against the embedded schema and returns
// the violations sorted by keyword.
func (i *Inspector) validateShape(data []byte) []string {
	if i.schema == nil {
		return nil
	}

	result := i.schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}

	keys := make([]string, 0, len(result.Errors))
	for key := range result.Errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	violations := make([]string, 0, len(keys))
	for _, key := range keys {
		violations = append(violations, fmt.Sprintf("%s: %v", key, result.Errors[key]))
	}
	return violations
}

func (i *Inspector) checkMetroConfig(dir string, findings *Findings) {
	path := filepath.Join(dir, config.MetroConfigFile)

	data, err := os.ReadFile(path) //nolint:gosec // path is the project's own metro config
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			findings.add(model.SeverityInfo, path, "No %s found (using defaults)", config.MetroConfigFile)
			return
		}
		findings.add(model.SeverityWarning, path, "Failed to read %s: %v", config.MetroConfigFile, err)
		return
	}

	i.logger.Debug("metro config preview", "path", path, "head", head(string(data), 10))

	if strings.Contains(string(data), "server") {
		findings.add(model.SeverityWarning, path,
			"Custom server config in %s may override CORS settings", config.MetroConfigFile)
		findings.recommend(fmt.Sprintf(
			"Review the server settings in %s; they can shadow server.host and server.port from %s",
			config.MetroConfigFile, config.AppConfigFile))
	}
}

func (i *Inspector) checkPackage(dir string, findings *Findings) {
	path := filepath.Join(dir, config.PackageFile)

	data, err := os.ReadFile(path) //nolint:gosec // path is the project's own package.json
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			findings.add(model.SeverityWarning, path, "Failed to read %s: %v", config.PackageFile, err)
		}
		return
	}

	if err := parseObject(data); err != nil {
		findings.add(model.SeverityError, path, "Failed to parse %s: %v", config.PackageFile, err)
		return
	}

	gjson.GetBytes(data, "scripts").ForEach(func(name, command gjson.Result) bool {
		if strings.Contains(name.String(), "start") || strings.Contains(name.String(), "dev") {
			findings.StartScripts = append(findings.StartScripts, name.String()+": "+command.String())
		}
		return true
	})
}

// parseObject reports why data is not a JSON object.
//
// Design decision: encoding/json is used only for its error messages,
// which carry the offset of the first syntax error. Field access goes
// through gjson so key order and unknown keys never matter. gjson reads
// the first of two equal keys, so repeated keys are rejected here
// rather than reported against a value the dev server never sees.
func parseObject(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc == nil {
		return errors.New("top-level value is null")
	}
	if key, ok := duplicateKey(gjson.ParseBytes(data)); ok {
		return fmt.Errorf("duplicate key %q", key)
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

// truthy mirrors the loose "is set" test used by Expo tooling:
// missing, null, false, 0 and "" count as unset.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.Number:
		return r.Float() != 0
	case gjson.String:
		return r.Str != ""
	default:
		return r.Exists()
	}
}

func compact(raw string) string {
	return string(pretty.Ugly([]byte(raw)))
}

func head(s string, lines int) string {
	parts := strings.SplitN(s, "\n", lines+1)
	if len(parts) > lines {
		parts = parts[:lines]
	}
	return strings.Join(parts, "\n")
}
