package inspect

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/tunnelcheck/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func hasIssue(findings *Findings, severity model.Severity, substr string) bool {
	for _, issue := range findings.Issues {
		if issue.Severity == severity && strings.Contains(issue.Description, substr) {
			return true
		}
	}
	return false
}

func TestInspector_AppConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		appJSON     string
		wantIssue   string
		wantSev     model.Severity
		wantRecomms int
	}{
		{
			name:        "host not wildcard",
			appJSON:     `{"server":{"host":"localhost","port":8081}}`,
			wantIssue:   "Server host is set to 'localhost' instead of '0.0.0.0'",
			wantSev:     model.SeverityWarning,
			wantRecomms: 1,
		},
		{
			name:        "host already wildcard",
			appJSON:     `{"server":{"host":"0.0.0.0","port":8081}}`,
			wantIssue:   `Server config found: {"host":"0.0.0.0","port":8081}`,
			wantSev:     model.SeverityInfo,
			wantRecomms: 0,
		},
		{
			name:        "no server object",
			appJSON:     `{"expo":{"name":"demo"}}`,
			wantIssue:   "No server config found",
			wantSev:     model.SeverityInfo,
			wantRecomms: 0,
		},
		{
			name:        "url scheme",
			appJSON:     `{"expo":{"scheme":"demo"}}`,
			wantIssue:   "URL scheme: demo",
			wantSev:     model.SeverityInfo,
			wantRecomms: 0,
		},
		{
			name:        "router config",
			appJSON:     `{"expo":{"extra":{"router":{"origin":"https://example.com"}}}}`,
			wantIssue:   `Router config: {"origin":"https://example.com"}`,
			wantSev:     model.SeverityInfo,
			wantRecomms: 0,
		},
		{
			name:        "malformed",
			appJSON:     `{"server": {`,
			wantIssue:   "Failed to parse app.json",
			wantSev:     model.SeverityError,
			wantRecomms: 1,
		},
		{
			name:        "top level array",
			appJSON:     `[]`,
			wantIssue:   "Failed to parse app.json",
			wantSev:     model.SeverityError,
			wantRecomms: 1,
		},
		{
			name:        "null document",
			appJSON:     `null`,
			wantIssue:   "Failed to parse app.json: top-level value is null",
			wantSev:     model.SeverityError,
			wantRecomms: 1,
		},
		{
			name:        "duplicate server key",
			appJSON:     `{"server":{"host":"localhost"},"server":{"host":"0.0.0.0"}}`,
			wantIssue:   `Failed to parse app.json: duplicate key "server"`,
			wantSev:     model.SeverityError,
			wantRecomms: 1,
		},
		{
			name:        "port has wrong type",
			appJSON:     `{"server":{"host":"0.0.0.0","port":"8081"}}`,
			wantIssue:   "Unexpected app.json shape",
			wantSev:     model.SeverityWarning,
			wantRecomms: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, dir, "app.json", tt.appJSON)

			findings := NewInspector().Inspect(dir)

			if !hasIssue(findings, tt.wantSev, tt.wantIssue) {
				t.Errorf("expected %s issue containing %q, got %v", tt.wantSev, tt.wantIssue, findings.Issues)
			}
			if len(findings.Recommendations) != tt.wantRecomms {
				t.Errorf("expected %d recommendations, got %v", tt.wantRecomms, findings.Recommendations)
			}
		})
	}
}

func TestInspector_NullAppConfigIsNotEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "app.json", "null\n")
	writeFile(t, dir, "package.json", "null")

	findings := NewInspector().Inspect(dir)

	if hasIssue(findings, model.SeverityInfo, "No server config found") {
		t.Errorf("null app.json must not read as a config without server, got %v", findings.Issues)
	}
	if !hasIssue(findings, model.SeverityError, "Failed to parse package.json") {
		t.Errorf("expected package.json parse error, got %v", findings.Issues)
	}
}

func TestInspector_AppConfigMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	findings := NewInspector().Inspect(dir)

	if !hasIssue(findings, model.SeverityWarning, "app.json not found") {
		t.Errorf("expected missing app.json warning, got %v", findings.Issues)
	}
	want := filepath.Join(dir, "app.json")
	if findings.Issues[0].Source != want {
		t.Errorf("expected source %q, got %q", want, findings.Issues[0].Source)
	}
}

func TestInspector_ValidShapeHasNoWarnings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "app.json", `{
  "expo": {"name": "demo", "scheme": "demo", "extra": {"router": {"origin": false}}},
  "server": {"host": "0.0.0.0", "port": 8081}
}`)

	findings := NewInspector().Inspect(dir)

	for _, issue := range findings.Issues {
		if issue.Severity != model.SeverityInfo {
			t.Errorf("unexpected issue: %v", issue)
		}
	}
}

func TestInspector_MetroConfig(t *testing.T) {
	t.Parallel()

	t.Run("server keyword is flagged", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "app.json", `{"server":{"host":"0.0.0.0"}}`)
		writeFile(t, dir, "metro.config.js", "module.exports = { server: { port: 8082 } };\n")

		findings := NewInspector().Inspect(dir)

		if !hasIssue(findings, model.SeverityWarning, "Custom server config in metro.config.js may override CORS settings") {
			t.Errorf("expected metro warning, got %v", findings.Issues)
		}
		if len(findings.Recommendations) != 1 {
			t.Errorf("expected 1 recommendation, got %v", findings.Recommendations)
		}
	})

	t.Run("plain config is not flagged", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "app.json", `{"server":{"host":"0.0.0.0"}}`)
		writeFile(t, dir, "metro.config.js", "const { getDefaultConfig } = require('expo/metro-config');\nmodule.exports = getDefaultConfig(__dirname);\n")

		findings := NewInspector().Inspect(dir)

		if hasIssue(findings, model.SeverityWarning, "metro.config.js") {
			t.Errorf("unexpected metro warning: %v", findings.Issues)
		}
	})

	t.Run("missing file is informational", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		findings := NewInspector().Inspect(dir)

		if !hasIssue(findings, model.SeverityInfo, "No metro.config.js found") {
			t.Errorf("expected info about missing metro config, got %v", findings.Issues)
		}
	})
}

func TestInspector_PackageScripts(t *testing.T) {
	t.Parallel()

	t.Run("lists start and dev scripts in file order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "package.json", `{
  "name": "demo",
  "scripts": {
    "start": "expo start",
    "test": "jest",
    "dev:web": "expo start --web",
    "start:tunnel": "expo start --tunnel"
  }
}`)

		findings := NewInspector().Inspect(dir)

		want := []string{"start: expo start", "dev:web: expo start --web", "start:tunnel: expo start --tunnel"}
		if len(findings.StartScripts) != len(want) {
			t.Fatalf("expected %v, got %v", want, findings.StartScripts)
		}
		for i := range want {
			if findings.StartScripts[i] != want[i] {
				t.Errorf("script %d: expected %q, got %q", i, want[i], findings.StartScripts[i])
			}
		}
	})

	t.Run("malformed package.json does not stop inspection", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "app.json", `{"server":{"host":"localhost"}}`)
		writeFile(t, dir, "package.json", `{"scripts":`)

		findings := NewInspector().Inspect(dir)

		if !hasIssue(findings, model.SeverityError, "Failed to parse package.json") {
			t.Errorf("expected package.json parse error, got %v", findings.Issues)
		}
		if !hasIssue(findings, model.SeverityWarning, "Server host is set to 'localhost'") {
			t.Errorf("expected app.json warning, got %v", findings.Issues)
		}
	})
}

func TestInspector_NeverWrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	original := `{"server":{"host":"localhost","cors":{"origin":"x"}}}`
	writeFile(t, dir, "app.json", original)

	NewInspector().Inspect(dir)

	got, err := os.ReadFile(filepath.Join(dir, "app.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != original {
		t.Errorf("app.json was modified: %s", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no new files, got %d entries", len(entries))
	}
}
