package repair

import (
	"errors"
	"testing"

	"github.com/tidwall/gjson"
)

func TestSteps_Idempotent(t *testing.T) {
	t.Parallel()

	docs := []string{
		`{}`,
		`{"server":null}`,
		`{"server":{"host":"localhost","port":0,"cors":{"origin":"x"}}}`,
		`{"expo":{"extra":{"router":{"origin":"https://example.com"}}}}`,
		`{"expo":{"extra":null},"cors":{"origin":"*"}}`,
		`{"scripts":{"start":"expo start"}}`,
	}

	sequences := map[string][]step{
		"app.json":     appConfigSteps(),
		"package.json": packageSteps(),
	}

	for name, steps := range sequences {
		for _, doc := range docs {
			t.Run(name+" "+doc, func(t *testing.T) {
				t.Parallel()

				once := []byte(doc)
				for _, s := range steps {
					out, _, err := s.apply(once)
					if err != nil {
						t.Fatalf("%s: %v", s.description, err)
					}
					once = out
				}

				twice := once
				for _, s := range steps {
					out, changed, err := s.apply(twice)
					if err != nil {
						t.Fatalf("%s: %v", s.description, err)
					}
					if changed {
						t.Errorf("%s reported a change on its own output: %s", s.description, twice)
					}
					twice = out
				}

				if string(once) != string(twice) {
					t.Errorf("second pass modified the document: %s -> %s", once, twice)
				}
			})
		}
	}
}

func TestEnsureObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		doc         string
		wantChanged bool
		wantErr     bool
	}{
		{name: "missing", doc: `{"expo":{}}`, wantChanged: true},
		{name: "null", doc: `{"server":null}`, wantChanged: true},
		{name: "false", doc: `{"server":false}`, wantChanged: true},
		{name: "present", doc: `{"server":{"port":8081}}`, wantChanged: false},
		{name: "string", doc: `{"server":"localhost"}`, wantErr: true},
		{name: "array", doc: `{"server":[]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, changed, err := ensureObject("server")([]byte(tt.doc))
			if tt.wantErr {
				if !errors.Is(err, ErrNotObject) {
					t.Fatalf("error = %v, want ErrNotObject", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if !gjson.GetBytes(out, "server").IsObject() {
				t.Errorf("server is not an object: %s", out)
			}
		})
	}
}

func TestEnsureServerPort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		doc      string
		wantPort int64
		changed  bool
	}{
		{name: "missing", doc: `{"server":{}}`, wantPort: 8081, changed: true},
		{name: "zero", doc: `{"server":{"port":0}}`, wantPort: 8081, changed: true},
		{name: "empty string", doc: `{"server":{"port":""}}`, wantPort: 8081, changed: true},
		{name: "custom", doc: `{"server":{"port":19000}}`, wantPort: 19000, changed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, changed, err := ensureServerPort([]byte(tt.doc))
			if err != nil {
				t.Fatal(err)
			}
			if changed != tt.changed {
				t.Errorf("changed = %v, want %v", changed, tt.changed)
			}
			if got := gjson.GetBytes(out, "server.port").Int(); got != tt.wantPort {
				t.Errorf("port = %d, want %d", got, tt.wantPort)
			}
		})
	}
}

func TestRemoveCors(t *testing.T) {
	t.Parallel()

	out, changed, err := removeCors([]byte(`{"server":{"host":"0.0.0.0","cors":{"origin":"x"}},"cors":{"origin":"y"},"expo":{}}`))
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("expected a change")
	}
	if gjson.GetBytes(out, "server.cors").Exists() || gjson.GetBytes(out, "cors").Exists() {
		t.Errorf("cors settings remain: %s", out)
	}
	if !gjson.GetBytes(out, "expo").IsObject() || gjson.GetBytes(out, "server.host").String() != "0.0.0.0" {
		t.Errorf("unrelated settings were lost: %s", out)
	}
}

func TestDisableRouterOrigin(t *testing.T) {
	t.Parallel()

	t.Run("creates intermediates", func(t *testing.T) {
		t.Parallel()

		out, changed, err := disableRouterOrigin([]byte(`{"expo":{"name":"demo"}}`))
		if err != nil {
			t.Fatal(err)
		}
		if !changed {
			t.Error("expected a change")
		}
		if got := gjson.GetBytes(out, "expo.extra.router.origin"); got.Type != gjson.False {
			t.Errorf("router origin = %s, want false", got.Raw)
		}
		if gjson.GetBytes(out, "expo.name").String() != "demo" {
			t.Errorf("expo.name was lost: %s", out)
		}
	})

	t.Run("non-object intermediate", func(t *testing.T) {
		t.Parallel()

		_, _, err := disableRouterOrigin([]byte(`{"expo":{"extra":"nope"}}`))
		if !errors.Is(err, ErrNotObject) {
			t.Fatalf("error = %v, want ErrNotObject", err)
		}
	})
}

func TestEnsureScript(t *testing.T) {
	t.Parallel()

	t.Run("keeps a user command", func(t *testing.T) {
		t.Parallel()

		doc := `{"scripts":{"start:tunnel":"my-own-tunnel"}}`
		out, changed, err := ensureScript(TunnelScriptName, TunnelScriptCommand)([]byte(doc))
		if err != nil {
			t.Fatal(err)
		}
		if changed || string(out) != doc {
			t.Errorf("user script was modified: %s", out)
		}
	})

	t.Run("creates scripts object", func(t *testing.T) {
		t.Parallel()

		out, changed, err := ensureScript(CleanScriptName, CleanScriptCommand)([]byte(`{"name":"demo"}`))
		if err != nil {
			t.Fatal(err)
		}
		if !changed {
			t.Error("expected a change")
		}
		got := gjson.GetBytes(out, "scripts").Map()[CleanScriptName].String()
		if got != CleanScriptCommand {
			t.Errorf("start:clean = %q, want %q: %s", got, CleanScriptCommand, out)
		}
	})

	t.Run("scripts is not an object", func(t *testing.T) {
		t.Parallel()

		_, _, err := ensureScript(CleanScriptName, CleanScriptCommand)([]byte(`{"scripts":"x"}`))
		if !errors.Is(err, ErrNotObject) {
			t.Fatalf("error = %v, want ErrNotObject", err)
		}
	})
}

func TestEscapeKey(t *testing.T) {
	t.Parallel()

	if got := escapeKey("start:tunnel"); got != `start\:tunnel` {
		t.Errorf("escapeKey() = %q", got)
	}
	if got := escapeKey("dev-web_1"); got != "dev-web_1" {
		t.Errorf("escapeKey() = %q", got)
	}
}
