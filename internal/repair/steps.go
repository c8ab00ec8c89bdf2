package repair

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/nao1215/tunnelcheck/internal/config"
)

// Script entries added to package.json.
const (
	TunnelScriptName    = "start:tunnel"
	TunnelScriptCommand = "EXPO_DEVTOOLS_LISTEN_ADDRESS=0.0.0.0 npx expo start --tunnel --host 0.0.0.0"
	CleanScriptName     = "start:clean"
	CleanScriptCommand  = "npx expo start --clear"
)

// step is one idempotent edit of a JSON document.
//
// apply returns the edited document and true when it changed something.
// When the document is already correct it returns the input unchanged and
// false. An error aborts the whole file.
type step struct {
	description string
	apply       func(doc []byte) ([]byte, bool, error)
}

// appConfigSteps returns the ordered patch sequence for app.json.
func appConfigSteps() []step {
	return []step{
		{
			description: "Created server settings object",
			apply:       ensureObject("server"),
		},
		{
			description: fmt.Sprintf("Set server.host to %q for external access", config.WildcardBindAddress),
			apply:       forceServerHost,
		},
		{
			description: fmt.Sprintf("Set default server port to %d", config.DefaultServerPort),
			apply:       ensureServerPort,
		},
		{
			description: "Removed restrictive CORS settings to use Expo defaults",
			apply:       removeCors,
		},
		{
			description: "Set router.origin to false for better compatibility",
			apply:       disableRouterOrigin,
		},
	}
}

// packageSteps returns the ordered patch sequence for package.json.
func packageSteps() []step {
	return []step{
		{
			description: fmt.Sprintf("Added %s script for external access", TunnelScriptName),
			apply:       ensureScript(TunnelScriptName, TunnelScriptCommand),
		},
		{
			description: fmt.Sprintf("Added %s script for cache clearing", CleanScriptName),
			apply:       ensureScript(CleanScriptName, CleanScriptCommand),
		},
	}
}

// ensureObject makes path hold an object. An unset value (see truthy) is
// replaced by {}; any other non-object value is an error.
func ensureObject(path string) func([]byte) ([]byte, bool, error) {
	return func(doc []byte) ([]byte, bool, error) {
		value := gjson.GetBytes(doc, path)
		if value.IsObject() {
			return doc, false, nil
		}
		if truthy(value) {
			return nil, false, fmt.Errorf("%w: %s is %s", ErrNotObject, path, describe(value))
		}
		out, err := sjson.SetRawBytes(doc, path, []byte("{}"))
		if err != nil {
			return nil, false, fmt.Errorf("set %s: %w", path, err)
		}
		return out, true, nil
	}
}

func forceServerHost(doc []byte) ([]byte, bool, error) {
	host := gjson.GetBytes(doc, "server.host")
	if host.Type == gjson.String && host.Str == config.WildcardBindAddress {
		return doc, false, nil
	}
	out, err := sjson.SetBytes(doc, "server.host", config.WildcardBindAddress)
	if err != nil {
		return nil, false, fmt.Errorf("set server.host: %w", err)
	}
	return out, true, nil
}

// ensureServerPort keeps any set port, including one the schema would
// reject; the inspector reports those.
func ensureServerPort(doc []byte) ([]byte, bool, error) {
	if truthy(gjson.GetBytes(doc, "server.port")) {
		return doc, false, nil
	}
	out, err := sjson.SetBytes(doc, "server.port", config.DefaultServerPort)
	if err != nil {
		return nil, false, fmt.Errorf("set server.port: %w", err)
	}
	return out, true, nil
}

// removeCors deletes server.cors and a top-level cors entry. Both are
// restrictions the dev server would apply on top of its own defaults.
func removeCors(doc []byte) ([]byte, bool, error) {
	changed := false
	for _, path := range []string{"server.cors", "cors"} {
		if !truthy(gjson.GetBytes(doc, path)) {
			continue
		}
		out, err := sjson.DeleteBytes(doc, path)
		if err != nil {
			return nil, false, fmt.Errorf("delete %s: %w", path, err)
		}
		doc = out
		changed = true
	}
	return doc, changed, nil
}

func disableRouterOrigin(doc []byte) ([]byte, bool, error) {
	if gjson.GetBytes(doc, "expo.extra.router.origin").Type == gjson.False {
		return doc, false, nil
	}
	for _, path := range []string{"expo", "expo.extra", "expo.extra.router"} {
		out, _, err := ensureObject(path)(doc)
		if err != nil {
			return nil, false, err
		}
		doc = out
	}
	out, err := sjson.SetBytes(doc, "expo.extra.router.origin", false)
	if err != nil {
		return nil, false, fmt.Errorf("set expo.extra.router.origin: %w", err)
	}
	return out, true, nil
}

// ensureScript adds scripts[name] unless it is already set to a non-empty
// value. A user's own command under that name is kept.
func ensureScript(name, command string) func([]byte) ([]byte, bool, error) {
	return func(doc []byte) ([]byte, bool, error) {
		path := "scripts." + escapeKey(name)
		if truthy(gjson.GetBytes(doc, path)) {
			return doc, false, nil
		}
		withScripts, _, err := ensureObject("scripts")(doc)
		if err != nil {
			return nil, false, err
		}
		out, err := sjson.SetBytes(withScripts, path, command)
		if err != nil {
			return nil, false, fmt.Errorf("set %s: %w", path, err)
		}
		return out, true, nil
	}
}

// truthy reports whether a value counts as set: missing, null, false,
// 0 and "" do not.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Float() != 0
	case gjson.String:
		return r.Str != ""
	default:
		return r.Exists()
	}
}

func describe(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "an array"
	case r.Type == gjson.String:
		return "a string"
	case r.Type == gjson.Number:
		return "a number"
	case r.Type == gjson.True:
		return "true"
	default:
		return r.Type.String()
	}
}

// escapeKey escapes every character of key that could be read as path
// syntax by gjson or sjson.
func escapeKey(key string) string {
	var b strings.Builder
	for _, c := range key {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-' {
			b.WriteRune(c)
			continue
		}
		b.WriteByte('\\')
		b.WriteRune(c)
	}
	return b.String()
}
