// Package inspect analyzes an Expo project's configuration files for
// settings that keep the development server from being reached through a
// tunnel or from external origins. It only reads files.
//
// Three files are examined:
//
//   - app.json: server host, URL scheme and router settings, plus a shape
//     check against an embedded JSON Schema.
//   - metro.config.js: a plain text search for "server". This is a
//     heuristic, not a JavaScript parser; comments or unrelated
//     identifiers containing the word produce false positives, which are
//     acceptable for an advisory warning.
//   - package.json: start and dev scripts, listed for display.
package inspect
