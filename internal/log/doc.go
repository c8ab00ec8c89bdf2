// Package log provides the structured logger used by tunnelcheck, built on
// top of the standard slog package.
//
// Probe and preflight responses are logged with their headers at debug
// level. Development servers and tunnels occasionally answer with cookies
// or authorization material, so the SecureHandler masks:
//   - attributes whose key names a secret (cookie, authorization, token, ...)
//   - string values that look like bearer tokens, JWTs or private keys
//   - sensitive entries of http.Header values, header by header
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("probe response", "url", target.URL(), "headers", resp.Header)
package log
