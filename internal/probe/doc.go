// Package probe discovers local development servers.
//
// The Prober issues one bounded plain GET per (host, port) candidate and
// records every outcome, including refusals and timeouts, as a
// model.ProbeResult. The Locator walks the priority port list and returns
// the first reachable server, which the CORS phase then tests.
//
// Neither type ever returns a network failure as an error: a probe that
// cannot connect is a normal "unreachable" result.
package probe
