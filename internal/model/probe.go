package model

import (
	"net"
	"net/http"
	"strconv"
)

// ProbeTarget is a candidate endpoint for a local development server.
type ProbeTarget struct {
	// Host is a host alias such as "localhost", "127.0.0.1" or "0.0.0.0".
	Host string `json:"host"`

	// Port is the TCP port the server may listen on.
	Port int `json:"port"`
}

// Address returns the target in "host:port" form.
func (t ProbeTarget) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// URL returns the plain HTTP base URL of the target.
func (t ProbeTarget) URL() string {
	return "http://" + t.Address()
}

// String implements fmt.Stringer.
func (t ProbeTarget) String() string {
	return t.URL()
}

// ProbeResult is the outcome of one reachability attempt.
// It is a value type and is never modified after the prober returns it.
type ProbeResult struct {
	// Target is the endpoint that was probed.
	Target ProbeTarget `json:"target"`

	// Reachable is true when the server answered with any HTTP response.
	Reachable bool `json:"reachable"`

	// StatusCode is the HTTP status code; 0 when the server was unreachable.
	StatusCode int `json:"status_code,omitempty"`

	// Headers holds the response headers of a reachable server.
	Headers http.Header `json:"headers,omitempty"`

	// Error describes why the target was unreachable
	// (e.g. "Timeout" or a connection refused message).
	Error string `json:"error,omitempty"`
}

// AllowOrigin returns the Access-Control-Allow-Origin header of the response,
// or an empty string when the server did not send one.
func (r ProbeResult) AllowOrigin() string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get("Access-Control-Allow-Origin")
}
