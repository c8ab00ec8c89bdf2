package model

// CorsTrial is a single preflight request for one literal origin
// against a discovered server.
type CorsTrial struct {
	// Origin is sent verbatim in the Origin request header.
	Origin string `json:"origin"`

	// ServerURL is the base URL of the server under test.
	ServerURL string `json:"server_url"`
}

// CorsOutcome is the verdict of one CorsTrial.
type CorsOutcome struct {
	// Trial is the request that produced this outcome.
	Trial CorsTrial `json:"trial"`

	// Allowed is true when Access-Control-Allow-Origin is "*"
	// or equals the requested origin exactly.
	Allowed bool `json:"allowed"`

	// AllowedOrigin is the received Access-Control-Allow-Origin value.
	AllowedOrigin string `json:"allowed_origin,omitempty"`

	// AllowedHeaders is the received Access-Control-Allow-Headers value.
	// It is informational and never changes the verdict.
	AllowedHeaders string `json:"allowed_headers,omitempty"`

	// Message is a short human-readable explanation of the verdict.
	Message string `json:"message"`
}
