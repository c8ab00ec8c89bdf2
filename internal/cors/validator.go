package cors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/tunnelcheck/internal/config"
	"github.com/nao1215/tunnelcheck/internal/model"
	"github.com/nao1215/tunnelcheck/internal/probe"
)

// Preflight request header values. A browser fetching the bundle from a
// web origin would send exactly these.
const (
	requestMethod  = http.MethodGet
	requestHeaders = "Content-Type"
)

// Verdict messages.
const (
	msgTimeout = "Request timeout"
	msgNone    = "none"
)

// Validator runs CORS preflight trials.
type Validator struct {
	client      *http.Client
	timeout     time.Duration
	concurrency int
	logger      *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithTimeout sets the per-trial timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(v *Validator) {
		if timeout > 0 {
			v.timeout = timeout
		}
	}
}

// WithConcurrency sets how many trials may be in flight at once.
func WithConcurrency(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithHTTPClient replaces the HTTP client used for trials.
func WithHTTPClient(client *http.Client) Option {
	return func(v *Validator) {
		if client != nil {
			v.client = client
		}
	}
}

// NewValidator creates a Validator with a 5000 ms timeout per trial.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		client:      probe.NewHTTPClient(),
		timeout:     config.DefaultCorsTimeout,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(v)
	}

	if v.logger == nil {
		v.logger = slog.Default()
	}

	return v
}

// Validate runs one trial per origin against serverURL and returns the
// outcomes in origin order. A failed trial never affects the others.
func (v *Validator) Validate(ctx context.Context, serverURL string, origins []string) []model.CorsOutcome {
	outcomes := make([]model.CorsOutcome, len(origins))

	var g errgroup.Group
	g.SetLimit(v.concurrency)

	for i, origin := range origins {
		g.Go(func() error {
			outcomes[i] = v.Trial(ctx, model.CorsTrial{Origin: origin, ServerURL: serverURL})
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Trial never fails; errors are recorded in outcomes

	return outcomes
}

// Trial issues a single preflight request and classifies the response.
func (v *Validator) Trial(ctx context.Context, trial model.CorsTrial) model.CorsOutcome {
	outcome := model.CorsOutcome{Trial: trial}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	target := strings.TrimRight(trial.ServerURL, "/") + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, target, nil)
	if err != nil {
		outcome.Message = "Request failed: " + err.Error()
		return outcome
	}
	req.Header.Set("Origin", trial.Origin)
	req.Header.Set("Access-Control-Request-Method", requestMethod)
	req.Header.Set("Access-Control-Request-Headers", requestHeaders)

	resp, err := v.client.Do(req)
	if err != nil {
		if probe.IsTimeout(err) {
			outcome.Message = msgTimeout
		} else {
			outcome.Message = "Request failed: " + probe.ErrorText(err)
		}
		v.logger.Debug("preflight failed", "origin", trial.Origin, "url", target, "error", outcome.Message)
		return outcome
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10)) //nolint:errcheck // Body content is irrelevant

	outcome.AllowedOrigin = resp.Header.Get("Access-Control-Allow-Origin")
	outcome.AllowedHeaders = resp.Header.Get("Access-Control-Allow-Headers")
	outcome.Allowed = IsAllowed(trial.Origin, outcome.AllowedOrigin)

	if outcome.Allowed {
		outcome.Message = fmt.Sprintf("CORS allowed (%s)", outcome.AllowedOrigin)
	} else {
		got := outcome.AllowedOrigin
		if got == "" {
			got = msgNone
		}
		outcome.Message = fmt.Sprintf("CORS blocked (got: %s)", got)
	}

	v.logger.Debug("preflight response",
		"origin", trial.Origin,
		"status", resp.StatusCode,
		"headers", resp.Header,
		"allowed", outcome.Allowed,
	)

	return outcome
}

// IsAllowed reports whether an Access-Control-Allow-Origin value admits
// origin. The comparison is exact: no case folding, no trailing slash
// handling, because browsers compare the serialized origin byte for byte.
func IsAllowed(origin, allowOrigin string) bool {
	return allowOrigin == "*" || (allowOrigin != "" && allowOrigin == origin)
}
