package probe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/tunnelcheck/internal/config"
	"github.com/nao1215/tunnelcheck/internal/model"
)

// TimeoutMessage is the ProbeResult.Error of a probe that exceeded its timeout.
const TimeoutMessage = "Timeout"

// maxDrainBytes limits how much of a response body is read before closing,
// so that keep-alive connections can be reused without reading large bundles.
const maxDrainBytes = 4 << 10

// Prober issues reachability requests against candidate endpoints.
//
// Design decision: We hold one http.Client for all probes rather than one
// per request so that connection setup settings (no proxy, no redirects)
// are consistent and tests can inject a custom transport.
type Prober struct {
	client      *http.Client
	hosts       []string
	timeout     time.Duration
	concurrency int
	logger      *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithTimeout sets the per-probe timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Prober) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithHosts sets the host aliases probed for every port.
func WithHosts(hosts ...string) Option {
	return func(p *Prober) {
		if len(hosts) > 0 {
			p.hosts = append([]string(nil), hosts...)
		}
	}
}

// WithConcurrency sets how many probes may be in flight at once.
func WithConcurrency(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// WithHTTPClient replaces the HTTP client used for probes.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Prober) {
		if client != nil {
			p.client = client
		}
	}
}

// NewProber creates a Prober with the default hosts, a 3000 ms timeout and
// sequential probing.
func NewProber(opts ...Option) *Prober {
	p := &Prober{
		client:      NewHTTPClient(),
		hosts:       config.DefaultHosts(),
		timeout:     config.DefaultProbeTimeout,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// NewHTTPClient returns a client suitable for talking to local servers:
// it never uses an environment proxy and never follows redirects, so the
// first response of the server itself is what gets classified.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:             nil,
		DisableKeepAlives: true,
	}
	return &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Hosts returns the host aliases in probe order.
func (p *Prober) Hosts() []string {
	return append([]string(nil), p.hosts...)
}

// Targets expands ports into targets: port-major, hosts in configured order.
func (p *Prober) Targets(ports []int) []model.ProbeTarget {
	targets := make([]model.ProbeTarget, 0, len(ports)*len(p.hosts))
	for _, port := range ports {
		for _, host := range p.hosts {
			targets = append(targets, model.ProbeTarget{Host: host, Port: port})
		}
	}
	return targets
}

// ProbeAll probes every (host, port) pair for the given ports.
// The returned slice has one result per target, in target order,
// regardless of the order in which concurrent probes finish.
func (p *Prober) ProbeAll(ctx context.Context, ports []int) []model.ProbeResult {
	return p.ProbeTargets(ctx, p.Targets(ports))
}

// ProbeTargets probes the given targets and returns results in input order.
//
// Design decision: We use errgroup.SetLimit with a pre-sized result slice
// rather than a channel fan-in. Each goroutine owns exactly one slot, so no
// locking is needed and ordering is fixed by construction.
func (p *Prober) ProbeTargets(ctx context.Context, targets []model.ProbeTarget) []model.ProbeResult {
	results := make([]model.ProbeResult, len(targets))

	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			results[i] = p.Probe(ctx, target)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Probe never fails; errors are recorded in results

	return results
}

// Probe issues a single GET request against the target.
// Every outcome is returned as a ProbeResult; Probe never panics or fails.
func (p *Prober) Probe(ctx context.Context, target model.ProbeTarget) model.ProbeResult {
	result := model.ProbeResult{Target: target}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL(), nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	resp, err := p.client.Do(req)
	if err != nil {
		result.Error = describeError(err)
		p.logger.Debug("probe failed", "url", target.URL(), "error", result.Error)
		return result
	}
	defer resp.Body.Close()
	_, _ = io.CopyN(io.Discard, resp.Body, maxDrainBytes) //nolint:errcheck // Body content is irrelevant

	result.Reachable = true
	result.StatusCode = resp.StatusCode
	result.Headers = resp.Header.Clone()

	p.logger.Debug("probe response",
		"url", target.URL(),
		"status", resp.StatusCode,
		"headers", resp.Header,
	)

	return result
}

// describeError converts a client error into the text stored in a result.
func describeError(err error) string {
	if IsTimeout(err) {
		return TimeoutMessage
	}
	return ErrorText(err)
}

// ErrorText returns the message of a client error without the *url.Error
// wrapper, which only repeats the method and URL.
func ErrorText(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}

// IsTimeout reports whether err was caused by a deadline being exceeded.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
