package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/tunnelcheck/internal/config"
	"github.com/nao1215/tunnelcheck/internal/cors"
	"github.com/nao1215/tunnelcheck/internal/inspect"
	"github.com/nao1215/tunnelcheck/internal/model"
	"github.com/nao1215/tunnelcheck/internal/probe"
)

// Step names, recorded in DiagnosticReport.PerformedPhases.
const (
	InspectStepName      = "inspect"
	ReachabilityStepName = "reachability"
	CorsStepName         = "cors"
)

// InspectStep examines the project's configuration files.
type InspectStep struct {
	inspector *inspect.Inspector
}

// NewInspectStep creates an inspection step.
func NewInspectStep(inspector *inspect.Inspector) *InspectStep {
	return &InspectStep{inspector: inspector}
}

// Name returns the step name.
func (s *InspectStep) Name() string {
	return InspectStepName
}

// Do inspects report.WorkDir and appends the findings.
func (s *InspectStep) Do(_ context.Context, report *model.DiagnosticReport) error {
	findings := s.inspector.Inspect(report.WorkDir)
	report.Issues = append(report.Issues, findings.Issues...)
	for _, rec := range findings.Recommendations {
		report.AddRecommendation(rec.Description)
	}
	report.StartScripts = append(report.StartScripts, findings.StartScripts...)
	return nil
}

// ReachabilityStep probes every candidate host and port.
type ReachabilityStep struct {
	prober *probe.Prober
	ports  []int
}

// NewReachabilityStep creates a reachability step for the given ports.
func NewReachabilityStep(prober *probe.Prober, ports []int) *ReachabilityStep {
	return &ReachabilityStep{prober: prober, ports: ports}
}

// Name returns the step name.
func (s *ReachabilityStep) Name() string {
	return ReachabilityStepName
}

// Do probes all targets and stores the results in probe order.
// Results gathered before a cancellation are kept and ctx.Err() is
// returned, since unreachable targets may only reflect the cancellation.
func (s *ReachabilityStep) Do(ctx context.Context, report *model.DiagnosticReport) error {
	report.Probes = s.prober.ProbeAll(ctx, s.ports)
	return ctx.Err()
}

// CorsStep locates the active server and runs a preflight per origin.
type CorsStep struct {
	locator   *probe.Locator
	validator *cors.Validator
	origins   []string
	logger    *slog.Logger
}

// NewCorsStep creates a CORS step.
func NewCorsStep(locator *probe.Locator, validator *cors.Validator, origins []string, logger *slog.Logger) *CorsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CorsStep{
		locator:   locator,
		validator: validator,
		origins:   origins,
		logger:    logger,
	}
}

// Name returns the step name.
func (s *CorsStep) Name() string {
	return CorsStepName
}

// Do tests the origins against the first reachable server. Finding no
// server is a normal outcome: the step marks CORS as skipped. A search
// or preflight cut short by ctx returns ctx.Err().
func (s *CorsStep) Do(ctx context.Context, report *model.DiagnosticReport) error {
	active, err := s.locator.Find(ctx)
	if err != nil {
		if errors.Is(err, probe.ErrNoActiveServer) {
			s.logger.Info("skipping CORS tests", "reason", err)
			report.CorsSkipped = true
			return nil
		}
		return err
	}

	report.ActiveServer = active.Target.URL()
	report.CorsOutcomes = s.validator.Validate(ctx, report.ActiveServer, s.origins)
	return ctx.Err()
}

// NewDiagnosticPipeline builds the three-phase diagnostic pipeline from cfg.
func NewDiagnosticPipeline(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	prober := probe.NewProber(
		probe.WithHosts(cfg.Hosts...),
		probe.WithTimeout(cfg.ProbeTimeout),
		probe.WithConcurrency(cfg.Concurrency),
		probe.WithLogger(logger),
	)
	validator := cors.NewValidator(
		cors.WithTimeout(cfg.CorsTimeout),
		cors.WithConcurrency(cfg.Concurrency),
		cors.WithLogger(logger),
	)

	p := New(WithLogger(logger), WithContinueOnError(true))
	p.AddSteps(
		NewInspectStep(inspect.NewInspector(inspect.WithLogger(logger))),
		NewReachabilityStep(prober, cfg.Ports),
		NewCorsStep(probe.NewLocator(prober, cfg.Ports), validator, cfg.Origins, logger),
	)
	return p
}
