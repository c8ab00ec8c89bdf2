package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/nao1215/tunnelcheck/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, report *model.DiagnosticReport) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, report *model.DiagnosticReport) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, report)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if len(p.StepNames()) != 0 {
			t.Errorf("expected 0 steps, got %v", p.StepNames())
		}
		if p.continueOnError {
			t.Error("expected continueOnError to default to false")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

func TestPipelineAddSteps(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "a"})
	p.AddSteps(&mockStep{name: "b"}, &mockStep{name: "c"})

	got := strings.Join(p.StepNames(), ",")
	if got != "a,b,c" {
		t.Errorf("StepNames() = %q, want %q", got, "a,b,c")
	}
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		executionOrder := make([]string, 0)
		record := func(name string) *mockStep {
			return &mockStep{
				name: name,
				doFunc: func(_ context.Context, _ *model.DiagnosticReport) error {
					executionOrder = append(executionOrder, name)
					return nil
				},
			}
		}

		p := New()
		p.AddSteps(record(InspectStepName), record(ReachabilityStepName), record(CorsStepName))

		report := model.NewDiagnosticReport(t.TempDir())
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{InspectStepName, ReachabilityStepName, CorsStepName}
		if strings.Join(executionOrder, ",") != strings.Join(want, ",") {
			t.Errorf("wrong execution order: %v", executionOrder)
		}
		if strings.Join(report.PerformedPhases, ",") != strings.Join(want, ",") {
			t.Errorf("wrong performed phases: %v", report.PerformedPhases)
		}
		if report.Cancelled {
			t.Error("report should not be marked cancelled")
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("step failed")
		second := &mockStep{name: "should-not-run"}

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.DiagnosticReport) error {
				return expectedErr
			},
		})
		p.AddStep(second)

		report := model.NewDiagnosticReport(t.TempDir())
		err := p.Execute(context.Background(), report)

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if second.callCount != 0 {
			t.Error("second step should not have been called")
		}
		if len(report.PerformedPhases) != 0 {
			t.Errorf("failed step should not be recorded as performed: %v", report.PerformedPhases)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		second := &mockStep{name: "should-run"}

		p := New(WithContinueOnError(true))
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.DiagnosticReport) error {
				return errors.New("step failed")
			},
		})
		p.AddStep(second)

		report := model.NewDiagnosticReport(t.TempDir())
		if err := p.Execute(context.Background(), report); err != nil {
			t.Errorf("expected nil error with continueOnError, got %v", err)
		}
		if second.callCount != 1 {
			t.Error("second step should have been called")
		}
		if len(report.PerformedPhases) != 1 || report.PerformedPhases[0] != "should-run" {
			t.Errorf("unexpected performed phases: %v", report.PerformedPhases)
		}
	})

	t.Run("records step error as issue", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.DiagnosticReport) error {
				return errors.New("disk on fire")
			},
		})

		report := model.NewDiagnosticReport(t.TempDir())
		_ = p.Execute(context.Background(), report) //nolint:errcheck // checked via report.Issues

		if len(report.Issues) != 1 {
			t.Fatalf("expected 1 issue, got %d", len(report.Issues))
		}
		issue := report.Issues[0]
		if issue.Severity != model.SeverityError {
			t.Errorf("expected error severity, got %v", issue.Severity)
		}
		if issue.Source != "failing-step" || issue.Description != "disk on fire" {
			t.Errorf("unexpected issue: %+v", issue)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "should-not-run"}
		p := New()
		p.AddStep(step)

		report := model.NewDiagnosticReport(t.TempDir())
		err := p.Execute(ctx, report)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not have been called")
		}
		if !report.Cancelled {
			t.Error("report.Cancelled should be true")
		}
	})

	t.Run("step interrupted by cancellation marks the run cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		p := New(WithContinueOnError(true))
		p.AddStep(&mockStep{name: ReachabilityStepName})
		p.AddStep(&mockStep{
			name: CorsStepName,
			doFunc: func(ctx context.Context, _ *model.DiagnosticReport) error {
				cancel()
				return fmt.Errorf("preflight: %w", ctx.Err())
			},
		})

		report := model.NewDiagnosticReport(t.TempDir())
		err := p.Execute(ctx, report)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if !report.Cancelled {
			t.Error("report.Cancelled should be true")
		}
		if len(report.Issues) != 0 {
			t.Errorf("cancellation should not be recorded as an issue, got %v", report.Issues)
		}
		if strings.Join(report.PerformedPhases, ",") != ReachabilityStepName {
			t.Errorf("interrupted phase should not be recorded as performed: %v", report.PerformedPhases)
		}
	})

	t.Run("step error unrelated to a live context is still an issue", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))
		p.AddStep(&mockStep{
			name: CorsStepName,
			doFunc: func(_ context.Context, _ *model.DiagnosticReport) error {
				return context.DeadlineExceeded
			},
		})

		report := model.NewDiagnosticReport(t.TempDir())
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Cancelled {
			t.Error("report should not be marked cancelled")
		}
		if len(report.Issues) != 1 {
			t.Errorf("expected 1 issue, got %v", report.Issues)
		}
	})

	t.Run("cancellation between phases keeps earlier results", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		last := &mockStep{name: CorsStepName}
		p := New()
		p.AddStep(&mockStep{
			name: InspectStepName,
			doFunc: func(_ context.Context, report *model.DiagnosticReport) error {
				report.AddIssue(model.SeverityWarning, "app.json", "app.json not found")
				return nil
			},
		})
		p.AddStep(&mockStep{
			name: ReachabilityStepName,
			doFunc: func(_ context.Context, _ *model.DiagnosticReport) error {
				cancel()
				return nil
			},
		})
		p.AddStep(last)

		report := model.NewDiagnosticReport(t.TempDir())
		err := p.Execute(ctx, report)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if last.callCount != 0 {
			t.Error("phase after cancellation should not run")
		}
		if !report.Cancelled {
			t.Error("report.Cancelled should be true")
		}
		if len(report.Issues) != 1 {
			t.Errorf("expected earlier findings to be kept, got %v", report.Issues)
		}
		if len(report.PerformedPhases) != 2 {
			t.Errorf("expected 2 performed phases, got %v", report.PerformedPhases)
		}
	})
}

func TestPipelineWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := New(WithLogger(logger))
	p.AddStep(&mockStep{name: "logged-step"})

	if err := p.Execute(context.Background(), model.NewDiagnosticReport("/tmp/app")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "executing step") || !strings.Contains(output, "logged-step") {
		t.Errorf("expected step execution to be logged, got %q", output)
	}
	if !strings.Contains(output, "starting pipeline") {
		t.Errorf("expected step list to be logged, got %q", output)
	}
	if !strings.Contains(output, "step completed") {
		t.Errorf("expected step completion to be logged, got %q", output)
	}
}
