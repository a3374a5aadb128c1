package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/profilescan/profilescan/internal/model"
)

// mockStep is a configurable step for pipeline tests.
type mockStep struct {
	name   string
	err    error
	called bool
	fn     func(report *model.CrawlReport)
}

func (m *mockStep) Do(_ context.Context, report *model.CrawlReport) error {
	m.called = true
	if m.fn != nil {
		m.fn(report)
	}
	return m.err
}

func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineExecute tests sequential step execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New()
		p.AddSteps(
			&mockStep{name: "first", fn: func(*model.CrawlReport) { order = append(order, "first") }},
			&mockStep{name: "second", fn: func(*model.CrawlReport) { order = append(order, "second") }},
			&mockStep{name: "third", fn: func(*model.CrawlReport) { order = append(order, "third") }},
		)

		report := model.NewCrawlReport("https://example.com")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(order) != 3 || order[0] != "first" || order[2] != "third" {
			t.Errorf("unexpected execution order: %v", order)
		}
	})

	t.Run("records performed steps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(
			&mockStep{name: "crawl_extract"},
			&mockStep{name: "snapshot_save"},
		)

		report := model.NewCrawlReport("https://example.com")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.PerformedSteps) != 2 {
			t.Fatalf("expected 2 performed steps, got %d", len(report.PerformedSteps))
		}
		if report.PerformedSteps[0] != "crawl_extract" {
			t.Errorf("unexpected step name: %q", report.PerformedSteps[0])
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("step failed")
		last := &mockStep{name: "last"}

		p := New()
		p.AddSteps(
			&mockStep{name: "failing", err: stepErr},
			last,
		)

		report := model.NewCrawlReport("https://example.com")
		err := p.Execute(context.Background(), report)
		if !errors.Is(err, stepErr) {
			t.Fatalf("expected step error, got %v", err)
		}
		if last.called {
			t.Error("expected later step to be skipped")
		}
		if report.ErrorMessage != "step failed" {
			t.Errorf("expected error recorded in report, got %q", report.ErrorMessage)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		last := &mockStep{name: "last"}

		p := New(WithContinueOnError(true))
		p.AddSteps(
			&mockStep{name: "failing", err: errors.New("step failed")},
			last,
		)

		report := model.NewCrawlReport("https://example.com")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !last.called {
			t.Error("expected later step to run")
		}
	})

	t.Run("cancellation marks report interrupted", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := New()
		p.AddStep(step)

		report := model.NewCrawlReport("https://example.com")
		err := p.Execute(ctx, report)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if step.called {
			t.Error("expected step to be skipped after cancellation")
		}
		if !report.Interrupted {
			t.Error("expected report to be marked interrupted")
		}
	})
}

// TestPipelineStepNames tests step introspection.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	p := New()
	if p.StepCount() != 0 {
		t.Errorf("expected empty pipeline, got %d steps", p.StepCount())
	}

	p.AddStep(&mockStep{name: "alpha"})
	p.AddStep(&mockStep{name: "beta"})

	if p.StepCount() != 2 {
		t.Errorf("expected 2 steps, got %d", p.StepCount())
	}

	names := p.StepNames()
	if names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("unexpected step names: %v", names)
	}
}
