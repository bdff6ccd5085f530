// Package orchestrator sequences the benchmark battery. Tests run strictly
// one after another; each test's failure domain is isolated so one broken
// tool never stops the rest of the battery.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"github.com/hostbench/hostbench/bench"
	"github.com/hostbench/hostbench/report"
)

// TestState tracks where one tool is in its lifecycle.
type TestState string

const (
	StatePending       TestState = "pending"
	StateRunning       TestState = "running"
	StateCompleted     TestState = "completed"
	StateSkippedByFlag TestState = "skipped"
	StateUnavailable   TestState = "unavailable"
)

type toolRun struct {
	tool  bench.Tool
	skip  bool
	state TestState
}

type Coordinator struct {
	bctx         *bench.Context
	accumulator  *report.Accumulator
	runs         []*toolRun
	showProgress bool
}

func New(accumulator *report.Accumulator, bctx *bench.Context, showProgress bool) *Coordinator {
	return &Coordinator{accumulator: accumulator, bctx: bctx, showProgress: showProgress}
}

// Add queues a tool. Skip marks it disabled by configuration: it never runs
// and leaves no section in the report.
func (c *Coordinator) Add(tool bench.Tool, skip bool) {
	c.runs = append(c.runs, &toolRun{tool: tool, skip: skip, state: StatePending})
}

// States reports the final state of every queued tool, in battery order.
func (c *Coordinator) States() map[string]TestState {
	states := make(map[string]TestState, len(c.runs))
	for _, tr := range c.runs {
		states[tr.tool.Name()] = tr.state
	}
	return states
}

// Run executes the battery and finalizes the report. Cancellation is
// cooperative: it is checked between tools, and an in-flight tool finishes
// or times out on its own schedule. Whatever was recorded before the
// interruption is kept.
func (c *Coordinator) Run(ctx context.Context) *report.AggregateReport {
	var bar *progressbar.ProgressBar
	if c.showProgress {
		bar = progressbar.NewOptions(len(c.runs),
			progressbar.OptionSetDescription("running benchmarks"),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}
	step := func() {
		if bar != nil {
			bar.Add(1)
		}
	}

	for _, tr := range c.runs {
		if ctx.Err() != nil {
			slog.Info("run interrupted, emitting partial report")
			break
		}
		c.runOne(ctx, tr)
		step()
	}
	return c.accumulator.Finalize()
}

func (c *Coordinator) runOne(ctx context.Context, tr *toolRun) {
	name := tr.tool.Name()
	if tr.skip {
		tr.state = StateSkippedByFlag
		slog.Info("test skipped by flag", slog.String("test", name))
		return
	}

	tr.state = StateRunning
	slog.Info("starting test", slog.String("test", name))

	err := tr.tool.Setup(ctx, c.bctx)
	if err != nil {
		if errors.Is(err, bench.ErrUnavailable) {
			tr.state = StateUnavailable
			slog.Warn("test unavailable", slog.String("test", name), slog.String("error", err.Error()))
			return
		}
		tr.state = StateUnavailable
		slog.Warn("test setup failed", slog.String("test", name), slog.String("error", err.Error()))
		return
	}

	sections, err := tr.tool.Run(ctx)
	for _, s := range sections {
		if appendErr := c.accumulator.Append(s); appendErr != nil {
			slog.Error("recording section failed", slog.String("test", name), slog.String("error", appendErr.Error()))
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("test failed", slog.String("test", name), slog.String("error", err.Error()))
		if len(sections) == 0 {
			// The attempt stays visible in the report as a failed section.
			c.accumulator.Append(report.FailedSection(name, nil))
		}
		tr.state = StateCompleted
		return
	}

	tr.state = StateCompleted
	slog.Info("finished test", slog.String("test", name))
}
