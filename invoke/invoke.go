// Package invoke runs external benchmark tools under a wall-clock timeout
// with a bounded retry budget.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hostbench/hostbench/target"
	"github.com/hostbench/hostbench/util"
)

// Verdict is a tool-specific classification of one attempt's output.
type Verdict int

const (
	// The output can be parsed.
	VerdictUsable Verdict = iota
	// The tool ran but a contended resource produced a useless result
	// (e.g. a benchmark server returning zero throughput). Worth retrying.
	VerdictBusy
	// The tool reported an unrecoverable error. Retrying is pointless.
	VerdictFatal
)

// Classifier inspects raw output and decides whether it is usable.
type Classifier func(out []byte) Verdict

type Spec struct {
	Argv        []string
	Timeout     time.Duration
	MaxAttempts int           // 0 means DefaultMaxAttempts
	Backoff     time.Duration // 0 means DefaultBackoff
	Classify    Classifier
}

const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = 2 * time.Second
)

var (
	ErrBadAfterRetries = errors.New("no usable output after all attempts")
	ErrToolFatal       = errors.New("tool reported an unrecoverable error")
)

type Runner struct {
	target target.Target
	sleep  func(time.Duration)
}

func NewRunner(t target.Target) *Runner {
	return &Runner{target: t, sleep: time.Sleep}
}

// Run executes the command until an attempt yields usable output, an attempt
// is classified fatal, the attempt budget is spent, or ctx is cancelled.
// A timeout counts as one failed (busy) attempt. The raw output of the last
// attempt is returned in every case.
func (r *Runner) Run(ctx context.Context, spec *Spec) ([]byte, error) {
	maxAttempts := spec.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	backoff := spec.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	var out []byte
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var err error
		out, err = r.attempt(ctx, spec)
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		switch nextAction(classify(out, err, spec.Classify), attempt, maxAttempts) {
		case actionAccept:
			return out, nil
		case actionAbort:
			return out, fmt.Errorf("%w: %s", ErrToolFatal, util.LastNonEmptyLine(out))
		case actionExhausted:
			return out, ErrBadAfterRetries
		case actionRetry:
			slog.Debug("retrying busy tool",
				slog.String("command", spec.Argv[0]),
				slog.Int("attempt", attempt))
			r.sleep(backoff)
		}
	}
	return out, ErrBadAfterRetries
}

func (r *Runner) attempt(ctx context.Context, spec *Spec) ([]byte, error) {
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}
	return r.target.RunCommand(ctx, spec.Argv)
}

type action int

const (
	actionAccept action = iota
	actionRetry
	actionAbort
	actionExhausted
)

// nextAction is the pure retry decision: given the verdict for an attempt and
// the attempt count, decide what happens next.
func nextAction(v Verdict, attempt, maxAttempts int) action {
	switch v {
	case VerdictUsable:
		return actionAccept
	case VerdictFatal:
		return actionAbort
	default:
		if attempt >= maxAttempts {
			return actionExhausted
		}
		return actionRetry
	}
}

func classify(out []byte, err error, c Classifier) Verdict {
	// A timeout is one failed attempt, not a crash.
	if errors.Is(err, context.DeadlineExceeded) {
		return VerdictBusy
	}
	if c != nil {
		return c(out)
	}
	if err != nil {
		return VerdictBusy
	}
	return VerdictUsable
}
