package invoke

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type scriptedTarget struct {
	attempts int
	outputs  [][]byte
	errs     []error
}

func (t *scriptedTarget) RunCommand(_ context.Context, _ []string) ([]byte, error) {
	i := t.attempts
	t.attempts++
	var out []byte
	var err error
	if i < len(t.outputs) {
		out = t.outputs[i]
	}
	if i < len(t.errs) {
		err = t.errs[i]
	}
	return out, err
}

func (t *scriptedTarget) ReadFile(string) ([]byte, error) { return nil, errors.New("not implemented") }
func (t *scriptedTarget) RemoveAll(string) error          { return nil }

func newTestRunner(tgt *scriptedTarget) *Runner {
	r := NewRunner(tgt)
	r.sleep = func(time.Duration) {}
	return r
}

func TestAlwaysBadTerminatesAfterMaxAttempts(t *testing.T) {
	tgt := &scriptedTarget{}
	r := newTestRunner(tgt)

	_, err := r.Run(context.Background(), &Spec{
		Argv:        []string{"tool"},
		MaxAttempts: 3,
		Classify:    func([]byte) Verdict { return VerdictBusy },
	})

	require.ErrorIs(t, err, ErrBadAfterRetries)
	require.Equal(t, 3, tgt.attempts)
}

func TestFatalShortCircuits(t *testing.T) {
	tgt := &scriptedTarget{outputs: [][]byte{[]byte("iperf3: error - unable to connect to server")}}
	r := newTestRunner(tgt)

	out, err := r.Run(context.Background(), &Spec{
		Argv:     []string{"tool"},
		Classify: func([]byte) Verdict { return VerdictFatal },
	})

	require.ErrorIs(t, err, ErrToolFatal)
	require.Contains(t, err.Error(), "unable to connect")
	require.Equal(t, 1, tgt.attempts, "a fatal result must not burn remaining attempts")
	require.NotEmpty(t, out)
}

func TestBusyThenUsable(t *testing.T) {
	tgt := &scriptedTarget{outputs: [][]byte{[]byte(""), []byte("good output")}}
	r := newTestRunner(tgt)

	calls := 0
	out, err := r.Run(context.Background(), &Spec{
		Argv: []string{"tool"},
		Classify: func(out []byte) Verdict {
			calls++
			if len(out) == 0 {
				return VerdictBusy
			}
			return VerdictUsable
		},
	})

	require.NoError(t, err)
	require.Equal(t, []byte("good output"), out)
	require.Equal(t, 2, tgt.attempts)
	require.Equal(t, 2, calls)
}

func TestTimeoutCountsAsFailedAttempt(t *testing.T) {
	tgt := &scriptedTarget{errs: []error{
		context.DeadlineExceeded,
		context.DeadlineExceeded,
		context.DeadlineExceeded,
	}}
	r := newTestRunner(tgt)

	_, err := r.Run(context.Background(), &Spec{
		Argv:     []string{"tool"},
		Classify: func([]byte) Verdict { return VerdictUsable },
	})

	require.ErrorIs(t, err, ErrBadAfterRetries)
	require.Equal(t, DefaultMaxAttempts, tgt.attempts)
}

func TestRunLevelCancelStopsRetrying(t *testing.T) {
	tgt := &scriptedTarget{}
	r := newTestRunner(tgt)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, &Spec{Argv: []string{"tool"}})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, tgt.attempts)
}

func TestNextAction(t *testing.T) {
	tests := []struct {
		name        string
		verdict     Verdict
		attempt     int
		maxAttempts int
		want        action
	}{
		{"usable accepts immediately", VerdictUsable, 1, 3, actionAccept},
		{"usable accepts on last attempt", VerdictUsable, 3, 3, actionAccept},
		{"fatal aborts immediately", VerdictFatal, 1, 3, actionAbort},
		{"busy retries with budget left", VerdictBusy, 1, 3, actionRetry},
		{"busy retries on second attempt", VerdictBusy, 2, 3, actionRetry},
		{"busy exhausts on last attempt", VerdictBusy, 3, 3, actionExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, nextAction(tt.verdict, tt.attempt, tt.maxAttempts))
		})
	}
}
