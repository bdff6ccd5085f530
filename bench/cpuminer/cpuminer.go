// Package cpuminer runs the cpuminer-multi benchmark mode and reads the
// per-core and aggregate hash rates.
package cpuminer

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/hostbench/hostbench/bench"
	"github.com/hostbench/hostbench/invoke"
	"github.com/hostbench/hostbench/report"
	"github.com/hostbench/hostbench/util"
)

const (
	sourceURL   = "https://github.com/tpruvot/cpuminer-multi/archive/refs/heads/linux.tar.gz"
	prebuiltURL = "https://github.com/hostbench/binaries/releases/download/v1/cpuminer_linux_%s.tar.gz"
)

type Options struct {
	TimeLimit int // seconds of benchmark mode
}

type tool struct {
	opts   *Options
	bctx   *bench.Context
	binary string
}

func init() {
	bench.Register(report.TestCpuminer, func(a map[string]any) (bench.Tool, error) {
		opts := &Options{}
		err := mapstructure.Decode(a, opts)
		if err != nil {
			return nil, fmt.Errorf("can't convert input to cpuminer Options: %w", err)
		}
		return New(opts), nil
	})
}

func New(opts *Options) bench.Tool {
	if opts.TimeLimit <= 0 {
		opts.TimeLimit = 60
	}
	return &tool{opts: opts}
}

func (t *tool) Name() string { return report.TestCpuminer }

func (t *tool) Setup(ctx context.Context, bctx *bench.Context) error {
	t.bctx = bctx

	if !bctx.ForcePrebuilt {
		if err := t.buildFromSource(ctx); err == nil {
			return nil
		} else {
			slog.Debug("building cpuminer from source failed, falling back to prebuilt",
				slog.String("error", err.Error()))
		}
	}
	return t.downloadPrebuilt(ctx)
}

func (t *tool) buildFromSource(ctx context.Context) error {
	dir := path.Join(t.bctx.WorkDir, "cpuminer-multi-linux")
	out, err := t.bctx.Target.RunCommand(ctx, []string{
		"sh", "-c",
		fmt.Sprintf("curl -sL %s | tar xz -C %s && cd %s && ./build.sh >/dev/null 2>&1", sourceURL, t.bctx.WorkDir, dir),
	})
	if err != nil {
		return fmt.Errorf("build failed: %s", util.LastNonEmptyLine(out))
	}
	t.binary = path.Join(dir, "cpuminer")
	return nil
}

func (t *tool) downloadPrebuilt(ctx context.Context) error {
	var variant string
	switch {
	case strings.HasPrefix(t.bctx.Arch, "arm64"), strings.HasPrefix(t.bctx.Arch, "aarch64"):
		variant = "arm64"
	case strings.Contains(t.bctx.Arch, "64"):
		variant = "amd64"
	default:
		return fmt.Errorf("%w: no cpuminer build for %s", bench.ErrUnavailable, t.bctx.Arch)
	}

	out, err := t.bctx.Target.RunCommand(ctx, []string{
		"sh", "-c",
		fmt.Sprintf("curl -sL %s | tar xz -C %s", fmt.Sprintf(prebuiltURL, variant), t.bctx.WorkDir),
	})
	if err != nil {
		return fmt.Errorf("%w: downloading cpuminer failed: %s",
			bench.ErrUnavailable, util.LastNonEmptyLine(out))
	}
	t.binary = path.Join(t.bctx.WorkDir, "cpuminer")
	return nil
}

func (t *tool) Run(ctx context.Context) ([]report.TestSection, error) {
	out, err := t.bctx.Runner.Run(ctx, &invoke.Spec{
		Argv: []string{
			t.binary,
			"--benchmark",
			"--time-limit=" + strconv.Itoa(t.opts.TimeLimit),
		},
		Timeout: time.Duration(t.opts.TimeLimit+60) * time.Second,
		Classify: func(out []byte) invoke.Verdict {
			if !strings.Contains(string(out), "kH/s") {
				return invoke.VerdictBusy
			}
			return invoke.VerdictUsable
		},
	})
	if err != nil {
		return nil, err
	}

	recs, err := Parse(out)
	if err != nil {
		return nil, err
	}
	return []report.TestSection{{Test: report.TestCpuminer, Records: recs}}, nil
}
