// Package unixbench builds and runs the byte-unixbench suite.
package unixbench

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/hostbench/hostbench/bench"
	"github.com/hostbench/hostbench/invoke"
	"github.com/hostbench/hostbench/report"
	"github.com/hostbench/hostbench/util"
)

const downloadURL = "https://github.com/kdlucas/byte-unixbench/archive/refs/tags/v5.1.3.tar.gz"

type Options struct {
	Iterations int // 1 = fast mode (-i 1)
}

type tool struct {
	opts *Options
	bctx *bench.Context
	dir  string
}

func init() {
	bench.Register(report.TestUnixbench, func(a map[string]any) (bench.Tool, error) {
		opts := &Options{}
		err := mapstructure.Decode(a, opts)
		if err != nil {
			return nil, fmt.Errorf("can't convert input to unixbench Options: %w", err)
		}
		return New(opts), nil
	})
}

func New(opts *Options) bench.Tool {
	if opts.Iterations <= 0 {
		opts.Iterations = 1
	}
	return &tool{opts: opts}
}

func (t *tool) Name() string { return report.TestUnixbench }

func (t *tool) Setup(ctx context.Context, bctx *bench.Context) error {
	t.bctx = bctx
	t.dir = path.Join(bctx.WorkDir, "byte-unixbench-5.1.3", "UnixBench")

	out, err := bctx.Target.RunCommand(ctx, []string{
		"sh", "-c",
		fmt.Sprintf("curl -sL %s | tar xz -C %s && make -s -C %s", downloadURL, bctx.WorkDir, t.dir),
	})
	if err != nil {
		return fmt.Errorf("%w: building unixbench failed: %s",
			bench.ErrUnavailable, util.LastNonEmptyLine(out))
	}
	return nil
}

func (t *tool) Run(ctx context.Context) ([]report.TestSection, error) {
	out, err := t.bctx.Runner.Run(ctx, &invoke.Spec{
		Argv: []string{
			"sh", "-c",
			fmt.Sprintf("cd %s && ./Run -i %d", t.dir, t.opts.Iterations),
		},
		Timeout:     90 * time.Minute,
		MaxAttempts: 1, // a full suite run is far too slow to retry
	})
	if err != nil {
		return nil, err
	}

	recs, err := Parse(out)
	if err != nil {
		return nil, err
	}
	return []report.TestSection{{Test: report.TestUnixbench, Records: recs}}, nil
}
