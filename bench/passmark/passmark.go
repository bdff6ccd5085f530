// Package passmark runs PassMark PerformanceTest and reads the scores from
// the results file it writes.
package passmark

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/hostbench/hostbench/bench"
	"github.com/hostbench/hostbench/invoke"
	"github.com/hostbench/hostbench/report"
	"github.com/hostbench/hostbench/util"
)

const downloadURL = "https://www.passmark.com/downloads/pt_linux_%s.zip"

type Options struct {
	Duration int // test duration knob passed to the tool, 1..3
}

type tool struct {
	opts       *Options
	bctx       *bench.Context
	binary     string
	resultFile string
}

func init() {
	bench.Register(report.TestPassmark, func(a map[string]any) (bench.Tool, error) {
		opts := &Options{}
		err := mapstructure.Decode(a, opts)
		if err != nil {
			return nil, fmt.Errorf("can't convert input to passmark Options: %w", err)
		}
		return New(opts), nil
	})
}

func New(opts *Options) bench.Tool {
	if opts.Duration <= 0 {
		opts.Duration = 1
	}
	return &tool{opts: opts}
}

func (t *tool) Name() string { return report.TestPassmark }

func (t *tool) Setup(ctx context.Context, bctx *bench.Context) error {
	t.bctx = bctx

	var variant string
	switch {
	case strings.HasPrefix(bctx.Arch, "arm64"), strings.HasPrefix(bctx.Arch, "aarch64"):
		variant = "arm64"
	case strings.Contains(bctx.Arch, "64"):
		variant = "x64"
	default:
		return fmt.Errorf("%w: no PerformanceTest build for %s", bench.ErrUnavailable, bctx.Arch)
	}

	url := fmt.Sprintf(downloadURL, variant)
	out, err := t.bctx.Target.RunCommand(ctx, []string{
		"sh", "-c",
		fmt.Sprintf("curl -sL -o %[1]s/pt.zip %[2]s && unzip -oq %[1]s/pt.zip -d %[1]s", bctx.WorkDir, url),
	})
	if err != nil {
		return fmt.Errorf("%w: downloading PerformanceTest failed: %s",
			bench.ErrUnavailable, util.LastNonEmptyLine(out))
	}

	t.binary = path.Join(bctx.WorkDir, "PerformanceTest", "pt_linux_"+variant)
	t.resultFile = path.Join(bctx.WorkDir, "results_all.yml")
	return nil
}

func (t *tool) Run(ctx context.Context) ([]report.TestSection, error) {
	_, err := t.bctx.Runner.Run(ctx, &invoke.Spec{
		Argv: []string{
			"sh", "-c",
			fmt.Sprintf("cd %s && %s -r 3 -d %d", t.bctx.WorkDir, t.binary, t.opts.Duration),
		},
		Timeout: 30 * time.Minute,
	})
	if err != nil {
		return nil, err
	}

	raw, err := t.bctx.Target.ReadFile(t.resultFile)
	if err != nil {
		return nil, fmt.Errorf("reading results file failed: %w", err)
	}
	results, err := ParseResults(raw)
	if err != nil {
		return nil, err
	}

	return []report.TestSection{{
		Test:    report.TestPassmark,
		Records: Records(results),
	}}, nil
}
