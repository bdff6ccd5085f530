// Package geekbench downloads and runs the prebuilt Geekbench CPU benchmark
// and scrapes the scores from the public results page it uploads to.
package geekbench

import (
	"context"
	"fmt"
	"io"
	"net/http"
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

type release struct {
	url    string
	binary string
}

var releases = map[int]release{
	4: {url: "https://cdn.geekbench.com/Geekbench-4.4.4-Linux.tar.gz", binary: "Geekbench-4.4.4-Linux/geekbench4"},
	5: {url: "https://cdn.geekbench.com/Geekbench-5.5.1-Linux.tar.gz", binary: "Geekbench-5.5.1-Linux/geekbench5"},
	6: {url: "https://cdn.geekbench.com/Geekbench-6.3.0-Linux.tar.gz", binary: "Geekbench-6.3.0-Linux/geekbench6"},
}

type Options struct {
	Version int
}

type tool struct {
	opts   *Options
	bctx   *bench.Context
	binary string
	client *http.Client
}

func init() {
	bench.Register(report.TestGeekbench, func(a map[string]any) (bench.Tool, error) {
		opts := &Options{}
		err := mapstructure.Decode(a, opts)
		if err != nil {
			return nil, fmt.Errorf("can't convert input to geekbench Options: %w", err)
		}
		return New(opts), nil
	})
}

func New(opts *Options) bench.Tool {
	if opts.Version == 0 {
		opts.Version = 6
	}
	return &tool{opts: opts, client: &http.Client{Timeout: 30 * time.Second}}
}

func (t *tool) Name() string { return report.TestGeekbench }

func (t *tool) Setup(ctx context.Context, bctx *bench.Context) error {
	t.bctx = bctx

	// Geekbench 6 ships 64-bit binaries only.
	if t.opts.Version >= 6 && !is64Bit(bctx.Arch) {
		return fmt.Errorf("%w: geekbench %d needs a 64-bit host, got %s",
			bench.ErrUnavailable, t.opts.Version, bctx.Arch)
	}

	rel, ok := releases[t.opts.Version]
	if !ok {
		return fmt.Errorf("%w: unknown geekbench version %d", bench.ErrUnavailable, t.opts.Version)
	}
	t.binary = path.Join(bctx.WorkDir, rel.binary)

	out, err := bctx.Target.RunCommand(ctx, []string{
		"sh", "-c",
		fmt.Sprintf("curl -sL %s | tar xz -C %s", rel.url, bctx.WorkDir),
	})
	if err != nil {
		return fmt.Errorf("%w: downloading geekbench failed: %s",
			bench.ErrUnavailable, util.LastNonEmptyLine(out))
	}
	return nil
}

func (t *tool) Run(ctx context.Context) ([]report.TestSection, error) {
	out, err := t.bctx.Runner.Run(ctx, &invoke.Spec{
		Argv:    []string{t.binary, "--upload"},
		Timeout: 20 * time.Minute,
		Classify: func(out []byte) invoke.Verdict {
			if _, err := ParseClaimURL(out); err != nil {
				return invoke.VerdictBusy
			}
			return invoke.VerdictUsable
		},
	})
	if err != nil {
		return nil, err
	}

	url, err := ParseClaimURL(out)
	if err != nil {
		return nil, err
	}

	page, err := t.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching results page failed: %w", err)
	}
	single, multi, err := ParseScores(page)
	if err != nil {
		return nil, err
	}

	return []report.TestSection{{
		Test: report.TestGeekbench,
		Meta: map[string]string{
			report.MetaVersion: strconv.Itoa(t.opts.Version),
			report.MetaURL:     url,
		},
		Records: []report.MetricRecord{
			{Test: report.TestGeekbench, Subtest: "single", Value: single, Unit: "score", Status: report.StatusOk},
			{Test: report.TestGeekbench, Subtest: "multi", Value: multi, Unit: "score", Status: report.StatusOk},
		},
	}}, nil
}

func (t *tool) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("results page returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func is64Bit(arch string) bool {
	return strings.Contains(arch, "64")
}
