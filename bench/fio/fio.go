// Package fio drives the fio disk benchmark in minimal-output mode, one
// mixed random read/write pass per configured block size.
package fio

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

type Options struct {
	BlockSizes []string
	Size       string
	Runtime    int // seconds per block size
}

type tool struct {
	opts      *Options
	bctx      *bench.Context
	format    *Format
	partition string
	testFile  string
}

func init() {
	bench.Register(report.TestFio, func(a map[string]any) (bench.Tool, error) {
		opts := &Options{}
		err := mapstructure.Decode(a, opts)
		if err != nil {
			return nil, fmt.Errorf("can't convert input to fio Options: %w", err)
		}
		return New(opts), nil
	})
}

func New(opts *Options) bench.Tool {
	if len(opts.BlockSizes) == 0 {
		opts.BlockSizes = []string{"4k", "64k", "512k", "1m"}
	}
	if opts.Size == "" {
		opts.Size = "2G"
	}
	if opts.Runtime <= 0 {
		opts.Runtime = 30
	}
	return &tool{opts: opts}
}

func (t *tool) Name() string { return report.TestFio }

func (t *tool) Setup(ctx context.Context, bctx *bench.Context) error {
	t.bctx = bctx
	t.testFile = path.Join(bctx.WorkDir, "fio.test")

	out, err := bctx.Target.RunCommand(ctx, []string{"fio", "--version"})
	if err != nil {
		return fmt.Errorf("%w: fio: %s", bench.ErrUnavailable, util.LastNonEmptyLine(out))
	}
	t.format, err = SelectFormat(util.LastNonEmptyLine(out))
	if err != nil {
		return fmt.Errorf("%w: %s", bench.ErrUnavailable, err)
	}

	// Best effort; the report just omits the partition if df fails.
	out, err = bctx.Target.RunCommand(ctx, []string{"sh", "-c", "df -P " + bctx.WorkDir + " | tail -1"})
	if err == nil {
		if fields := strings.Fields(util.LastNonEmptyLine(out)); len(fields) > 0 {
			t.partition = fields[0]
		}
	}
	return nil
}

func (t *tool) Run(ctx context.Context) ([]report.TestSection, error) {
	section := report.TestSection{
		Test: report.TestFio,
		Meta: map[string]string{report.MetaPartition: t.partition},
	}
	for _, bs := range t.opts.BlockSizes {
		recs, err := t.runBlockSize(ctx, bs)
		if err != nil {
			if ctx.Err() != nil {
				return []report.TestSection{section}, ctx.Err()
			}
			slog.Warn("fio pass failed",
				slog.String("block size", bs),
				slog.String("error", err.Error()))
			recs = failedRecords(bs)
		}
		section.Records = append(section.Records, recs...)
	}
	return []report.TestSection{section}, nil
}

func (t *tool) runBlockSize(ctx context.Context, bs string) ([]report.MetricRecord, error) {
	out, err := t.bctx.Runner.Run(ctx, &invoke.Spec{
		Argv: []string{
			"fio",
			"--name=rand_rw_" + bs,
			"--ioengine=libaio",
			"--rw=randrw",
			"--rwmixread=50",
			"--bs=" + bs,
			"--iodepth=64",
			"--numjobs=2",
			"--size=" + t.opts.Size,
			"--runtime=" + strconv.Itoa(t.opts.Runtime),
			"--gtod_reduce=1",
			"--direct=1",
			"--filename=" + t.testFile,
			"--group_reporting",
			"--minimal",
		},
		Timeout:  time.Duration(t.opts.Runtime+60) * time.Second,
		Classify: classify,
	})
	if err != nil {
		return nil, err
	}
	return t.format.ParseLine(bs, util.LastNonEmptyLine(out))
}

func classify(out []byte) invoke.Verdict {
	s := string(out)
	if strings.Contains(s, "Permission denied") || strings.Contains(s, "No space left") {
		return invoke.VerdictFatal
	}
	if !strings.Contains(util.LastNonEmptyLine(out), ";") {
		return invoke.VerdictBusy
	}
	return invoke.VerdictUsable
}

func failedRecords(bs string) []report.MetricRecord {
	return []report.MetricRecord{
		{Test: report.TestFio, Subtest: bs + " read", Status: report.StatusFailed},
		{Test: report.TestFio, Subtest: bs + " write", Status: report.StatusFailed},
	}
}
