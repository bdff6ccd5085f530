// Package iperf drives iperf3 send and receive tests against a catalog of
// public benchmark servers, in IPv4 and IPv6 modes.
package iperf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/hostbench/hostbench/bench"
	"github.com/hostbench/hostbench/invoke"
	"github.com/hostbench/hostbench/report"
	"github.com/hostbench/hostbench/util"
)

type Server struct {
	Provider string
	Host     string
	Port     int
	Loc      string
	Mode     string // "IPv4" or "IPv6"
}

type Options struct {
	Servers  []Server
	Duration int // seconds per direction
	Streams  int
	SkipPing bool
}

// The default server catalog, one well-connected host per region and mode.
var DefaultServers = []Server{
	{Provider: "Clouvider", Host: "lon.speedtest.clouvider.net", Port: 5200, Loc: "London, UK (10G)", Mode: "IPv4"},
	{Provider: "Scaleway", Host: "ping.online.net", Port: 5200, Loc: "Paris, FR (10G)", Mode: "IPv4"},
	{Provider: "Clouvider", Host: "nyc.speedtest.clouvider.net", Port: 5200, Loc: "NYC, US (10G)", Mode: "IPv4"},
	{Provider: "Clouvider", Host: "lon.speedtest.clouvider.net", Port: 5200, Loc: "London, UK (10G)", Mode: "IPv6"},
	{Provider: "Scaleway", Host: "ping6.online.net", Port: 5200, Loc: "Paris, FR (10G)", Mode: "IPv6"},
}

type tool struct {
	opts *Options
	bctx *bench.Context
}

func init() {
	bench.Register(report.TestIperf, func(a map[string]any) (bench.Tool, error) {
		opts := &Options{}
		err := mapstructure.Decode(a, opts)
		if err != nil {
			return nil, fmt.Errorf("can't convert input to iperf Options: %w", err)
		}
		return New(opts), nil
	})
}

func New(opts *Options) bench.Tool {
	if len(opts.Servers) == 0 {
		opts.Servers = DefaultServers
	}
	if opts.Duration <= 0 {
		opts.Duration = 10
	}
	if opts.Streams <= 0 {
		opts.Streams = 8
	}
	return &tool{opts: opts}
}

func (t *tool) Name() string { return report.TestIperf }

func (t *tool) Setup(ctx context.Context, bctx *bench.Context) error {
	t.bctx = bctx
	out, err := bctx.Target.RunCommand(ctx, []string{"iperf3", "--version"})
	if err != nil {
		return fmt.Errorf("%w: iperf3: %s", bench.ErrUnavailable, util.LastNonEmptyLine(out))
	}
	return nil
}

func (t *tool) Run(ctx context.Context) ([]report.TestSection, error) {
	var sections []report.TestSection
	for _, srv := range t.opts.Servers {
		if ctx.Err() != nil {
			return sections, ctx.Err()
		}
		sections = append(sections, t.testServer(ctx, srv))
	}
	return sections, nil
}

func (t *tool) testServer(ctx context.Context, srv Server) report.TestSection {
	section := report.TestSection{
		Test: report.TestIperf,
		Meta: map[string]string{
			report.MetaMode:     srv.Mode,
			report.MetaProvider: srv.Provider,
			report.MetaLocation: srv.Loc,
		},
	}

	for _, dir := range []struct {
		subtest string
		reverse bool
	}{
		{"send", false},
		{"recv", true},
	} {
		rec := report.MetricRecord{Test: report.TestIperf, Subtest: dir.subtest}
		speed, unit, err := t.measure(ctx, srv, dir.reverse)
		switch {
		case err == nil:
			rec.Value = speed
			rec.Unit = unit
			rec.Status = report.StatusOk
		case errors.Is(err, invoke.ErrBadAfterRetries):
			rec.Status = report.StatusBusy
		default:
			slog.Warn("iperf3 test failed",
				slog.String("server", srv.Host),
				slog.String("direction", dir.subtest),
				slog.String("error", err.Error()))
			rec.Status = report.StatusFailed
		}
		section.Records = append(section.Records, rec)
	}

	if !t.opts.SkipPing {
		if latency, err := t.ping(ctx, srv); err == nil {
			section.Meta[report.MetaLatency] = latency
		}
	}
	return section
}

func (t *tool) measure(ctx context.Context, srv Server, reverse bool) (float64, string, error) {
	argv := []string{
		"iperf3",
		"-c", srv.Host,
		"-p", strconv.Itoa(srv.Port),
		"-P", strconv.Itoa(t.opts.Streams),
		"-t", strconv.Itoa(t.opts.Duration),
	}
	if srv.Mode == "IPv6" {
		argv = append(argv, "-6")
	} else {
		argv = append(argv, "-4")
	}
	if reverse {
		argv = append(argv, "-R")
	}

	out, err := t.bctx.Runner.Run(ctx, &invoke.Spec{
		Argv:     argv,
		Timeout:  time.Duration(t.opts.Duration+20) * time.Second,
		Classify: Classify,
	})
	if err != nil {
		return 0, "", err
	}
	return ParseSpeed(out)
}

func (t *tool) ping(ctx context.Context, srv Server) (string, error) {
	cmd := "ping"
	if srv.Mode == "IPv6" {
		cmd = "ping6"
	}
	out, err := t.bctx.Target.RunCommand(ctx, []string{cmd, "-c", "3", "-w", "10", srv.Host})
	if err != nil {
		return "", err
	}
	return ParsePing(out)
}
