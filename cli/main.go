package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"runtime"
	"strings"
	"syscall"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/hostbench/hostbench/bench"
	"github.com/hostbench/hostbench/invoke"
	"github.com/hostbench/hostbench/orchestrator"
	"github.com/hostbench/hostbench/publish"
	"github.com/hostbench/hostbench/report"
	"github.com/hostbench/hostbench/sysinfo"
	"github.com/hostbench/hostbench/target"
	"github.com/hostbench/hostbench/util"

	_ "github.com/hostbench/hostbench/bench/cpuminer"
	_ "github.com/hostbench/hostbench/bench/fio"
	_ "github.com/hostbench/hostbench/bench/geekbench"
	_ "github.com/hostbench/hostbench/bench/iperf"
	_ "github.com/hostbench/hostbench/bench/passmark"
	_ "github.com/hostbench/hostbench/bench/unixbench"
)

const version = "1.0.0"

type urlList []string

func (u *urlList) String() string {
	return strings.Join(*u, ",")
}

func (u *urlList) Set(value string) error {
	*u = append(*u, value)
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	skipDisk := flag.Bool("skip-disk", false, "Skip the fio disk tests.")
	skipNetwork := flag.Bool("skip-network", false, "Skip the iperf3 network tests.")
	skipGeekbench := flag.Bool("skip-geekbench", false, "Skip the Geekbench system benchmark.")
	skipUnixbench := flag.Bool("skip-unixbench", false, "Skip the UnixBench system benchmark.")
	skipPassmark := flag.Bool("skip-passmark", false, "Skip the PassMark PerformanceTest system benchmark.")
	skipCpuminer := flag.Bool("skip-cpuminer", false, "Skip the cpuminer-multi system benchmark.")
	skipNetInfo := flag.Bool("skip-network-info", false, "Do not look up public network information before the run.")
	skipGovernor := flag.Bool("skip-governor", false, "Do not switch the CPU governor to performance for the run.")
	forcePrebuilt := flag.Bool("force-prebuilt", false, "Use prebuilt tool binaries instead of building from source.")
	geekbenchVersion := flag.Int("geekbench-version", 6, "Geekbench major version to run (4, 5 or 6).")
	emitJSON := flag.Bool("json", false, "Print the JSON report to stdout.")
	jsonFile := flag.String("json-file", "", "Write the JSON report to this path.")
	jsonURLs := urlList{}
	flag.Var(&jsonURLs, "json-url", "POST the JSON report to this URL. Can be used multiple times.")
	s3Bucket := flag.String("s3-bucket", "", "Upload the JSON report to this S3 bucket.")
	targetHost := flag.String("target-host", "", "Run the battery against this host over SSH instead of locally.")
	targetUser := flag.String("target-user", "root", "SSH user for the remote target.")
	targetPort := flag.Int("target-port", 22, "SSH port for the remote target.")
	targetKey := flag.String("target-key", "", "Path to the SSH private key for the remote target.")
	verbose := flag.Bool("v", false, "Enable debug logging.")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tgt, err := buildTarget(*targetHost, *targetUser, *targetPort, *targetKey)
	if err != nil {
		return err
	}

	arch, err := detectArch(ctx, tgt, *targetHost != "")
	if err != nil {
		return err
	}

	workDir := path.Join("/tmp", "hostbench-"+util.Randstring(8))
	if err := checkWritable(ctx, tgt, workDir); err != nil {
		return fmt.Errorf("work directory is not writable: %w", err)
	}
	// The run owns the work tree; it goes away on success, failure or
	// interruption alike.
	defer tgt.RemoveAll(workDir)

	acc := report.NewAccumulator(version)

	osInfo, cpuInfo, memInfo, err := sysinfo.Collect(ctx)
	if err != nil {
		return err
	}
	osInfo.Arch = arch

	governor := sysinfo.NewGovernor(tgt)
	if !*skipGovernor {
		governor.Read()
		cpuInfo.OriginalGovernor = governor.Original
		cpuInfo.OriginalPolicy = governor.Policy
		cpuInfo.TestedGovernor, cpuInfo.TestedPolicy = governor.SetPerformance(ctx)
		defer governor.Restore(context.Background())
	}
	acc.SetSystemInfo(osInfo, cpuInfo, memInfo)

	if !*skipNetInfo {
		if info, err := sysinfo.FetchNetInfo(ctx); err == nil {
			slog.Info("network info",
				slog.String("ip", info.IP),
				slog.String("org", info.Org),
				slog.String("location", strings.Join([]string{info.City, info.Region, info.Country}, ", ")))
		} else {
			slog.Warn("network info lookup failed", slog.String("error", err.Error()))
		}
	}

	bctx := &bench.Context{
		Target:        tgt,
		Runner:        invoke.NewRunner(tgt),
		WorkDir:       workDir,
		Arch:          arch,
		ForcePrebuilt: *forcePrebuilt,
	}

	coord := orchestrator.New(acc, bctx, true)
	battery := []struct {
		name    string
		skip    bool
		options map[string]any
	}{
		{report.TestFio, *skipDisk, nil},
		{report.TestIperf, *skipNetwork, nil},
		{report.TestGeekbench, *skipGeekbench, map[string]any{"Version": *geekbenchVersion}},
		{report.TestUnixbench, *skipUnixbench, nil},
		{report.TestPassmark, *skipPassmark, nil},
		{report.TestCpuminer, *skipCpuminer, nil},
	}
	for _, b := range battery {
		tool, err := bench.New(b.name, b.options)
		if err != nil {
			return err
		}
		coord.Add(tool, b.skip)
	}

	rep := coord.Run(ctx)
	report.RenderText(os.Stdout, rep)

	doc, err := report.RenderJSON(rep)
	if err != nil {
		return fmt.Errorf("rendering JSON report failed: %w", err)
	}

	var sinks []publish.Sink
	if *emitJSON {
		sinks = append(sinks, &publish.ScreenSink{W: os.Stdout})
	}
	if *jsonFile != "" {
		sinks = append(sinks, &publish.FileSink{Path: *jsonFile})
	}
	for _, url := range jsonURLs {
		sinks = append(sinks, &publish.HTTPSink{URL: url})
	}
	if *s3Bucket != "" {
		key := fmt.Sprintf("hostbench/%s-%s.json", time.Now().UTC().Format("20060102T150405Z"), util.Randstring(4))
		sink, err := publish.NewS3Sink(ctx, *s3Bucket, key)
		if err != nil {
			slog.Error("S3 sink unavailable", slog.String("error", err.Error()))
		} else {
			sinks = append(sinks, sink)
		}
	}
	if len(sinks) > 0 {
		// Publishing survives an interrupt so the partial report still lands.
		if err := publish.PublishAll(context.Background(), sinks, doc); err != nil {
			slog.Error("publishing report failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

func buildTarget(host, user string, port int, keyPath string) (target.Target, error) {
	if host == "" {
		return &target.LocalTarget{}, nil
	}

	var auths []ssh.AuthMethod
	if keyPath != "" {
		raw, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("reading SSH key failed: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing SSH key failed: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}
	if password := os.Getenv("HOSTBENCH_SSH_PASSWORD"); password != "" {
		auths = append(auths, ssh.Password(password))
	}
	if len(auths) == 0 {
		return nil, fmt.Errorf("no SSH auth configured: pass -target-key or set HOSTBENCH_SSH_PASSWORD")
	}
	return &target.SSHTarget{User: user, Host: host, SSHPort: port, Auths: auths}, nil
}

func detectArch(ctx context.Context, tgt target.Target, remote bool) (string, error) {
	if !remote {
		return runtime.GOARCH, nil
	}
	out, err := tgt.RunCommand(ctx, []string{"uname", "-m"})
	if err != nil {
		return "", fmt.Errorf("detecting target architecture failed: %w", err)
	}
	switch arch := strings.TrimSpace(string(out)); arch {
	case "x86_64":
		return "amd64", nil
	case "aarch64":
		return "arm64", nil
	default:
		return arch, nil
	}
}

func checkWritable(ctx context.Context, tgt target.Target, dir string) error {
	out, err := tgt.RunCommand(ctx, []string{
		"sh", "-c",
		fmt.Sprintf("mkdir -p %[1]s && touch %[1]s/.probe && rm %[1]s/.probe", dir),
	})
	if err != nil {
		return fmt.Errorf("%s: %s", err, util.LastNonEmptyLine(out))
	}
	return nil
}
