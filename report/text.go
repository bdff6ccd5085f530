package report

import (
	"fmt"
	"io"
	"strings"
)

// RenderText writes the human-readable fixed-width report.
func RenderText(w io.Writer, r *AggregateReport) {
	fmt.Fprintf(w, "hostbench %s -- %s\n\n", r.Version, r.Time)
	renderSystem(w, r)

	for i := range r.Sections {
		s := &r.Sections[i]
		// iperf sections for one mode render as one table, so only the
		// first section of a consecutive run of the same test prints it.
		if s.Test == TestIperf {
			if i > 0 && r.Sections[i-1].Test == TestIperf && r.Sections[i-1].Meta[MetaMode] == s.Meta[MetaMode] {
				continue
			}
			renderIperf(w, r.Sections[i:], s.Meta[MetaMode])
			continue
		}
		switch s.Test {
		case TestFio:
			renderFio(w, s)
		case TestGeekbench:
			renderGeekbench(w, s)
		case TestUnixbench:
			renderGrouped(w, s, "UnixBench Results")
		case TestPassmark:
			renderPassmark(w, s)
		case TestCpuminer:
			renderGrouped(w, s, "cpuminer-multi Results")
		}
	}

	fmt.Fprintf(w, "Completed in %.0f seconds\n", r.Runtime.Elapsed)
}

func renderSystem(w io.Writer, r *AggregateReport) {
	fmt.Fprintln(w, "Basic System Information:")
	fmt.Fprintln(w, "---------------------------------")
	fmt.Fprintf(w, "%-10s: %s\n", "Processor", r.CPU.Model)
	fmt.Fprintf(w, "%-10s: %d @ %s\n", "CPU cores", r.CPU.Cores, r.CPU.Freq)
	fmt.Fprintf(w, "%-10s: %s\n", "RAM", FormatSize(float64(r.Mem.RAM), r.Mem.RAMUnits))
	fmt.Fprintf(w, "%-10s: %s\n", "Distro", r.OS.Distro)
	fmt.Fprintf(w, "%-10s: %s (%s)\n", "Kernel", r.OS.Kernel, r.OS.Arch)
	if r.CPU.OriginalGovernor != "" {
		fmt.Fprintf(w, "%-10s: %s -> %s\n", "Governor", r.CPU.OriginalGovernor, r.CPU.TestedGovernor)
	}
	fmt.Fprintln(w)
}

func renderValue(rec *MetricRecord, format func(*MetricRecord) string) string {
	if rec == nil {
		return "-"
	}
	if rec.Status != StatusOk {
		return string(rec.Status)
	}
	return format(rec)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type fioCell struct {
	speed *MetricRecord
	iops  *MetricRecord
}

func renderFio(w io.Writer, s *TestSection) {
	title := "fio Disk Speed Tests (Mixed R/W 50/50)"
	if p := s.Meta[MetaPartition]; p != "" {
		title += fmt.Sprintf(" (Partition %s)", p)
	}
	fmt.Fprintln(w, title+":")
	fmt.Fprintln(w, "---------------------------------")

	// Regroup records as cells[blockSize][op], keeping block size order.
	var blockSizes []string
	cells := map[string]map[string]*fioCell{}
	for i := range s.Records {
		rec := &s.Records[i]
		bs, op, ok := strings.Cut(rec.Subtest, " ")
		if !ok {
			continue
		}
		if cells[bs] == nil {
			cells[bs] = map[string]*fioCell{}
			blockSizes = append(blockSizes, bs)
		}
		if cells[bs][op] == nil {
			cells[bs][op] = &fioCell{}
		}
		if rec.Unit == "IOPS" {
			cells[bs][op].iops = rec
		} else {
			cells[bs][op].speed = rec
		}
	}

	speed := func(rec *MetricRecord) string { return FormatThroughput(rec.Value, rec.Unit) }
	iops := func(rec *MetricRecord) string { return "(" + FormatIOPS(rec.Value) + ")" }

	// Two block sizes side by side per column group.
	for i := 0; i < len(blockSizes); i += 2 {
		pair := blockSizes[i:min(i+2, len(blockSizes))]
		header := fmt.Sprintf("%-10s", "Block Size")
		for _, bs := range pair {
			header += fmt.Sprintf(" | %-12s %9s", bs, "(IOPS)")
		}
		fmt.Fprintln(w, header)
		for _, op := range []string{"read", "write"} {
			line := fmt.Sprintf("%-10s", capitalize(op))
			for _, bs := range pair {
				cell := cells[bs][op]
				if cell == nil {
					cell = &fioCell{}
				}
				line += fmt.Sprintf(" | %-12s %9s",
					renderValue(cell.speed, speed),
					renderValue(cell.iops, iops))
			}
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w)
}

func renderIperf(w io.Writer, sections []TestSection, mode string) {
	fmt.Fprintf(w, "iperf3 Network Speed Tests (%s):\n", mode)
	fmt.Fprintln(w, "---------------------------------")
	fmt.Fprintf(w, "%-15s | %-25s | %-15s | %-15s | %-10s\n",
		"Provider", "Location (Link)", "Send Speed", "Recv Speed", "Ping")

	bitrate := func(rec *MetricRecord) string { return FormatBitrate(rec.Value, rec.Unit) }
	for i := range sections {
		s := &sections[i]
		if s.Test != TestIperf || s.Meta[MetaMode] != mode {
			break
		}
		var send, recv *MetricRecord
		for j := range s.Records {
			switch s.Records[j].Subtest {
			case "send":
				send = &s.Records[j]
			case "recv":
				recv = &s.Records[j]
			}
		}
		fmt.Fprintf(w, "%-15s | %-25s | %-15s | %-15s | %-10s\n",
			s.Meta[MetaProvider], s.Meta[MetaLocation],
			renderValue(send, bitrate), renderValue(recv, bitrate),
			s.Meta[MetaLatency])
	}
	fmt.Fprintln(w)
}

func renderGeekbench(w io.Writer, s *TestSection) {
	fmt.Fprintf(w, "Geekbench %s Benchmark Test:\n", s.Meta[MetaVersion])
	fmt.Fprintln(w, "---------------------------------")
	score := func(rec *MetricRecord) string { return fmt.Sprintf("%.0f", rec.Value) }
	names := map[string]string{"single": "Single Core", "multi": "Multi Core"}
	for i := range s.Records {
		rec := &s.Records[i]
		name, ok := names[rec.Subtest]
		if !ok {
			name = rec.Subtest
		}
		fmt.Fprintf(w, "%-15s | %s\n", name, renderValue(rec, score))
	}
	if url := s.Meta[MetaURL]; url != "" {
		fmt.Fprintf(w, "%-15s | %s\n", "Full Test", url)
	}
	fmt.Fprintln(w)
}

func renderGrouped(w io.Writer, s *TestSection, title string) {
	fmt.Fprintln(w, title+":")
	fmt.Fprintln(w, "---------------------------------")
	value := func(rec *MetricRecord) string {
		return fmt.Sprintf("%.1f %s", rec.Value, rec.Unit)
	}
	lastGroup := ""
	for i := range s.Records {
		rec := &s.Records[i]
		group, key, ok := strings.Cut(rec.Subtest, "/")
		if !ok {
			group, key = "", rec.Subtest
		}
		if group != lastGroup {
			fmt.Fprintf(w, "%s:\n", group)
			lastGroup = group
		}
		fmt.Fprintf(w, "  %-40s | %s\n", key, renderValue(rec, value))
	}
	fmt.Fprintln(w)
}

func renderPassmark(w io.Writer, s *TestSection) {
	fmt.Fprintln(w, "PassMark PerformanceTest Results:")
	fmt.Fprintln(w, "---------------------------------")
	score := func(rec *MetricRecord) string { return fmt.Sprintf("%.0f", rec.Value) }
	for i := range s.Records {
		rec := &s.Records[i]
		fmt.Fprintf(w, "%-20s | %s\n", rec.Subtest, renderValue(rec, score))
	}
	fmt.Fprintln(w)
}
