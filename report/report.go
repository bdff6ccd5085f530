package report

import (
	"fmt"
	"sync"
	"time"
)

// Canonical test family names. Section and record Test fields must use one of these.
const (
	TestFio       = "fio"
	TestIperf     = "iperf"
	TestGeekbench = "geekbench"
	TestUnixbench = "unixbench"
	TestPassmark  = "passmark"
	TestCpuminer  = "cpuminer-multi"
)

// Status classifies a single measurement.
type Status string

const (
	StatusOk      Status = "ok"
	StatusBusy    Status = "busy"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// MetricRecord is one measurement from one subtest of one tool.
// Value carries a meaningful number only when Status is StatusOk.
type MetricRecord struct {
	Test    string
	Subtest string
	Value   float64
	Unit    string
	Status  Status
}

// Well-known section metadata keys.
const (
	MetaPartition = "partition"
	MetaMode      = "mode"
	MetaProvider  = "provider"
	MetaLocation  = "loc"
	MetaLatency   = "latency"
	MetaVersion   = "version"
	MetaURL       = "url"
)

// TestSection is an ordered group of records sharing a test family, created
// once when a tool's output is parsed and never mutated afterwards.
type TestSection struct {
	Test    string
	Meta    map[string]string
	Records []MetricRecord
}

type OSInfo struct {
	Arch   string
	Distro string
	Kernel string
	Uptime uint64
}

type CPUInfo struct {
	Model            string
	Cores            int
	Freq             string
	OriginalGovernor string
	OriginalPolicy   string
	TestedGovernor   string
	TestedPolicy     string
}

type MemInfo struct {
	RAM      uint64
	RAMUnits string
}

type Runtime struct {
	Start   int64
	End     int64
	Elapsed float64
}

// AggregateReport is the result of one run. Sections appear in execution
// order. A report with zero sections is still well formed.
type AggregateReport struct {
	Version  string
	Time     string
	OS       OSInfo
	CPU      CPUInfo
	Mem      MemInfo
	Sections []TestSection
	Runtime  Runtime
}

// Accumulator collects sections over a run. Appends are ordered and never
// deduplicated; Snapshot may be taken at any point and always yields a
// structurally valid report. After Finalize no further appends are accepted.
type Accumulator struct {
	mu        sync.Mutex
	version   string
	started   time.Time
	os        OSInfo
	cpu       CPUInfo
	mem       MemInfo
	sections  []TestSection
	finalized bool
}

func NewAccumulator(version string) *Accumulator {
	return &Accumulator{version: version, started: time.Now()}
}

func (a *Accumulator) SetSystemInfo(os OSInfo, cpu CPUInfo, mem MemInfo) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.os = os
	a.cpu = cpu
	a.mem = mem
}

func (a *Accumulator) Append(section TestSection) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finalized {
		return fmt.Errorf("append to finalized accumulator: section %q", section.Test)
	}
	a.sections = append(a.sections, section)
	return nil
}

// Snapshot returns the report built from everything appended so far.
func (a *Accumulator) Snapshot() *AggregateReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buildLocked(time.Now())
}

// Finalize closes the accumulator and returns the completed report.
func (a *Accumulator) Finalize() *AggregateReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.finalized = true
	return a.buildLocked(time.Now())
}

func (a *Accumulator) buildLocked(end time.Time) *AggregateReport {
	sections := make([]TestSection, len(a.sections))
	copy(sections, a.sections)
	return &AggregateReport{
		Version:  a.version,
		Time:     a.started.UTC().Format("2006-01-02T15:04:05Z"),
		OS:       a.os,
		CPU:      a.cpu,
		Mem:      a.mem,
		Sections: sections,
		Runtime: Runtime{
			Start:   a.started.Unix(),
			End:     end.Unix(),
			Elapsed: end.Sub(a.started).Seconds(),
		},
	}
}

// FailedSection builds the marker section recorded when a tool ran but its
// output could not be parsed, so the attempt stays visible in the report.
func FailedSection(test string, meta map[string]string) TestSection {
	return TestSection{
		Test: test,
		Meta: meta,
		Records: []MetricRecord{
			{Test: test, Subtest: "all", Status: StatusFailed},
		},
	}
}
