package cpuminer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/hostbench/hostbench/report"
)

var (
	coreRe  = regexp.MustCompile(`CPU #(\d+): ([\d.]+) kH/s`)
	totalRe = regexp.MustCompile(`Benchmark: ([\d.]+) kH/s`)
)

// Parse reads the per-core hash rates and the aggregate benchmark line from
// cpuminer output. Per-core rates and their average go under single-core,
// the aggregate under multi-core.
func Parse(out []byte) ([]report.MetricRecord, error) {
	cores := map[int]float64{}
	for _, m := range coreRe.FindAllSubmatch(out, -1) {
		n, err := strconv.Atoi(string(m[1]))
		if err != nil {
			continue
		}
		rate, err := strconv.ParseFloat(string(m[2]), 64)
		if err != nil {
			continue
		}
		// The tool reports each core several times; the last line wins.
		cores[n] = rate
	}
	if len(cores) == 0 {
		return nil, fmt.Errorf("no per-core hash rates in cpuminer output")
	}

	indices := make([]int, 0, len(cores))
	for n := range cores {
		indices = append(indices, n)
	}
	sort.Ints(indices)

	var recs []report.MetricRecord
	sum := 0.0
	for _, n := range indices {
		sum += cores[n]
		recs = append(recs, record("single-core/cpu_"+strconv.Itoa(n), cores[n]))
	}
	recs = append(recs, record("single-core/average", sum/float64(len(cores))))

	if m := totalRe.FindSubmatch(out); m != nil {
		total, err := strconv.ParseFloat(string(m[1]), 64)
		if err == nil {
			recs = append(recs, record("multi-core/benchmark", total))
		}
	}
	return recs, nil
}

func record(subtest string, value float64) report.MetricRecord {
	return report.MetricRecord{
		Test:    report.TestCpuminer,
		Subtest: subtest,
		Value:   value,
		Unit:    "kH/s",
		Status:  report.StatusOk,
	}
}
