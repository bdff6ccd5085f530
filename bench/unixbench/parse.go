package unixbench

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hostbench/hostbench/report"
)

var (
	copiesRe = regexp.MustCompile(`running (\d+) parallel cop(?:y|ies)`)
	lineRe   = regexp.MustCompile(`^(\S.*?)\s{2,}([\d.]+)\s+([\d.]+)\s+([\d.]+)$`)
	indexRe  = regexp.MustCompile(`^System Benchmarks Index Score\s+([\d.]+)$`)
)

// Parse splits a UnixBench report at its "running N parallel copies" markers
// into a single-core part and a multi-core part, and reads the
// "<name> <baseline> <result> <index>" table of each, plus the final System
// Benchmarks Index Score.
func Parse(out []byte) ([]report.MetricRecord, error) {
	var recs []report.MetricRecord
	mode := ""
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, " \r")
		if m := copiesRe.FindStringSubmatch(line); m != nil {
			if m[1] == "1" {
				mode = "single-core"
			} else {
				mode = "multi-core"
			}
			continue
		}
		if mode == "" {
			continue
		}
		if m := indexRe.FindStringSubmatch(line); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				recs = append(recs, record(mode, "index", v))
			}
			continue
		}
		if m := lineRe.FindStringSubmatch(line); m != nil {
			v, err := strconv.ParseFloat(m[4], 64)
			if err == nil {
				recs = append(recs, record(mode, strings.TrimSpace(m[1]), v))
			}
		}
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("no benchmark table in unixbench output")
	}
	return recs, nil
}

func record(mode, name string, value float64) report.MetricRecord {
	return report.MetricRecord{
		Test:    report.TestUnixbench,
		Subtest: mode + "/" + name,
		Value:   value,
		Unit:    "score",
		Status:  report.StatusOk,
	}
}
