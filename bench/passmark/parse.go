package passmark

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hostbench/hostbench/report"
)

// ParseResults reads the YAML block between the "Results:" and
// "SystemInformation:" markers of a PerformanceTest results file. Every
// value is truncated to an integer, matching how the scores are published.
func ParseResults(raw []byte) (map[string]float64, error) {
	s := string(raw)
	start := strings.Index(s, "Results:")
	if start < 0 {
		return nil, fmt.Errorf("no Results marker in results file")
	}
	end := strings.Index(s, "SystemInformation:")
	if end < 0 || end < start {
		return nil, fmt.Errorf("no SystemInformation marker in results file")
	}

	var doc struct {
		Results map[string]float64 `yaml:"Results"`
	}
	if err := yaml.Unmarshal([]byte(s[start:end]), &doc); err != nil {
		return nil, fmt.Errorf("results block is not valid YAML: %w", err)
	}
	if len(doc.Results) == 0 {
		return nil, fmt.Errorf("results block is empty")
	}
	for k, v := range doc.Results {
		doc.Results[k] = math.Trunc(v)
	}
	return doc.Results, nil
}

// Summary keys first, then the per-test scores in display order.
var keyOrder = []string{
	"SUMM_CPU",
	"SUMM_ME",
	"CPU_INTEGER_MATH",
	"CPU_FLOATINGPOINT_MATH",
	"CPU_PRIME",
	"CPU_SORTING",
	"CPU_ENCRYPTION",
	"CPU_COMPRESSION",
	"CPU_SINGLETHREAD",
	"CPU_PHYSICS",
	"CPU_MATRIX_MULT_SSE",
	"ME_ALLOC_S",
	"ME_READ_S",
	"ME_READ_L",
	"ME_WRITE",
	"ME_LARGE",
	"ME_LATENCY",
	"ME_THREADED",
}

// Records lays the parsed result map out as canonical records in a stable
// order: known keys first, then anything unrecognized sorted by name.
func Records(results map[string]float64) []report.MetricRecord {
	var recs []report.MetricRecord
	seen := map[string]bool{}
	add := func(key string) {
		v, ok := results[key]
		if !ok || seen[key] {
			return
		}
		seen[key] = true
		recs = append(recs, report.MetricRecord{
			Test:    report.TestPassmark,
			Subtest: key,
			Value:   v,
			Unit:    "score",
			Status:  report.StatusOk,
		})
	}
	for _, key := range keyOrder {
		add(key)
	}
	rest := make([]string, 0, len(results))
	for key := range results {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		add(key)
	}
	return recs
}
