package report

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The wire schema of one run. Tests that did not run are absent keys, never
// null or empty, so consumers can tell "not run" from "ran and failed".
type document struct {
	Version   string                        `json:"version"`
	Time      string                        `json:"time"`
	OS        osDoc                         `json:"os"`
	CPU       cpuDoc                        `json:"cpu"`
	Mem       memDoc                        `json:"mem"`
	Partition string                        `json:"partition,omitempty"`
	Fio       map[string]map[string]fioOp   `json:"fio,omitempty"`
	Iperf     []iperfEntry                  `json:"iperf,omitempty"`
	Geekbench []geekbenchEntry              `json:"geekbench,omitempty"`
	Unixbench map[string]map[string]float64 `json:"unixbench,omitempty"`
	Passmark  *passmarkDoc                  `json:"passmark,omitempty"`
	Cpuminer  map[string]map[string]float64 `json:"cpuminer-multi,omitempty"`
	Runtime   runtimeDoc                    `json:"runtime"`
}

type osDoc struct {
	Arch   string `json:"arch"`
	Distro string `json:"distro"`
	Kernel string `json:"kernel"`
	Uptime uint64 `json:"uptime"`
}

type cpuDoc struct {
	Model            string `json:"model"`
	Cores            int    `json:"cores"`
	Freq             string `json:"freq"`
	OriginalGovernor string `json:"original_governor,omitempty"`
	OriginalPolicy   string `json:"original_policy,omitempty"`
	TestedGovernor   string `json:"tested_governor,omitempty"`
	TestedPolicy     string `json:"tested_policy,omitempty"`
}

type memDoc struct {
	RAM      uint64 `json:"ram"`
	RAMUnits string `json:"ram_units"`
}

type fioOp struct {
	Speed float64 `json:"speed"`
	IOPS  float64 `json:"iops"`
}

type iperfEntry struct {
	Mode     string `json:"mode"`
	Provider string `json:"provider"`
	Loc      string `json:"loc"`
	Send     string `json:"send"`
	Recv     string `json:"recv"`
	Latency  string `json:"latency"`
}

type geekbenchEntry struct {
	Version int     `json:"version"`
	Single  float64 `json:"single"`
	Multi   float64 `json:"multi"`
	URL     string  `json:"url"`
}

type passmarkDoc struct {
	CPUMark    float64            `json:"CPU Mark"`
	MemoryMark float64            `json:"Memory Mark"`
	CPU        map[string]float64 `json:"CPU"`
	Memory     map[string]float64 `json:"Memory"`
}

type runtimeDoc struct {
	Start   int64   `json:"start"`
	End     int64   `json:"end"`
	Elapsed float64 `json:"elapsed"`
}

// RenderJSON serializes the report to its wire schema. Rendering the same
// snapshot twice yields byte-identical output.
func RenderJSON(r *AggregateReport) ([]byte, error) {
	doc := document{
		Version: r.Version,
		Time:    r.Time,
		OS:      osDoc(r.OS),
		CPU:     cpuDoc(r.CPU),
		Mem:     memDoc(r.Mem),
		Runtime: runtimeDoc(r.Runtime),
	}

	for _, s := range r.Sections {
		switch s.Test {
		case TestFio:
			addFio(&doc, s)
		case TestIperf:
			doc.Iperf = append(doc.Iperf, buildIperf(s))
		case TestGeekbench:
			if e, ok := buildGeekbench(s); ok {
				doc.Geekbench = append(doc.Geekbench, e)
			}
		case TestUnixbench:
			addGrouped(&doc.Unixbench, s)
		case TestPassmark:
			addPassmark(&doc, s)
		case TestCpuminer:
			addGrouped(&doc.Cpuminer, s)
		}
	}

	return json.MarshalIndent(&doc, "", "  ")
}

func addFio(doc *document, s TestSection) {
	if p := s.Meta[MetaPartition]; p != "" && doc.Partition == "" {
		doc.Partition = p
	}
	for _, rec := range s.Records {
		if rec.Status != StatusOk {
			continue
		}
		bs, op, ok := strings.Cut(rec.Subtest, " ")
		if !ok {
			continue
		}
		if doc.Fio == nil {
			doc.Fio = map[string]map[string]fioOp{}
		}
		if doc.Fio[bs] == nil {
			doc.Fio[bs] = map[string]fioOp{}
		}
		entry := doc.Fio[bs][op]
		switch rec.Unit {
		case "IOPS":
			entry.IOPS = rec.Value
		default:
			entry.Speed = rec.Value
		}
		doc.Fio[bs][op] = entry
	}
}

func buildIperf(s TestSection) iperfEntry {
	e := iperfEntry{
		Mode:     s.Meta[MetaMode],
		Provider: s.Meta[MetaProvider],
		Loc:      s.Meta[MetaLocation],
		Latency:  s.Meta[MetaLatency],
	}
	for _, rec := range s.Records {
		var v string
		switch rec.Status {
		case StatusOk:
			v = FormatBitrate(rec.Value, rec.Unit)
		default:
			v = string(rec.Status)
		}
		switch rec.Subtest {
		case "send":
			e.Send = v
		case "recv":
			e.Recv = v
		}
	}
	return e
}

func buildGeekbench(s TestSection) (geekbenchEntry, bool) {
	version, _ := strconv.Atoi(s.Meta[MetaVersion])
	e := geekbenchEntry{Version: version, URL: s.Meta[MetaURL]}
	any := false
	for _, rec := range s.Records {
		if rec.Status != StatusOk {
			continue
		}
		switch rec.Subtest {
		case "single":
			e.Single = rec.Value
			any = true
		case "multi":
			e.Multi = rec.Value
			any = true
		}
	}
	return e, any
}

// addGrouped handles sections whose subtests are named "<group>/<key>"
// (unixbench and cpuminer).
func addGrouped(dst *map[string]map[string]float64, s TestSection) {
	for _, rec := range s.Records {
		if rec.Status != StatusOk {
			continue
		}
		group, key, ok := strings.Cut(rec.Subtest, "/")
		if !ok {
			continue
		}
		if *dst == nil {
			*dst = map[string]map[string]float64{}
		}
		if (*dst)[group] == nil {
			(*dst)[group] = map[string]float64{}
		}
		(*dst)[group][key] = rec.Value
	}
}

func addPassmark(doc *document, s TestSection) {
	for _, rec := range s.Records {
		if rec.Status != StatusOk {
			continue
		}
		if doc.Passmark == nil {
			doc.Passmark = &passmarkDoc{
				CPU:    map[string]float64{},
				Memory: map[string]float64{},
			}
		}
		switch {
		case rec.Subtest == "SUMM_CPU":
			doc.Passmark.CPUMark = rec.Value
		case rec.Subtest == "SUMM_ME":
			doc.Passmark.MemoryMark = rec.Value
		case strings.HasPrefix(rec.Subtest, "CPU_"):
			doc.Passmark.CPU[rec.Subtest] = rec.Value
		case strings.HasPrefix(rec.Subtest, "ME_"):
			doc.Passmark.Memory[rec.Subtest] = rec.Value
		}
	}
}
