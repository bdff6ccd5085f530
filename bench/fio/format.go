package fio

import (
	"fmt"
	"strconv"
	"strings"

	version "github.com/hashicorp/go-version"

	"github.com/hostbench/hostbench/report"
)

// A Format pins the field offsets of fio's semicolon-delimited minimal-mode
// output. The offsets are a contract with a range of fio versions: the
// minimal format gains fields across releases, and parsing would silently
// drift if the offsets were hard-coded at call sites. Formats are selected
// against the version the installed binary reports.
type Format struct {
	constraint version.Constraints
	ReadSpeed  int
	ReadIOPS   int
	WriteSpeed int
	WriteIOPS  int
}

var formats = []*Format{
	// Terse version 3, fio 3.x. Read bandwidth/IOPS sit early in the line,
	// write bandwidth/IOPS after the full read latency block.
	{
		constraint: version.MustConstraints(version.NewConstraint(">= 3.0, < 4.0")),
		ReadSpeed:  7,
		ReadIOPS:   8,
		WriteSpeed: 48,
		WriteIOPS:  49,
	},
}

// SelectFormat picks the minimal-output format matching a version string as
// printed by "fio --version" (e.g. "fio-3.28").
func SelectFormat(raw string) (*Format, error) {
	v, err := version.NewVersion(strings.TrimPrefix(strings.TrimSpace(raw), "fio-"))
	if err != nil {
		return nil, fmt.Errorf("unparseable fio version %q: %w", raw, err)
	}
	for _, f := range formats {
		if f.constraint.Check(v) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("no minimal-output format known for fio %s", v)
}

// ParseLine converts one minimal-mode line for one block size into the four
// canonical records (read/write speed and IOPS).
func (f *Format) ParseLine(blockSize, line string) ([]report.MetricRecord, error) {
	fields := strings.Split(strings.TrimSpace(line), ";")
	if len(fields) <= f.WriteIOPS {
		return nil, fmt.Errorf("minimal output has %d fields, need at least %d", len(fields), f.WriteIOPS+1)
	}

	var recs []report.MetricRecord
	for _, part := range []struct {
		op            string
		speedF, iopsF int
	}{
		{"read", f.ReadSpeed, f.ReadIOPS},
		{"write", f.WriteSpeed, f.WriteIOPS},
	} {
		speed, err := strconv.ParseFloat(fields[part.speedF], 64)
		if err != nil {
			return nil, fmt.Errorf("bad %s speed field %q: %w", part.op, fields[part.speedF], err)
		}
		iops, err := strconv.ParseFloat(fields[part.iopsF], 64)
		if err != nil {
			return nil, fmt.Errorf("bad %s IOPS field %q: %w", part.op, fields[part.iopsF], err)
		}
		recs = append(recs,
			report.MetricRecord{
				Test:    report.TestFio,
				Subtest: blockSize + " " + part.op,
				Value:   speed,
				Unit:    "KB/s",
				Status:  report.StatusOk,
			},
			report.MetricRecord{
				Test:    report.TestFio,
				Subtest: blockSize + " " + part.op,
				Value:   iops,
				Unit:    "IOPS",
				Status:  report.StatusOk,
			},
		)
	}
	return recs, nil
}
