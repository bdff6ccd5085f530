package iperf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hostbench/hostbench/invoke"
	"github.com/hostbench/hostbench/util"
)

// ParseSpeed extracts the summed parallel-stream receiver speed from iperf3
// output. Looks for the "[SUM] ... receiver" line; single-stream runs print
// a plain receiver line instead.
func ParseSpeed(out []byte) (float64, string, error) {
	line := util.FirstLineContaining(out, "SUM", "receiver")
	if line == "" {
		line = util.FirstLineContaining(out, "receiver")
	}
	if line == "" {
		return 0, "", fmt.Errorf("no receiver summary line in iperf3 output")
	}
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return 0, "", fmt.Errorf("malformed receiver summary line %q", line)
	}
	speed, err := strconv.ParseFloat(fields[len(fields)-3], 64)
	if err != nil {
		return 0, "", fmt.Errorf("bad speed field in %q: %w", line, err)
	}
	return speed, fields[len(fields)-2], nil
}

var rttRe = regexp.MustCompile(`min/avg/max[^=]*= [\d.]+/([\d.]+)/`)

// ParsePing extracts the average round-trip time from ping output,
// formatted as "<ms> ms".
func ParsePing(out []byte) (string, error) {
	m := rttRe.FindSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("no rtt summary in ping output")
	}
	return string(m[1]) + " ms", nil
}

// Classify treats an explicit connection error as unrecoverable and an
// absent or zero receiver speed as server contention worth retrying.
func Classify(out []byte) invoke.Verdict {
	if strings.Contains(string(out), "unable to connect") {
		return invoke.VerdictFatal
	}
	speed, _, err := ParseSpeed(out)
	if err != nil || speed == 0 {
		return invoke.VerdictBusy
	}
	return invoke.VerdictUsable
}
