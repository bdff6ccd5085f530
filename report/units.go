package report

import (
	"fmt"
	"strconv"
	"strings"
)

var throughputUnits = []string{"KB/s", "MB/s", "GB/s"}
var sizeUnits = []string{"KiB", "MiB", "GiB", "TiB"}

// FormatThroughput renders a disk throughput value, promoting KB/s through
// GB/s whenever the value would be at least 1000 in the next unit.
func FormatThroughput(value float64, unit string) string {
	return promote(value, unit, throughputUnits, 1000)
}

// FormatSize renders a memory size, promoting KiB through TiB with a 1024
// divisor.
func FormatSize(value float64, unit string) string {
	return promote(value, unit, sizeUnits, 1024)
}

// FormatIOPS renders an IOPS count; values of 1000 and above collapse to
// "<v>k" with one decimal.
func FormatIOPS(value float64) string {
	if value >= 1000 {
		return fmt.Sprintf("%.1fk", value/1000)
	}
	return fmt.Sprintf("%.0f", value)
}

// FormatBitrate renders a network speed in the unit the tool reported,
// abbreviated ("Mbits/sec" becomes "Mbps") with no trailing zeros.
func FormatBitrate(value float64, unit string) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + abbreviateBitrate(unit)
}

func promote(value float64, unit string, ladder []string, divisor float64) string {
	i := 0
	for j, u := range ladder {
		if u == unit {
			i = j
			break
		}
	}
	for i+1 < len(ladder) && value >= 1000 {
		value /= divisor
		i++
	}
	return fmt.Sprintf("%.2f %s", value, ladder[i])
}

func abbreviateBitrate(unit string) string {
	switch {
	case strings.HasPrefix(unit, "G"):
		return "Gbps"
	case strings.HasPrefix(unit, "K"), strings.HasPrefix(unit, "k"):
		return "Kbps"
	default:
		return "Mbps"
	}
}
