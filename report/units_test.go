package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatThroughput(t *testing.T) {
	tests := []struct {
		value float64
		unit  string
		want  string
	}{
		{1000, "KB/s", "1.00 MB/s"},
		{999, "KB/s", "999.00 KB/s"},
		{123.456, "KB/s", "123.46 KB/s"},
		{2500000, "KB/s", "2.50 GB/s"},
		{1000000000, "KB/s", "1000.00 GB/s"},
		{500, "MB/s", "500.00 MB/s"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FormatThroughput(tt.value, tt.unit), "%v %s", tt.value, tt.unit)
	}
}

func TestFormatIOPS(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1000, "1.0k"},
		{999, "999"},
		{30250, "30.3k"},
		{0, "0"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FormatIOPS(tt.value), "%v", tt.value)
	}
}

func TestFormatSize(t *testing.T) {
	require.Equal(t, "512.00 KiB", FormatSize(512, "KiB"))
	require.Equal(t, "16.00 GiB", FormatSize(16777216, "KiB"))
}

func TestFormatBitrate(t *testing.T) {
	require.Equal(t, "940 Mbps", FormatBitrate(940, "Mbits/sec"))
	require.Equal(t, "9.41 Gbps", FormatBitrate(9.41, "Gbits/sec"))
}
