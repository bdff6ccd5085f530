package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderTextEmptyBattery(t *testing.T) {
	var sb strings.Builder
	RenderText(&sb, sampleReport())
	out := sb.String()
	require.Contains(t, out, "Basic System Information")
	require.Contains(t, out, "AMD EPYC 7443P")
	require.NotContains(t, out, "fio")
	require.NotContains(t, out, "iperf3")
}

func TestRenderTextFioTable(t *testing.T) {
	rep := sampleReport()
	rep.Sections = []TestSection{
		{
			Test: TestFio,
			Meta: map[string]string{MetaPartition: "/dev/sda1"},
			Records: []MetricRecord{
				{Test: TestFio, Subtest: "4k read", Value: 123456, Unit: "KB/s", Status: StatusOk},
				{Test: TestFio, Subtest: "4k read", Value: 30864, Unit: "IOPS", Status: StatusOk},
				{Test: TestFio, Subtest: "4k write", Value: 123789, Unit: "KB/s", Status: StatusOk},
				{Test: TestFio, Subtest: "4k write", Value: 30947, Unit: "IOPS", Status: StatusOk},
				{Test: TestFio, Subtest: "64k read", Status: StatusFailed},
				{Test: TestFio, Subtest: "64k write", Status: StatusFailed},
			},
		},
	}

	var sb strings.Builder
	RenderText(&sb, rep)
	out := sb.String()
	require.Contains(t, out, "/dev/sda1")
	require.Contains(t, out, "123.46 MB/s")
	require.Contains(t, out, "(30.9k)")
	require.Contains(t, out, "failed")
}

func TestRenderTextIperfGroupsByMode(t *testing.T) {
	mkSection := func(mode, provider string) TestSection {
		return TestSection{
			Test: TestIperf,
			Meta: map[string]string{MetaMode: mode, MetaProvider: provider, MetaLocation: "X", MetaLatency: "1.0 ms"},
			Records: []MetricRecord{
				{Test: TestIperf, Subtest: "send", Value: 940, Unit: "Mbits/sec", Status: StatusOk},
				{Test: TestIperf, Subtest: "recv", Value: 933, Unit: "Mbits/sec", Status: StatusOk},
			},
		}
	}
	rep := sampleReport()
	rep.Sections = []TestSection{
		mkSection("IPv4", "Clouvider"),
		mkSection("IPv4", "Scaleway"),
		mkSection("IPv6", "Clouvider"),
	}

	var sb strings.Builder
	RenderText(&sb, rep)
	out := sb.String()
	require.Equal(t, 1, strings.Count(out, "iperf3 Network Speed Tests (IPv4)"))
	require.Equal(t, 1, strings.Count(out, "iperf3 Network Speed Tests (IPv6)"))
	require.Contains(t, out, "Scaleway")
	require.Contains(t, out, "940 Mbps")
}
