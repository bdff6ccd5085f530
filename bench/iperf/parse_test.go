package iperf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hostbench/hostbench/invoke"
)

const multiStreamOutput = `
[ ID] Interval           Transfer     Bitrate         Retr
[  5]   0.00-10.00  sec  1.10 GBytes   941 Mbits/sec    0             sender
[  5]   0.00-10.04  sec  1.09 GBytes   936 Mbits/sec                  receiver
[SUM]   0.00-10.00  sec  1.10 GBytes   941 Mbits/sec    0             sender
[SUM]   0.00-10.04  sec  1.09 GBytes   940 Mbits/sec                  receiver

iperf Done.
`

const singleStreamOutput = `
[ ID] Interval           Transfer     Bitrate         Retr
[  5]   0.00-10.00  sec  1.10 GBytes   941 Mbits/sec    0             sender
[  5]   0.00-10.04  sec  1.09 GBytes   936 Mbits/sec                  receiver

iperf Done.
`

func TestParseSpeedPrefersSumLine(t *testing.T) {
	speed, unit, err := ParseSpeed([]byte(multiStreamOutput))
	require.NoError(t, err)
	require.Equal(t, 940.0, speed)
	require.Equal(t, "Mbits/sec", unit)
}

func TestParseSpeedSingleStream(t *testing.T) {
	speed, unit, err := ParseSpeed([]byte(singleStreamOutput))
	require.NoError(t, err)
	require.Equal(t, 936.0, speed)
	require.Equal(t, "Mbits/sec", unit)
}

func TestParseSpeedNoSummary(t *testing.T) {
	_, _, err := ParseSpeed([]byte("iperf3: error - the server is busy running a test\n"))
	require.Error(t, err)
}

func TestParsePing(t *testing.T) {
	out := []byte(`
--- 1.1.1.1 ping statistics ---
3 packets transmitted, 3 received, 0% packet loss, time 2002ms
rtt min/avg/max/mdev = 4.321/5.678/7.890/1.234 ms
`)
	rtt, err := ParsePing(out)
	require.NoError(t, err)
	require.Equal(t, "5.678 ms", rtt)
}

func TestParsePingNoSummary(t *testing.T) {
	_, err := ParsePing([]byte("ping: connect: Network is unreachable\n"))
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	require.Equal(t, invoke.VerdictUsable, Classify([]byte(multiStreamOutput)))
	require.Equal(t, invoke.VerdictFatal, Classify([]byte("iperf3: error - unable to connect to server\n")))
	require.Equal(t, invoke.VerdictBusy, Classify([]byte("iperf3: error - the server is busy running a test\n")))
}

func TestClassifyZeroSpeedIsBusy(t *testing.T) {
	out := []byte("[SUM]   0.00-10.04  sec  0.00 Bytes   0 Mbits/sec                  receiver\n")
	require.Equal(t, invoke.VerdictBusy, Classify(out))
}
