package fio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hostbench/hostbench/report"
)

func minimalLine(readSpeed, readIOPS, writeSpeed, writeIOPS string) string {
	fields := make([]string, 60)
	for i := range fields {
		fields[i] = "0"
	}
	fields[0] = "3"
	fields[1] = "fio-3.28"
	fields[7] = readSpeed
	fields[8] = readIOPS
	fields[48] = writeSpeed
	fields[49] = writeIOPS
	return strings.Join(fields, ";")
}

func TestSelectFormat(t *testing.T) {
	f, err := SelectFormat("fio-3.28")
	require.NoError(t, err)
	require.Equal(t, 7, f.ReadSpeed)
	require.Equal(t, 49, f.WriteIOPS)

	f2, err := SelectFormat("fio-3.1")
	require.NoError(t, err)
	require.Equal(t, f, f2)
}

func TestSelectFormatUnknownVersion(t *testing.T) {
	_, err := SelectFormat("fio-4.0")
	require.Error(t, err)

	_, err = SelectFormat("garbage")
	require.Error(t, err)
}

func TestParseLine(t *testing.T) {
	f, err := SelectFormat("fio-3.28")
	require.NoError(t, err)

	recs, err := f.ParseLine("4k", minimalLine("123456", "30864", "123789", "30947"))
	require.NoError(t, err)
	require.Len(t, recs, 4)

	require.Equal(t, "4k read", recs[0].Subtest)
	require.Equal(t, "KB/s", recs[0].Unit)
	require.Equal(t, 123456.0, recs[0].Value)
	require.Equal(t, "IOPS", recs[1].Unit)
	require.Equal(t, 30864.0, recs[1].Value)
	require.Equal(t, "4k write", recs[2].Subtest)
	require.Equal(t, 123789.0, recs[2].Value)
	require.Equal(t, 30947.0, recs[3].Value)
	for _, rec := range recs {
		require.Equal(t, report.StatusOk, rec.Status)
	}
}

func TestParseLineRecordCountPerConfiguration(t *testing.T) {
	f, err := SelectFormat("fio-3.28")
	require.NoError(t, err)

	blockSizes := []string{"4k", "8k", "64k", "512k", "1m", "16m"}
	var recs []report.MetricRecord
	for _, bs := range blockSizes {
		r, err := f.ParseLine(bs, minimalLine("1", "2", "3", "4"))
		require.NoError(t, err)
		recs = append(recs, r...)
	}
	require.Len(t, recs, 24, "6 block sizes x 4 metrics")
}

func TestParseLineTooFewFields(t *testing.T) {
	f, err := SelectFormat("fio-3.28")
	require.NoError(t, err)

	_, err = f.ParseLine("4k", "3;fio-3.28;0;0")
	require.Error(t, err)
}

func TestParseLineBadNumber(t *testing.T) {
	f, err := SelectFormat("fio-3.28")
	require.NoError(t, err)

	_, err = f.ParseLine("4k", minimalLine("abc", "2", "3", "4"))
	require.Error(t, err)
}
