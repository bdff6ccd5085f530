package passmark

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const resultsFile = `Version:  "10.2"
Results:
  NumTestProcesses:  8
  SUMM_CPU:  14567.8
  SUMM_ME:  2890.2
  CPU_INTEGER_MATH:  45210.9
  CPU_SINGLETHREAD:  2650.4
  ME_READ_S:  24890.1
SystemInformation:
  OS:  "Linux 5.15"
`

func TestParseResults(t *testing.T) {
	results, err := ParseResults([]byte(resultsFile))
	require.NoError(t, err)
	require.Equal(t, 14567.0, results["SUMM_CPU"], "values are truncated")
	require.Equal(t, 2890.0, results["SUMM_ME"])
	require.Equal(t, 45210.0, results["CPU_INTEGER_MATH"])
}

func TestParseResultsMissingMarkers(t *testing.T) {
	_, err := ParseResults([]byte("SystemInformation:\n  OS: Linux\n"))
	require.Error(t, err)

	_, err = ParseResults([]byte("Results:\n  SUMM_CPU: 1\n"))
	require.Error(t, err)
}

func TestParseResultsEmptyBlock(t *testing.T) {
	_, err := ParseResults([]byte("Results:\nSystemInformation:\n"))
	require.Error(t, err)
}

func TestRecordsOrder(t *testing.T) {
	results := map[string]float64{
		"ZZ_CUSTOM":        1,
		"CPU_SINGLETHREAD": 2650,
		"SUMM_CPU":         14567,
		"AA_CUSTOM":        2,
	}
	recs := Records(results)
	require.Len(t, recs, 4)
	require.Equal(t, "SUMM_CPU", recs[0].Subtest)
	require.Equal(t, "CPU_SINGLETHREAD", recs[1].Subtest)
	require.Equal(t, "AA_CUSTOM", recs[2].Subtest, "unknown keys sorted after known ones")
	require.Equal(t, "ZZ_CUSTOM", recs[3].Subtest)
	require.Equal(t, 14567.0, recs[0].Value)
	require.Equal(t, "score", recs[0].Unit)
}
