package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func section(test string, n int) TestSection {
	s := TestSection{Test: test}
	for i := 0; i < n; i++ {
		s.Records = append(s.Records, MetricRecord{Test: test, Subtest: "sub", Value: float64(i), Unit: "score", Status: StatusOk})
	}
	return s
}

func TestAccumulatorPreservesOrder(t *testing.T) {
	acc := NewAccumulator("test")
	require.NoError(t, acc.Append(section(TestFio, 2)))
	require.NoError(t, acc.Append(section(TestIperf, 1)))
	require.NoError(t, acc.Append(section(TestIperf, 1)))

	rep := acc.Snapshot()
	require.Len(t, rep.Sections, 3)
	require.Equal(t, TestFio, rep.Sections[0].Test)
	require.Equal(t, TestIperf, rep.Sections[1].Test)
	require.Equal(t, TestIperf, rep.Sections[2].Test, "duplicate sections are kept, never deduplicated")
}

func TestSnapshotMidRunIsValid(t *testing.T) {
	acc := NewAccumulator("test")
	rep := acc.Snapshot()
	require.NotNil(t, rep)
	require.Empty(t, rep.Sections)
	require.GreaterOrEqual(t, rep.Runtime.Elapsed, 0.0)

	doc, err := RenderJSON(rep)
	require.NoError(t, err)
	require.NotEmpty(t, doc, "an empty battery is a valid, well-formed report")
}

func TestSnapshotIsolatedFromLaterAppends(t *testing.T) {
	acc := NewAccumulator("test")
	require.NoError(t, acc.Append(section(TestFio, 1)))
	snap := acc.Snapshot()
	require.NoError(t, acc.Append(section(TestIperf, 1)))
	require.Len(t, snap.Sections, 1)
}

func TestFinalizeClosesAccumulator(t *testing.T) {
	acc := NewAccumulator("test")
	require.NoError(t, acc.Append(section(TestFio, 1)))
	rep := acc.Finalize()
	require.Len(t, rep.Sections, 1)

	err := acc.Append(section(TestIperf, 1))
	require.Error(t, err)
}

func TestFailedSectionStaysVisible(t *testing.T) {
	s := FailedSection(TestUnixbench, nil)
	require.Equal(t, TestUnixbench, s.Test)
	require.Len(t, s.Records, 1)
	require.Equal(t, StatusFailed, s.Records[0].Status)
}
