package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandstring(t *testing.T) {
	s := Randstring(8)
	require.Len(t, s, 8)
	for _, r := range s {
		require.True(t, r >= 'a' && r <= 'z')
	}
}

func TestLastNonEmptyLine(t *testing.T) {
	require.Equal(t, "fio-3.28", LastNonEmptyLine([]byte("fio-3.28\n")))
	require.Equal(t, "b", LastNonEmptyLine([]byte("a\nb\n\n")))
	require.Equal(t, "", LastNonEmptyLine(nil))
}

func TestFirstLineContaining(t *testing.T) {
	out := []byte("one two\nthree four\nthree five\n")
	require.Equal(t, "three four", FirstLineContaining(out, "three"))
	require.Equal(t, "three five", FirstLineContaining(out, "three", "five"))
	require.Equal(t, "", FirstLineContaining(out, "six"))
}
