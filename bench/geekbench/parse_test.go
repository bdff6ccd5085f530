package geekbench

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseClaimURL(t *testing.T) {
	out := []byte(`
Upload succeeded. Visit the following link and view your results online:

  https://browser.geekbench.com/v6/cpu/1234567

Visit the following link and add this result to your profile:

  https://browser.geekbench.com/v6/cpu/1234567/claim?key=abc123
`)
	url, err := ParseClaimURL(out)
	require.NoError(t, err)
	require.Equal(t, "https://browser.geekbench.com/v6/cpu/1234567", url)
}

func TestParseClaimURLMissing(t *testing.T) {
	_, err := ParseClaimURL([]byte("Internal error uploading result.\n"))
	require.Error(t, err)
}

func TestParseScores(t *testing.T) {
	page := []byte(`<html><body>
<div class='score'>1,450</div><div class='score'>5,230</div>
</body></html>`)
	single, multi, err := ParseScores(page)
	require.NoError(t, err)
	require.Equal(t, 1450.0, single)
	require.Equal(t, 5230.0, multi)
}

func TestParseScoresDoubleQuotedTemplate(t *testing.T) {
	page := []byte(`<div class="score">850</div><div class="score">3100</div>`)
	single, multi, err := ParseScores(page)
	require.NoError(t, err)
	require.Equal(t, 850.0, single)
	require.Equal(t, 3100.0, multi)
}

func TestParseScoresNoScoreBlock(t *testing.T) {
	_, _, err := ParseScores([]byte("<html><body>processing</body></html>"))
	require.Error(t, err)
}
