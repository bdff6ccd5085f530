package geekbench

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hostbench/hostbench/util"
)

var claimURLRe = regexp.MustCompile(`https://browser\.geekbench\.com/[^\s?]+`)

// ParseClaimURL finds the public results URL in the tool's stdout.
func ParseClaimURL(out []byte) (string, error) {
	url := claimURLRe.Find(out)
	if url == nil {
		return "", fmt.Errorf("no results URL in geekbench output")
	}
	return string(url), nil
}

var angleRe = regexp.MustCompile(`[<>]`)

// ParseScores extracts the single-core and multi-core scores from the public
// results page. This is a positional contract with the page template: when
// the score block is split on angle brackets, the single-core score is the
// 3rd field and the multi-core score the 7th.
func ParseScores(page []byte) (single, multi float64, err error) {
	line := util.FirstLineContaining(page, "class='score'")
	if line == "" {
		line = util.FirstLineContaining(page, `class="score"`)
	}
	if line == "" {
		return 0, 0, fmt.Errorf("no score block in results page")
	}
	fields := angleRe.Split(line, -1)
	if len(fields) < 7 {
		return 0, 0, fmt.Errorf("score block has %d fields, need at least 7", len(fields))
	}
	single, err = parseScoreField(fields[2])
	if err != nil {
		return 0, 0, fmt.Errorf("single-core score: %w", err)
	}
	multi, err = parseScoreField(fields[6])
	if err != nil {
		return 0, 0, fmt.Errorf("multi-core score: %w", err)
	}
	return single, multi, nil
}

func parseScoreField(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(s, 64)
}
