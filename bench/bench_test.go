package bench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hostbench/hostbench/report"
)

type nopTool struct{}

func (nopTool) Name() string                          { return "nop" }
func (nopTool) Setup(context.Context, *Context) error { return nil }
func (nopTool) Run(context.Context) ([]report.TestSection, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	Register("nop", func(options map[string]any) (Tool, error) {
		return nopTool{}, nil
	})

	tool, err := New("nop", nil)
	require.NoError(t, err)
	require.Equal(t, "nop", tool.Name())

	require.Contains(t, Names(), "nop")
	require.Contains(t, ExplainTools(), `"nop"`)
}

func TestNewUnknownTool(t *testing.T) {
	_, err := New("no-such-tool", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown tool")
}
