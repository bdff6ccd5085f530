package bench

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hostbench/hostbench/invoke"
	"github.com/hostbench/hostbench/report"
	"github.com/hostbench/hostbench/target"
)

// Context carries everything a tool needs to run against one host.
type Context struct {
	Target        target.Target
	Runner        *invoke.Runner
	WorkDir       string
	Arch          string
	ForcePrebuilt bool
}

// Tool is one benchmark tool family in the battery.
type Tool interface {
	// Prepare the tool for this run. May locate or download the binary.
	// Returns an error wrapping ErrUnavailable when the binary cannot be
	// obtained or the architecture is unsupported.
	Setup(ctx context.Context, bctx *Context) error

	// Run the tool's subtests and return their sections in execution order.
	Run(ctx context.Context) ([]report.TestSection, error)

	// A short stable name used for flags, logging and report sections.
	Name() string
}

// ErrUnavailable marks a tool that cannot run on this host. The coordinator
// proceeds with the rest of the battery.
var ErrUnavailable = errors.New("benchmark tool unavailable")

type toolFactory func(map[string]any) (Tool, error)

var tools map[string]toolFactory

// All tools must register themselves at package load time so that the
// coordinator can build a battery from configured names.
func Register(name string, f toolFactory) {
	if tools == nil {
		tools = map[string]toolFactory{}
	}
	tools[name] = f
}

// New creates a registered tool, decoding options into the tool's own input
// type.
func New(name string, options map[string]any) (Tool, error) {
	f, ok := tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return f(options)
}

func Names() []string {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ExplainTools() string {
	return "\"" + strings.Join(Names(), "\", \"") + "\""
}
