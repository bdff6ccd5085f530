package sysinfo

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hostbench/hostbench/target"
)

const (
	governorPath = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_governor"
	policyPath   = "/sys/devices/system/cpu/cpu0/cpufreq/energy_performance_preference"
	allGovernors = "/sys/devices/system/cpu/cpu*/cpufreq/scaling_governor"
	allPolicies  = "/sys/devices/system/cpu/cpu*/cpufreq/energy_performance_preference"
)

// Governor snapshots and switches the CPU frequency governor on the target
// so the battery runs at full clock, restoring the original setting after.
type Governor struct {
	target   target.Target
	Original string
	Policy   string
	switched bool
}

func NewGovernor(t target.Target) *Governor {
	return &Governor{target: t}
}

// Read records the current governor and energy policy. Hosts without cpufreq
// (containers, some VMs) just leave both empty.
func (g *Governor) Read() {
	if raw, err := g.target.ReadFile(governorPath); err == nil {
		g.Original = strings.TrimSpace(string(raw))
	}
	if raw, err := g.target.ReadFile(policyPath); err == nil {
		g.Policy = strings.TrimSpace(string(raw))
	}
}

// SetPerformance switches every core to the performance governor. Returns
// the governor and policy now in effect.
func (g *Governor) SetPerformance(ctx context.Context) (string, string) {
	if g.Original == "" || g.Original == "performance" {
		return g.Original, g.Policy
	}
	out, err := g.target.RunCommand(ctx, []string{
		"sh", "-c", "echo performance | tee " + allGovernors + " >/dev/null",
	})
	if err != nil {
		slog.Warn("switching governor failed, continuing with current settings",
			slog.String("output", strings.TrimSpace(string(out))))
		return g.Original, g.Policy
	}
	g.switched = true
	if g.Policy != "" {
		g.target.RunCommand(ctx, []string{
			"sh", "-c", "echo performance | tee " + allPolicies + " >/dev/null",
		})
	}
	return "performance", "performance"
}

// Restore puts the original governor back if SetPerformance changed it.
func (g *Governor) Restore(ctx context.Context) {
	if !g.switched {
		return
	}
	g.target.RunCommand(ctx, []string{
		"sh", "-c", "echo " + g.Original + " | tee " + allGovernors + " >/dev/null",
	})
	if g.Policy != "" {
		g.target.RunCommand(ctx, []string{
			"sh", "-c", "echo " + g.Policy + " | tee " + allPolicies + " >/dev/null",
		})
	}
	g.switched = false
}
