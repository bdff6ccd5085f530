// Package sysinfo collects the host metadata recorded at the top of every
// report, and manages the CPU frequency governor for the duration of a run.
package sysinfo

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/hostbench/hostbench/report"
)

// Collect gathers arch, distro, kernel, CPU and RAM details of the machine
// the orchestrator runs on.
func Collect(ctx context.Context) (report.OSInfo, report.CPUInfo, report.MemInfo, error) {
	var osInfo report.OSInfo
	var cpuInfo report.CPUInfo
	var memInfo report.MemInfo

	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return osInfo, cpuInfo, memInfo, fmt.Errorf("reading host info failed: %w", err)
	}
	osInfo = report.OSInfo{
		Arch:   runtime.GOARCH,
		Distro: hi.Platform + " " + hi.PlatformVersion,
		Kernel: hi.KernelVersion,
		Uptime: hi.Uptime,
	}

	cpus, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return osInfo, cpuInfo, memInfo, fmt.Errorf("reading cpu info failed: %w", err)
	}
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return osInfo, cpuInfo, memInfo, fmt.Errorf("counting cpus failed: %w", err)
	}
	cpuInfo = report.CPUInfo{Cores: cores}
	if len(cpus) > 0 {
		cpuInfo.Model = cpus[0].ModelName
		cpuInfo.Freq = fmt.Sprintf("%.0f MHz", cpus[0].Mhz)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return osInfo, cpuInfo, memInfo, fmt.Errorf("reading memory info failed: %w", err)
	}
	memInfo = report.MemInfo{RAM: vm.Total / 1024, RAMUnits: "KiB"}

	return osInfo, cpuInfo, memInfo, nil
}
