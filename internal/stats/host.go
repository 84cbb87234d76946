// Package stats collects runtime statistics surfaced by the control API's
// /stats endpoint: host resource usage (via gopsutil, the same library the
// teacher's handlers package uses) and probe progress counters.
package stats

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Memory is a point-in-time snapshot of host memory usage.
type Memory struct {
	TotalMB     float64
	FreeMB      float64
	UsedMB      float64
	UsedPercent float64
}

// CPU is a point-in-time snapshot of host CPU usage.
type CPU struct {
	NumCPU      int
	UsedPercent float64
	IdlePercent float64
}

// Host snapshots current memory and CPU usage. The CPU sample blocks for
// sampleWindow to compute a usage percentage, matching gopsutil's own
// interval-sampling contract.
func Host(sampleWindow time.Duration) (CPU, Memory) {
	memSnap := Memory{}
	if vm, err := mem.VirtualMemory(); err == nil {
		memSnap.TotalMB = float64(vm.Total) / 1024 / 1024
		memSnap.FreeMB = float64(vm.Available) / 1024 / 1024
		memSnap.UsedMB = float64(vm.Used) / 1024 / 1024
		memSnap.UsedPercent = vm.UsedPercent
	}

	cpuSnap := CPU{NumCPU: runtime.NumCPU()}
	if pct, err := cpu.Percent(sampleWindow, false); err == nil && len(pct) > 0 {
		cpuSnap.UsedPercent = pct[0]
		cpuSnap.IdlePercent = 100.0 - pct[0]
	}

	return cpuSnap, memSnap
}
