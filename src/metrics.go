package main

import (
	"math"

	"github.com/docker/docker/api/types/container"
)

// calcCPUPercent computes the CPU usage percentage from a one-shot stats
// sample, comparing the sample's counters against the daemon-provided
// previous counters.
//
// Docker's formula: cpuPercent = (cpuDelta / systemDelta) * onlineCPUs * 100.0
// systemDelta is total CPU time across ALL system CPUs during the measurement
// period, so the result can exceed 100% (2.5 cores of work reads as 250%).
//
// Returns nil when the sample cannot produce a meaningful number (missing
// counters, zero deltas, container just started). Metrics are best-effort:
// nil, never an error.
func calcCPUPercent(stats *container.StatsResponse) *float64 {
	if stats == nil {
		return nil
	}

	cpuDelta := float64(stats.CPUStats.CPUUsage.TotalUsage) - float64(stats.PreCPUStats.CPUUsage.TotalUsage)
	sysDelta := float64(stats.CPUStats.SystemUsage) - float64(stats.PreCPUStats.SystemUsage)

	onlineCPUs := float64(stats.CPUStats.OnlineCPUs)
	if onlineCPUs == 0 {
		// Fallback to counting per-cpu usage entries
		onlineCPUs = float64(len(stats.CPUStats.CPUUsage.PercpuUsage))
		if onlineCPUs == 0 {
			onlineCPUs = 1
		}
	}

	if cpuDelta <= 0 || sysDelta <= 0 || onlineCPUs <= 0 {
		return nil
	}

	result := (cpuDelta / sysDelta) * onlineCPUs * 100.0
	return &result
}

// calcMemMB converts the memory usage counter to megabytes, nil when the
// sample carries no usage information.
func calcMemMB(stats *container.StatsResponse) *float64 {
	if stats == nil {
		return nil
	}
	usage := float64(stats.MemoryStats.Usage)
	if usage <= 0 {
		return nil
	}
	mb := usage / (1024 * 1024)
	return &mb
}

// roundTo rounds v to the given number of decimal places. The dashboard shows
// CPU with one decimal and memory with none; rounding happens here at the
// presentation boundary, not in the calculators.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
