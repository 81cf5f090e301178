package main

import (
	"testing"

	"github.com/docker/docker/api/types/container"
)

// TestCalcCPUPercent tests the CPU percentage calculation against known samples
func TestCalcCPUPercent(t *testing.T) {
	tests := []struct {
		name  string
		stats *container.StatsResponse
		want  *float64
	}{
		{
			name:  "nil stats",
			stats: nil,
			want:  nil,
		},
		{
			name: "50% on 1 CPU",
			stats: &container.StatsResponse{
				CPUStats: container.CPUStats{
					CPUUsage:    container.CPUUsage{TotalUsage: 500000000},
					SystemUsage: 1000000000,
					OnlineCPUs:  1,
				},
				PreCPUStats: container.CPUStats{
					CPUUsage:    container.CPUUsage{TotalUsage: 0},
					SystemUsage: 0,
				},
			},
			want: floatPtr(50.0),
		},
		{
			name: "can exceed 100% on multi-CPU hosts",
			stats: &container.StatsResponse{
				CPUStats: container.CPUStats{
					CPUUsage:    container.CPUUsage{TotalUsage: 1000000000},
					SystemUsage: 1000000000,
					OnlineCPUs:  4,
				},
			},
			want: floatPtr(400.0),
		},
		{
			name: "zero system delta",
			stats: &container.StatsResponse{
				CPUStats: container.CPUStats{
					CPUUsage:    container.CPUUsage{TotalUsage: 500000000},
					SystemUsage: 1000000000,
					OnlineCPUs:  1,
				},
				PreCPUStats: container.CPUStats{
					SystemUsage: 1000000000,
				},
			},
			want: nil,
		},
		{
			name: "zero cpu delta",
			stats: &container.StatsResponse{
				CPUStats: container.CPUStats{
					CPUUsage:    container.CPUUsage{TotalUsage: 500000000},
					SystemUsage: 2000000000,
					OnlineCPUs:  1,
				},
				PreCPUStats: container.CPUStats{
					CPUUsage:    container.CPUUsage{TotalUsage: 500000000},
					SystemUsage: 1000000000,
				},
			},
			want: nil,
		},
		{
			name: "negative delta after counter reset",
			stats: &container.StatsResponse{
				CPUStats: container.CPUStats{
					CPUUsage:    container.CPUUsage{TotalUsage: 100},
					SystemUsage: 1000000000,
					OnlineCPUs:  1,
				},
				PreCPUStats: container.CPUStats{
					CPUUsage: container.CPUUsage{TotalUsage: 500000000},
				},
			},
			want: nil,
		},
		{
			name: "falls back to percpu count when OnlineCPUs is zero",
			stats: &container.StatsResponse{
				CPUStats: container.CPUStats{
					CPUUsage: container.CPUUsage{
						TotalUsage:  500000000,
						PercpuUsage: []uint64{1, 2},
					},
					SystemUsage: 1000000000,
				},
			},
			want: floatPtr(100.0),
		},
		{
			name: "assumes a single CPU when no topology info at all",
			stats: &container.StatsResponse{
				CPUStats: container.CPUStats{
					CPUUsage:    container.CPUUsage{TotalUsage: 500000000},
					SystemUsage: 1000000000,
				},
			},
			want: floatPtr(50.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calcCPUPercent(tt.stats)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("calcCPUPercent() = %v, want %v", fmtPtr(got), fmtPtr(tt.want))
			}
			if got != nil && *got != *tt.want {
				t.Errorf("calcCPUPercent() = %f, want %f", *got, *tt.want)
			}
		})
	}
}

// TestCalcMemMB tests memory usage conversion to megabytes
func TestCalcMemMB(t *testing.T) {
	tests := []struct {
		name  string
		stats *container.StatsResponse
		want  *float64
	}{
		{
			name:  "nil stats",
			stats: nil,
			want:  nil,
		},
		{
			name: "100 MiB",
			stats: &container.StatsResponse{
				MemoryStats: container.MemoryStats{Usage: 104857600},
			},
			want: floatPtr(100.0),
		},
		{
			name: "zero usage",
			stats: &container.StatsResponse{
				MemoryStats: container.MemoryStats{Usage: 0},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calcMemMB(tt.stats)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("calcMemMB() = %v, want %v", fmtPtr(got), fmtPtr(tt.want))
			}
			if got != nil && *got != *tt.want {
				t.Errorf("calcMemMB() = %f, want %f", *got, *tt.want)
			}
		})
	}
}

// TestRoundTo tests presentation rounding
func TestRoundTo(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     float64
	}{
		{12.345, 1, 12.3},
		{12.35, 1, 12.4},
		{99.96, 1, 100.0},
		{12.5, 0, 13.0},
		{0.04, 1, 0.0},
	}

	for _, tt := range tests {
		if got := roundTo(tt.v, tt.decimals); got != tt.want {
			t.Errorf("roundTo(%f, %d) = %f, want %f", tt.v, tt.decimals, got, tt.want)
		}
	}
}

func floatPtr(v float64) *float64 { return &v }

func fmtPtr(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
