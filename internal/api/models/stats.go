package models

import "time"

// CPUStats contains host CPU statistics.
type CPUStats struct {
	NumCPU      int     `json:"num_cpu"`
	UsedPercent float64 `json:"used_percent"`
	IdlePercent float64 `json:"idle_percent"`
}

// MemoryStats contains host memory statistics.
type MemoryStats struct {
	TotalMB     float64 `json:"total_mb"`
	FreeMB      float64 `json:"free_mb"`
	UsedMB      float64 `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// ProbeStatsResponse contains cross-run credential-probing counters.
type ProbeStatsResponse struct {
	AttemptsTotal  uint64 `json:"attempts_total"`
	SuccessesTotal uint64 `json:"successes_total"`
	RunsTotal      uint64 `json:"runs_total"`
	RunsInFlight   int64  `json:"runs_in_flight"`
}

// ServerStatsResponse contains server runtime statistics.
type ServerStatsResponse struct {
	Uptime        string             `json:"uptime"`
	UptimeSeconds int64              `json:"uptime_seconds"`
	StartTime     time.Time          `json:"start_time"`
	CPU           CPUStats           `json:"cpu"`
	Memory        MemoryStats        `json:"memory"`
	Probe         ProbeStatsResponse `json:"probe"`
}
