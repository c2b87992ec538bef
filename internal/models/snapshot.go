// Package models defines the data structures shared across the daemon:
// metric snapshots, requested actions, and execution results. These
// structures are serialized to JSON for the decision service and for the
// audit log, so field tags are part of the wire contract.
package models

import "time"

// MetricsSnapshot represents a single point-in-time capture of host metrics.
// It is assembled once per cycle and never mutated afterwards. Fields whose
// collector failed keep their zero value; the collector reports the failure
// separately so a zero is never silently mistaken for a measurement.
type MetricsSnapshot struct {
	Timestamp    time.Time    `json:"timestamp"`
	CPUPercent   float64      `json:"cpu_percent"`
	Memory       MemoryStats  `json:"memory"`
	Disk         DiskStats    `json:"disk"`
	Network      NetworkStats `json:"network"`
	ProcessCount int          `json:"process_count"`
}

// MemoryStats holds virtual memory usage at capture time.
type MemoryStats struct {
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Percent float64 `json:"percent"`
}

// DiskStats holds usage for the monitored mount point.
type DiskStats struct {
	Path    string  `json:"path"`
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Percent float64 `json:"percent"`
}

// NetworkStats holds aggregate network I/O counters. Counters are monotonic
// since boot; rate computation is left to consumers of successive snapshots.
type NetworkStats struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
}
