// metrics.go - Metrics collection for MediShare Node
package server

import (
	"runtime"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// NodeMetrics holds granular health metrics for the node.
type NodeMetrics struct {
	UptimeSeconds   int64   `json:"uptime_seconds"`
	RecordCount     int     `json:"record_count"`
	QueuedJobs      int     `json:"queued_jobs"`
	CPULoadPercent  float64 `json:"cpu_load_percent"`
	MemoryMB        float64 `json:"memory_mb"`
	DiskFreeMB      float64 `json:"disk_free_mb"`
	EngineReachable bool    `json:"engine_reachable"`
	LastStoreTime   string  `json:"last_store_time"`
}

// Track server start time for uptime calculation
var startTime = time.Now()

// GetNodeMetrics returns current health metrics for the node.
func (s *Server) GetNodeMetrics() NodeMetrics {
	// Uptime
	uptime := int64(time.Since(startTime).Seconds())

	// Memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	memoryMB := float64(m.Alloc) / (1024 * 1024)

	// Disk usage (root partition)
	var disk syscall.Statfs_t
	diskFreeMB := 0.0
	if err := syscall.Statfs("/", &disk); err == nil {
		diskFreeMB = float64(disk.Bfree) * float64(disk.Bsize) / (1024 * 1024)
	}

	// CPU usage: Use gopsutil to get current CPU percent
	cpuPercents, err := cpu.Percent(0, false)
	cpuLoad := 0.0
	if err == nil && len(cpuPercents) > 0 {
		cpuLoad = cpuPercents[0]
	}

	// Record count from storage
	recordCount := 0
	if s.Records != nil {
		recordCount, _ = s.Records.RecordCount()
	}

	// Jobs this node still tracks as queued
	queuedJobs := 0
	engineReachable := false
	if s.Engine != nil {
		queuedJobs = len(s.Engine.InFlight())
		engineReachable = s.Engine.Ping()
	}

	// Last store time: newest record meta, empty if nothing stored yet
	lastStoreTime := ""
	if s.Records != nil {
		if metas, err := s.Records.ListRecent(1); err == nil && len(metas) > 0 {
			lastStoreTime = metas[0].StoredAt.Format(time.RFC3339)
		}
	}

	return NodeMetrics{
		UptimeSeconds:   uptime,
		RecordCount:     recordCount,
		QueuedJobs:      queuedJobs,
		CPULoadPercent:  cpuLoad,
		MemoryMB:        memoryMB,
		DiskFreeMB:      diskFreeMB,
		EngineReachable: engineReachable,
		LastStoreTime:   lastStoreTime,
	}
}
