// Package observability aggregates runtime counters and process metrics
// for the presentation layer's stats view.
package observability

import (
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Stats is a point-in-time snapshot of the simulator's activity.
type Stats struct {
	MessagesSent     uint64  `json:"messages_sent"`
	RepliesSimulated uint64  `json:"replies_simulated"`
	MessagesCensored uint64  `json:"messages_censored"`
	SearchesRun      uint64  `json:"searches_run"`
	RamBytes         uint64  `json:"ram_bytes"`
	CPUPercent       float64 `json:"cpu_percent"`
	PidStatus        string  `json:"pid_status"`
	Uptime           string  `json:"uptime"`
}

// Monitor counts domain activity with atomic counters and reads process
// metrics on demand.
type Monitor struct {
	log       *slog.Logger
	startedAt time.Time
	proc      *process.Process

	messagesSent     atomic.Uint64
	repliesSimulated atomic.Uint64
	messagesCensored atomic.Uint64
	searchesRun      atomic.Uint64
}

func NewMonitor(log *slog.Logger) *Monitor {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		// Self-inspection failing only degrades the stats view.
		log.Warn("Process metrics unavailable", "error", err)
	}
	return &Monitor{log: log, startedAt: time.Now(), proc: proc}
}

func (m *Monitor) MessageSent()     { m.messagesSent.Add(1) }
func (m *Monitor) ReplySimulated()  { m.repliesSimulated.Add(1) }
func (m *Monitor) MessageCensored() { m.messagesCensored.Add(1) }
func (m *Monitor) SearchRun()       { m.searchesRun.Add(1) }

// Snapshot collects counters and, when available, the process's RSS, CPU
// percentage, and OS status.
func (m *Monitor) Snapshot() Stats {
	stats := Stats{
		MessagesSent:     m.messagesSent.Load(),
		RepliesSimulated: m.repliesSimulated.Load(),
		MessagesCensored: m.messagesCensored.Load(),
		SearchesRun:      m.searchesRun.Load(),
		Uptime:           time.Since(m.startedAt).Round(time.Second).String(),
	}

	if m.proc == nil {
		return stats
	}
	if memInfo, err := m.proc.MemoryInfo(); err == nil {
		stats.RamBytes = memInfo.RSS
	}
	if cpu, err := m.proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	if status, err := m.proc.Status(); err == nil {
		stats.PidStatus = status
	}
	return stats
}
