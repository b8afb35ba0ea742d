package workers

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"

	"club-hub/contract"
)

var _ contract.Worker = (*HealthWorker)(nil)

// HealthStats is the latest self-measurement of the server process,
// exposed on the health endpoint.
type HealthStats struct {
	Pid        int     `json:"pid"`
	Status     string  `json:"status"`
	CPUPercent float64 `json:"cpu_percent"`
	RAMBytes   uint64  `json:"ram_bytes"`
	SampledAt  string  `json:"sampled_at"`
}

// HealthWorker samples process CPU, memory and status on a fixed
// interval and keeps the latest snapshot for the REST health handler.
type HealthWorker struct {
	log      *slog.Logger
	interval time.Duration

	mu     sync.RWMutex
	latest HealthStats
}

func NewHealthWorker(log *slog.Logger, interval time.Duration) *HealthWorker {
	return &HealthWorker{log: log, interval: interval}
}

func (w *HealthWorker) Latest() HealthStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}

func (w *HealthWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			stats, err := sampleSelf(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.mu.Lock()
			w.latest = stats
			w.mu.Unlock()
			w.log.Debug("Health sample",
				"cpu_percent", stats.CPUPercent,
				"ram_bytes", stats.RAMBytes,
				"status", stats.Status)
		}
	}
}

// sampleSelf retrieves memory, CPU and OS status for the given process.
func sampleSelf(p *process.Process) (HealthStats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return HealthStats{}, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return HealthStats{}, err
	}
	status, err := p.Status()
	if err != nil {
		return HealthStats{}, err
	}
	return HealthStats{
		Pid:        os.Getpid(),
		Status:     status,
		CPUPercent: cpuPercent,
		RAMBytes:   memInfo.RSS,
		SampledAt:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}
