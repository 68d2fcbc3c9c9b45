package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SweepTask removes stale entries from one in-process store and reports
// how many went.
type SweepTask struct {
	Name  string
	Sweep func() int
}

// Janitor periodically runs sweep tasks so expired cache entries and rate
// limit windows of clients that went away do not pile up.
type Janitor struct {
	tasks  []SweepTask
	logger *slog.Logger
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewJanitor(logger *slog.Logger, tasks ...SweepTask) *Janitor {
	return &Janitor{
		tasks:  tasks,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the sweep loop. If interval <= 0, one minute is used.
func (j *Janitor) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	j.mu.Lock()
	if j.ticker != nil {
		j.ticker.Stop()
	}
	j.ticker = time.NewTicker(interval)
	tick := j.ticker
	j.mu.Unlock()

	j.logger.Info("janitor starting", "interval", interval.String(), "tasks", len(j.tasks))

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.loop(ctx, tick)
	}()
}

// Stop ends the loop and waits for it. Safe to call more than once.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if j.ticker != nil {
		j.ticker.Stop()
	}
	select {
	case <-j.done:
	default:
		close(j.done)
	}
	j.mu.Unlock()
	j.wg.Wait()
	j.logger.Info("janitor stopped")
}

func (j *Janitor) loop(ctx context.Context, tick *time.Ticker) {
	for {
		select {
		case <-tick.C:
			j.SweepOnce()
		case <-j.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// SweepOnce runs every task immediately.
func (j *Janitor) SweepOnce() {
	for _, t := range j.tasks {
		if n := t.Sweep(); n > 0 {
			j.logger.Debug("janitor swept entries", "task", t.Name, "removed", n)
		}
	}
}
