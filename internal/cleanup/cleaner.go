package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper closes story dialogs that have been idle too long
type Sweeper interface {
	SweepIdleDialogs(maxIdle time.Duration) int
}

// Cleaner handles periodic cleanup of idle story dialogs
type Cleaner struct {
	sweeper  Sweeper
	interval time.Duration
	maxIdle  time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(sweeper Sweeper, interval, maxIdle time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if maxIdle <= 0 {
		maxIdle = 30 * time.Minute
	}

	return &Cleaner{
		sweeper:  sweeper,
		interval: interval,
		maxIdle:  maxIdle,
	}
}

// Run sweeps on every tick until ctx is done
func (c *Cleaner) Run(ctx context.Context) error {
	slog.Info("cleanup worker started", "interval", c.interval, "max_idle", c.maxIdle)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.cleanup()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return nil
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup closes idle dialogs
func (c *Cleaner) cleanup() {
	slog.Debug("running cleanup cycle")

	closed := c.sweeper.SweepIdleDialogs(c.maxIdle)
	if closed == 0 {
		slog.Debug("no idle dialogs found")
		return
	}

	slog.Info("closed idle story dialogs", "count", closed)
}
