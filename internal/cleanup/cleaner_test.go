package cleanup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) SweepIdleDialogs(time.Duration) int {
	s.calls.Add(1)
	return 1
}

func TestCleanerRunsUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	sweeper := &countingSweeper{}
	c := NewCleaner(sweeper, time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	deadline := time.After(time.Second)
	for sweeper.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 sweeps, got %d", sweeper.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestNewCleanerDefaults(t *testing.T) {
	c := NewCleaner(&countingSweeper{}, 0, 0)
	if c.interval != 5*time.Minute {
		t.Errorf("expected default interval, got %s", c.interval)
	}
	if c.maxIdle != 30*time.Minute {
		t.Errorf("expected default max idle, got %s", c.maxIdle)
	}
}
