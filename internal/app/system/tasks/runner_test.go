package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/stratastudio/internal/app/engine/discover"
	"go.uber.org/zap"
)

func TestRunner_RunsRegisteredJob(t *testing.T) {
	r := New(zap.NewNop())

	var runs atomic.Int32
	r.Register(Job{
		Name:     "counter",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	r.Start()
	time.Sleep(60 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if runs.Load() == 0 {
		t.Error("job never ran")
	}
}

func TestRunner_StopTimesOut(t *testing.T) {
	r := New(zap.NewNop())

	blocked := make(chan struct{})
	r.Register(Job{
		Name:     "blocker",
		Interval: time.Millisecond,
		Run: func(ctx context.Context) error {
			<-blocked
			return nil
		},
	})

	r.Start()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Stop(ctx); err == nil {
		t.Error("Stop() returned nil while a job was blocked")
	}
	close(blocked)
}

func TestThrottlePruneJob(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	th := discover.NewThrottle(10*time.Second, 100, func() time.Time { return clock })

	th.Allow("alice")
	clock = clock.Add(11 * time.Second)

	job := ThrottlePruneJob(th, time.Minute, zap.NewNop())
	if job.Name != "throttle_prune" {
		t.Errorf("job name = %q, want throttle_prune", job.Name)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if th.Len() != 0 {
		t.Errorf("throttle has %d entries after prune, want 0", th.Len())
	}
}
