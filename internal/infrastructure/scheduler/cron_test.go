package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewCronSchedulerRejectsInvalidSpec(t *testing.T) {
	t.Parallel()

	if _, err := NewCronScheduler("every day", nil, nil); err == nil {
		t.Fatalf("expected invalid cron expression error")
	}
	if _, err := NewCronScheduler("0 6 * * *", nil, nil); err != nil {
		t.Fatalf("expected standard expression to parse: %v", err)
	}
}

func TestCronSchedulerRunsAndStops(t *testing.T) {
	t.Parallel()

	s, err := NewCronScheduler("@every 1s", time.UTC, nil)
	if err != nil {
		t.Fatalf("NewCronScheduler error: %v", err)
	}

	var runs atomic.Int32
	fired := make(chan time.Time, 4)
	job := func(at time.Time) {
		runs.Add(1)
		select {
		case fired <- at:
		default:
		}
	}

	if err := s.Start(context.Background(), job); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if err := s.Start(context.Background(), job); err != nil {
		t.Fatalf("second Start should be a no-op: %v", err)
	}

	select {
	case at := <-fired:
		if at.Location() != time.UTC {
			t.Fatalf("expected trigger time in UTC, got %v", at.Location())
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("job did not run")
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	after := runs.Load()
	time.Sleep(1500 * time.Millisecond)
	if runs.Load() != after {
		t.Fatalf("job ran after Stop")
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("second Stop should be a no-op: %v", err)
	}
}

func TestCronSchedulerSkipsTickWhileJobRuns(t *testing.T) {
	t.Parallel()

	s, err := NewCronScheduler("@every 1s", time.UTC, nil)
	if err != nil {
		t.Fatalf("NewCronScheduler error: %v", err)
	}

	var running, peak, runs atomic.Int32
	job := func(time.Time) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		runs.Add(1)
		time.Sleep(2500 * time.Millisecond)
		running.Add(-1)
	}

	if err := s.Start(context.Background(), job); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	time.Sleep(4500 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	if got := peak.Load(); got != 1 {
		t.Fatalf("expected at most one concurrent run, got %d", got)
	}
	if runs.Load() == 0 {
		t.Fatalf("job did not run")
	}
}
