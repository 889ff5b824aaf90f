package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

func TestNewCronSchedulerRejectsInvalidSpec(t *testing.T) {
	t.Parallel()

	if _, err := NewCronScheduler("not a cron", time.Minute, time.UTC, nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNextDailyAtEight(t *testing.T) {
	t.Parallel()

	sc, err := NewCronScheduler("0 8 * * *", time.Minute, time.UTC, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	before := time.Date(2025, time.March, 4, 7, 30, 0, 0, time.UTC)
	if got := sc.Next(before); !got.Equal(time.Date(2025, time.March, 4, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next run %v", got)
	}

	after := time.Date(2025, time.March, 4, 8, 0, 30, 0, time.UTC)
	if got := sc.Next(after); !got.Equal(time.Date(2025, time.March, 5, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next run %v", got)
	}
}

func TestRunFiresOncePerActivation(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, time.March, 4, 7, 59, 0, 0, time.UTC)}
	sc, err := NewCronScheduler("0 8 * * *", 2*time.Millisecond, time.UTC, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	sc.now = clock.Now

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	fired := make(chan time.Time, 4)
	done := make(chan error, 1)
	go func() {
		done <- sc.Run(ctx, func(_ context.Context, at time.Time) {
			atomic.AddInt32(&calls, 1)
			fired <- at
		})
	}()

	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("job fired before schedule: %d", got)
	}

	clock.Set(time.Date(2025, time.March, 4, 8, 0, 5, 0, time.UTC))
	select {
	case at := <-fired:
		if at.Hour() != 8 {
			t.Fatalf("unexpected trigger time %v", at)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job did not fire")
	}

	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly one run, got %d", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
