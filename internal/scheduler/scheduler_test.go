package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestTicksRunCycles(t *testing.T) {
	var runs atomic.Int32
	s := New(10*time.Millisecond, nil, func(context.Context) { runs.Add(1) }, nil)
	s.Start(context.Background())
	defer s.Stop()

	time.Sleep(100 * time.Millisecond)
	if got := runs.Load(); got < 3 {
		t.Fatalf("expected several cycles, got %d", got)
	}
}

func TestPredicateFalseSkipsSilently(t *testing.T) {
	var runs atomic.Int32
	closed := func(time.Time) bool { return false }
	s := New(5*time.Millisecond, closed, func(context.Context) { runs.Add(1) }, nil)
	s.Start(context.Background())
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Fatalf("closed-market ticks must not run cycles, got %d", got)
	}
}

func TestSetInterval_NeverTwoConcurrentTimers(t *testing.T) {
	var runs atomic.Int32
	s := New(200*time.Millisecond, nil, func(context.Context) { runs.Add(1) }, nil)
	s.Start(context.Background())
	defer s.Stop()

	// Rapid reconfiguration must leave exactly one live timer.
	for i := 0; i < 10; i++ {
		s.SetInterval(20 * time.Millisecond)
	}
	time.Sleep(210 * time.Millisecond)

	got := runs.Load()
	// One timer at 20ms over ~210ms fires ~10 times; ten stacked timers
	// would fire an order of magnitude more.
	if got < 5 || got > 14 {
		t.Fatalf("tick count %d suggests duplicated or dead timers", got)
	}
}

func TestStop_DoesNotWaitForInflightCycle(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := New(5*time.Millisecond, nil, func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	}, nil)
	s.Start(context.Background())
	<-started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on an in-flight cycle")
	}
	close(release)
}

func TestRefreshNow_BypassesPredicateAndWaits(t *testing.T) {
	var runs atomic.Int32
	closed := func(time.Time) bool { return false }
	s := New(time.Hour, closed, func(context.Context) { runs.Add(1) }, nil)
	s.Start(context.Background())
	defer s.Stop()

	s.RefreshNow(context.Background())
	if got := runs.Load(); got != 1 {
		t.Fatalf("manual refresh must run exactly one cycle, got %d", got)
	}
}

func TestRefreshNow_CoalescesWithInflightCycle(t *testing.T) {
	var runs atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	s := New(time.Hour, nil, func(context.Context) {
		runs.Add(1)
		close(entered)
		<-release
	}, nil)
	s.Start(context.Background())
	defer s.Stop()

	go s.RefreshNow(context.Background())
	<-entered

	done := make(chan struct{})
	go func() {
		s.RefreshNow(context.Background())
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	<-done

	if got := runs.Load(); got != 1 {
		t.Fatalf("concurrent triggers must coalesce into one cycle, got %d", got)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	var runs atomic.Int32
	s := New(10*time.Millisecond, nil, func(context.Context) { runs.Add(1) }, nil)
	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx)
	s.Start(ctx)
	defer s.Stop()

	time.Sleep(105 * time.Millisecond)
	if got := runs.Load(); got > 14 {
		t.Fatalf("duplicate Start stacked timers: %d runs", got)
	}
}
