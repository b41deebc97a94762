// Package scheduler drives periodic refresh cycles, gated on a
// trading-hours predicate so closed-market ticks cost no network calls.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Scheduler is a two-state timer: Idle until Start, Active until Stop or
// context cancellation. Each tick evaluates the predicate; true triggers one
// refresh cycle, false skips with a debug log only. Cycles are coalesced: a
// tick or manual trigger arriving while a cycle is in flight joins it
// instead of starting a second one.
type Scheduler struct {
	run       func(ctx context.Context)
	predicate func(time.Time) bool
	logger    *slog.Logger

	mu       sync.Mutex
	interval time.Duration
	parent   context.Context
	cancel   context.CancelFunc
	done     chan struct{}

	sf singleflight.Group
}

func New(interval time.Duration, predicate func(time.Time) bool, run func(ctx context.Context), logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if predicate == nil {
		predicate = func(time.Time) bool { return true }
	}
	return &Scheduler{run: run, predicate: predicate, interval: interval, logger: logger}
}

// Start moves the scheduler to Active. Starting an active scheduler is a
// no-op. The loop stops when ctx is canceled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	s.parent = ctx
	s.startLocked()
}

// Stop moves the scheduler to Idle. An in-flight cycle is not waited for: it
// observes context cancellation and winds down on its own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.parent = nil
}

// SetInterval reconfigures the tick period. On an active scheduler the old
// timer is canceled and a new one started under the lock, so two timers are
// never concurrently active.
func (s *Scheduler) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d
	if s.cancel == nil {
		return
	}
	s.stopLocked()
	s.startLocked()
}

// RefreshNow triggers one cycle immediately, bypassing the trading-hours
// predicate, and waits for it to finish. It coalesces with any cycle already
// in flight.
func (s *Scheduler) RefreshNow(ctx context.Context) {
	_, _, _ = s.sf.Do("refresh", func() (any, error) {
		s.run(ctx)
		return nil, nil
	})
}

func (s *Scheduler) startLocked() {
	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.interval, s.done)
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !s.predicate(now) {
				s.logger.Debug("outside trading hours, skipping refresh")
				continue
			}
			// Fire and do not wait: a slow cycle must not delay teardown,
			// and the next tick joins it via singleflight instead of
			// stacking a second cycle.
			s.sf.DoChan("refresh", func() (any, error) {
				s.run(ctx)
				return nil, nil
			})
		}
	}
}
