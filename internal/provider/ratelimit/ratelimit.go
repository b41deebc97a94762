package ratelimit

import (
	"context"
	"sync"
	"time"

	"stockwatch/internal/provider"
	"stockwatch/internal/quote"
	"stockwatch/internal/symbol"
)

// MinInterval wraps a Fetcher and enforces a minimum time between upstream
// calls, guarding the quote host against manual-refresh spam when the
// configured interval is shorter than the scheduler tick. Concurrent calls
// wait until the interval has elapsed since the last call, or return early
// when the context is canceled.
type MinInterval struct {
	F        provider.Fetcher
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func (m *MinInterval) Name() string { return m.F.Name() }

func (m *MinInterval) Fetch(ctx context.Context, codes []symbol.Code) (map[string]quote.Quote, error) {
	if m.Interval > 0 {
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return map[string]quote.Quote{}, ctx.Err()
			case <-t.C:
			}
		}
	}
	qs, err := m.F.Fetch(ctx, codes)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return qs, err
}
