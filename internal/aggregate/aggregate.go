// Package aggregate holds the latest refresh-cycle result and fans it out to
// presentation subscribers.
package aggregate

import (
	"sync"
	"time"

	"stockwatch/internal/quote"
	"stockwatch/internal/symbol"
)

// Snapshot is the outcome of one complete refresh cycle over the watch-list.
// Quotes keep watch-list order; Failed counts requested codes that produced
// no usable quote this cycle.
type Snapshot struct {
	Quotes    []quote.Quote `json:"quotes"`
	Failed    int           `json:"failed"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Board owns the latest Snapshot. Each successful cycle replaces the whole
// snapshot in one swap; consumers never observe a partially updated set.
type Board struct {
	mu       sync.RWMutex
	snapshot Snapshot
	handlers []func(Snapshot)
}

func NewBoard() *Board {
	return &Board{}
}

// Update assembles a snapshot from a fetch result, preserving the requested
// order, swaps it in atomically and notifies subscribers. Codes absent from
// the result are counted as failures without blocking the successes.
func (b *Board) Update(requested []symbol.Code, fetched map[string]quote.Quote, at time.Time) Snapshot {
	quotes := make([]quote.Quote, 0, len(requested))
	failed := 0
	for _, code := range requested {
		q, ok := fetched[code.String()]
		if !ok {
			failed++
			continue
		}
		quotes = append(quotes, q)
	}
	snap := Snapshot{Quotes: quotes, Failed: failed, FetchedAt: at}

	b.mu.Lock()
	b.snapshot = snap
	handlers := append([]func(Snapshot){}, b.handlers...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(snap)
	}
	return snap
}

// Latest returns the most recent snapshot. The zero Snapshot is returned
// before the first successful cycle.
func (b *Board) Latest() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot
}

// OnRefresh registers a handler invoked after every snapshot swap. Handlers
// run synchronously on the refreshing goroutine and should return quickly.
func (b *Board) OnRefresh(h func(Snapshot)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}
