// Package manager implements the watch-list operations: resolving arbitrary
// user input to a canonical code and adding, removing or listing entries.
package manager

import (
	"context"
	"errors"
	"fmt"

	"stockwatch/internal/provider"
	"stockwatch/internal/quote"
	"stockwatch/internal/search"
	"stockwatch/internal/symbol"
	"stockwatch/internal/watchlist"
)

// ErrNotFound is returned when input is neither a recognizable code nor a
// searchable name. The caller gets one generic outcome; distinguishing "no
// such symbol" from "network down" is deliberately not attempted.
var ErrNotFound = errors.New("manager: symbol not found")

var ErrDuplicate = watchlist.ErrDuplicate

type Manager struct {
	Store    *watchlist.Store
	Fetcher  provider.Fetcher
	Searcher search.Searcher
}

// Resolve maps raw input to a canonical code: direct normalization first,
// name search only when the input is not a code at all.
func (m *Manager) Resolve(ctx context.Context, input string) (symbol.Code, error) {
	if code, ok := symbol.Normalize(input); ok {
		return code, nil
	}
	code, err := m.Searcher.Search(ctx, input)
	if err != nil {
		return symbol.Code{}, fmt.Errorf("%w: %q", ErrNotFound, input)
	}
	return code, nil
}

// Add resolves input, verifies the symbol actually returns a quote, then
// appends it to the watch-list. The verification quote is returned so the
// caller can confirm with the resolved name.
func (m *Manager) Add(ctx context.Context, input string) (quote.Quote, error) {
	code, err := m.Resolve(ctx, input)
	if err != nil {
		return quote.Quote{}, err
	}

	fetched, err := m.Fetcher.Fetch(ctx, []symbol.Code{code})
	if err != nil {
		return quote.Quote{}, fmt.Errorf("manager: verify %s: %w", code, err)
	}
	q, ok := fetched[code.String()]
	if !ok || q.Name == "" {
		return quote.Quote{}, fmt.Errorf("%w: %q", ErrNotFound, input)
	}

	if err := m.Store.Add(code); err != nil {
		return quote.Quote{}, err
	}
	return q, nil
}

// Remove resolves input (codes only, no search round-trip for removal) and
// deletes it from the watch-list.
func (m *Manager) Remove(ctx context.Context, input string) (bool, error) {
	code, ok := symbol.Normalize(input)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrNotFound, input)
	}
	return m.Store.Remove(code)
}
