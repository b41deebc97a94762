// Package search resolves free-text keywords (typically Chinese company
// names) to canonical A-share codes. It is consulted only after
// symbol.Normalize has rejected the input.
package search

import (
	"context"
	"errors"

	"stockwatch/internal/symbol"
)

// ErrNotFound is returned when no provider can resolve the keyword. Callers
// surface a single generic outcome; the providers stay independent so one
// failing never blocks the next attempt.
var ErrNotFound = errors.New("search: symbol not found")

// Searcher resolves a keyword to a canonical code.
type Searcher interface {
	Name() string
	Search(ctx context.Context, keyword string) (symbol.Code, error)
}

// Chain tries providers in order and returns the first hit. Provider calls
// are sequential: the fallback is only worth attempting once the primary has
// definitively failed, so there is no benefit to racing them.
type Chain struct {
	providers []Searcher
}

func NewChain(providers ...Searcher) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Search(ctx context.Context, keyword string) (symbol.Code, error) {
	for _, p := range c.providers {
		code, err := p.Search(ctx, keyword)
		if err == nil {
			return code, nil
		}
		if ctx.Err() != nil {
			return symbol.Code{}, ctx.Err()
		}
	}
	return symbol.Code{}, ErrNotFound
}
