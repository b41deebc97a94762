package provider

import (
	"context"

	"stockwatch/internal/quote"
	"stockwatch/internal/symbol"
)

// Fetcher is the batched quote source. One call covers the whole code list;
// the result maps lowercase canonical codes to parsed quotes. A code missing
// from the map failed to parse or was not returned upstream; callers count
// those without discarding the successes.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, codes []symbol.Code) (map[string]quote.Quote, error)
}
