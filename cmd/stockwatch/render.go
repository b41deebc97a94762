package main

import (
	"fmt"
	"strings"

	"stockwatch/internal/aggregate"
	"stockwatch/internal/quote"
)

// renderSnapshot formats one board snapshot as a compact terminal block, one
// quote per line. maxDisplay caps the number of lines; zero means no cap.
func renderSnapshot(s aggregate.Snapshot, maxDisplay int) string {
	quotes := s.Quotes
	if maxDisplay > 0 && len(quotes) > maxDisplay {
		quotes = quotes[:maxDisplay]
	}

	var b strings.Builder
	for _, q := range quotes {
		fmt.Fprintln(&b, renderQuote(q))
	}
	if s.Failed > 0 {
		fmt.Fprintf(&b, "%d unavailable\n", s.Failed)
	}
	if !s.FetchedAt.IsZero() {
		fmt.Fprintf(&b, "as of %s\n", s.FetchedAt.Format("15:04:05"))
	}
	return b.String()
}

func renderQuote(q quote.Quote) string {
	arrow := "↓"
	sign := ""
	if q.IsUp {
		arrow = "↑"
		sign = "+"
	}
	return fmt.Sprintf("%s %s(%s) %s %s%s %s%s%%",
		arrow, q.Name, q.FullCode, q.Current, sign, q.Change, sign, q.ChangePercent)
}
