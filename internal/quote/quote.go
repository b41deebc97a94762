// Package quote defines the quote snapshot model and the parser for the
// upstream per-symbol field strings.
package quote

import (
	"math"
	"strconv"
	"strings"

	"stockwatch/internal/symbol"
)

// Quote is one point-in-time snapshot for one symbol. Price fields are kept
// as display-formatted strings; ChangePercent is computed from the raw floats
// before any display truncation.
type Quote struct {
	Name          string `json:"name"`
	Code          string `json:"code"`      // six digits, prefix stripped
	FullCode      string `json:"full_code"` // canonical form, join key
	Market        string `json:"market"`
	Current       string `json:"current"`
	Change        string `json:"change"`
	ChangePercent string `json:"change_percent"`
	IsUp          bool   `json:"is_up"`
	IsETF         bool   `json:"is_etf"`
}

// Parse converts one raw upstream field string into a Quote.
// Field order: 0=name, 2=previousClose, 3=current. Rejections (empty name,
// fewer than 4 fields, non-finite prices, previousClose <= 0) return
// ok=false; partial or placeholder upstream data is routine, not an error.
func Parse(code symbol.Code, raw string) (Quote, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) < 4 {
		return Quote{}, false
	}

	name := strings.TrimSpace(parts[0])
	prevClose, err1 := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	current, err2 := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if name == "" || err1 != nil || err2 != nil {
		return Quote{}, false
	}
	if !isFinite(prevClose) || !isFinite(current) || prevClose <= 0 || current < 0 {
		return Quote{}, false
	}

	change := current - prevClose
	// Percent from raw floats, formatted last.
	pct := change / prevClose * 100

	etf := classifyETF(name, current)
	places := 2
	if etf {
		places = 3
	}

	return Quote{
		Name:          name,
		Code:          code.Number(),
		FullCode:      code.String(),
		Market:        code.Market(),
		Current:       strconv.FormatFloat(current, 'f', places, 64),
		Change:        strconv.FormatFloat(change, 'f', places, 64),
		ChangePercent: strconv.FormatFloat(pct, 'f', 2, 64),
		IsUp:          change >= 0,
		IsETF:         etf,
	}, true
}

// classifyETF is a name/price heuristic, not authoritative instrument
// metadata: ETFs trade at low prices and carry fund/index words in the name.
func classifyETF(name string, current float64) bool {
	if strings.Contains(name, "ETF") {
		return true
	}
	return current < 5 && (strings.Contains(name, "基金") || strings.Contains(name, "指数"))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
