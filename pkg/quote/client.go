package quote

import (
	"context"
	"regexp"
	"strings"
)

// Quoter looks up the latest traded price for a symbol.
type Quoter interface {
	Quote(ctx context.Context, symbol string) (float64, error)
	Name() string
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,11}$`)

// NormalizeTicker turns what a model wrote after "Ticker:" into a symbol a
// quote API understands, or "" when it does not look like one.
//
//	"NASDAQ:AAPL"        -> "AAPL"
//	"aapl (Apple Inc.)"  -> "AAPL"
//	"Not visible"        -> ""
func NormalizeTicker(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}

	symbol := fields[0]
	if i := strings.LastIndex(symbol, ":"); i >= 0 {
		symbol = symbol[i+1:]
	}
	symbol = strings.ToUpper(strings.Trim(symbol, ".,;()[]\"'"))

	switch symbol {
	case "N/A", "NA", "NONE", "NOT", "UNKNOWN":
		return ""
	}
	if !symbolPattern.MatchString(symbol) {
		return ""
	}
	return symbol
}
