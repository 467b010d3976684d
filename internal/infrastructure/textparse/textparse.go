// Package textparse extracts numeric fields from scraped price text.
// Source pages hand back currency-formatted strings ("9,800,000円",
// "¥1,234.56", "$123.45"); everything here is pure and returns
// model.ErrParseFailure wraps instead of panicking on garbage.
package textparse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"assetwatch/internal/domain/model"
)

var (
	numberPattern  = regexp.MustCompile(`[-+]?[0-9]+(?:,[0-9]{3})*(?:\.[0-9]+)?`)
	percentPattern = regexp.MustCompile(`[-+]?[0-9]+(?:\.[0-9]+)?\s*[%％]`)
)

// Price extracts the first currency-formatted number from s and returns it
// with thousands separators and currency symbols stripped.
func Price(s string) (decimal.Decimal, error) {
	m := numberPattern.FindString(s)
	if m == "" {
		return decimal.Zero, fmt.Errorf("%w: no numeric field in %q", model.ErrParseFailure, Clip(s, 120))
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad number %q in %q", model.ErrParseFailure, m, Clip(s, 120))
	}
	return d, nil
}

// Percent extracts a signed percentage delta ("+1.52%", "-0.3％") as a
// decimal number of percent points.
func Percent(s string) (decimal.Decimal, error) {
	m := percentPattern.FindString(s)
	if m == "" {
		return decimal.Zero, fmt.Errorf("%w: no percent field in %q", model.ErrParseFailure, Clip(s, 120))
	}
	m = strings.TrimRight(m, "%％")
	m = strings.TrimSpace(m)
	d, err := decimal.NewFromString(strings.TrimPrefix(m, "+"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad percent %q in %q", model.ErrParseFailure, m, Clip(s, 120))
	}
	return d, nil
}

// Clip bounds raw scraped text before it lands in an error or a log line.
func Clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
