// Package moneypkg provides arithmetic and formatting for integer currency amounts.
package moneypkg

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidPercent indicates a percentage outside of [0, 100].
var ErrInvalidPercent = errors.New("percent must be between 0 and 100")

var hundred = decimal.NewFromInt(100)

// ParsePercent parses a percentage such as "25" or "12.5".
func ParsePercent(s string) (decimal.Decimal, error) {
	pct, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}

	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return decimal.Zero, ErrInvalidPercent
	}

	return pct, nil
}

// Percent returns pct percent of amount rounded down to whole units.
func Percent(amount int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(pct).Div(hundred).Floor().IntPart()
}

// Split divides amount into a pct share and the remainder, so the two always add back to amount.
func Split(amount int64, pct decimal.Decimal) (share, rest int64) {
	share = Percent(amount, pct)
	return share, amount - share
}

// Format renders an amount with thousands separators, e.g. 1250000 as "1,250,000".
func Format(amount int64) string {
	s := decimal.NewFromInt(amount).Abs().String()

	var sb strings.Builder
	if amount < 0 {
		sb.WriteByte('-')
	}

	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(c)
	}

	return sb.String()
}
