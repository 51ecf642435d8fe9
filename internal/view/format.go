// Package view holds the pure formatting rules the presentation layer
// applies to store snapshots. Nothing here owns state or talks to the
// network.
package view

import (
	"fmt"

	"nof1/dashboard/internal/model"

	"github.com/shopspring/decimal"
)

// RSI classification labels
const (
	RSIOverbought = "overbought"
	RSIOversold   = "oversold"
	RSINeutral    = "neutral"
)

// Confidence renders a proposal confidence as a whole percentage. The
// backend sends either a 0-1 fraction or a 0-100 percentage; values at
// or below 1 are scaled, so 0.82 and 82 both render "82%".
func Confidence(value float64) string {
	if value <= 1 {
		value *= 100
	}
	return fmt.Sprintf("%.0f%%", value)
}

// PnLPercent renders a signed percentage with two decimals, e.g. "+3.52%"
func PnLPercent(pct decimal.Decimal) string {
	if pct.Sign() >= 0 {
		return "+" + pct.StringFixed(2) + "%"
	}
	return pct.StringFixed(2) + "%"
}

// Money renders a monetary value with two decimals
func Money(v decimal.Decimal) string {
	return "$" + v.StringFixed(2)
}

// RSILabel classifies an RSI reading for styling. Presentation only;
// the threshold is not a stored fact.
func RSILabel(rsi float64) string {
	switch {
	case rsi > 70:
		return RSIOverbought
	case rsi < 30:
		return RSIOversold
	default:
		return RSINeutral
	}
}

// ExecutedCount counts trades that moved the book, excluding hold
// decisions recorded in history
func ExecutedCount(trades []model.Trade) int {
	n := 0
	for _, t := range trades {
		if t.IsExecuted() {
			n++
		}
	}
	return n
}

// ConnLabel renders the connectivity indicator for the push channel
func ConnLabel(connected bool) string {
	if connected {
		return "live"
	}
	return "offline"
}

// RunLabel renders the bot run state
func RunLabel(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}
