package model

import (
	"github.com/shopspring/decimal"
)

// Trade action constants
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
	ActionHold = "hold"
)

// Trade is an immutable historical record. Append-only from the client's
// perspective; fetched as a page (limit, offset), newest first. The ID is
// synthesized client-side when the backend omits it.
type Trade struct {
	ID        string          `json:"id,omitempty"`
	Asset     string          `json:"asset"`
	Action    string          `json:"action"`
	Amount    decimal.Decimal `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	Timestamp string          `json:"timestamp"`
}

// IsExecuted reports whether the trade moved the book. Hold decisions are
// recorded in history but never executed.
func (t Trade) IsExecuted() bool {
	return t.Action == ActionBuy || t.Action == ActionSell
}
