package model

import (
	"github.com/shopspring/decimal"
)

// Position side constants
const (
	SideLong  = "long"
	SideShort = "short"
	SideFlat  = "flat"
)

// Position represents an open position. Symbol is the unique key within
// BotState.Positions. Quantity is signed: positive = long, negative = short.
type Position struct {
	Symbol           string           `json:"symbol"`
	Quantity         decimal.Decimal  `json:"quantity"`
	EntryPrice       decimal.Decimal  `json:"entry_price"`
	CurrentPrice     decimal.Decimal  `json:"current_price"`
	LiquidationPrice *decimal.Decimal `json:"liquidation_price,omitempty"`
	UnrealizedPnL    decimal.Decimal  `json:"unrealized_pnl"`
	Leverage         decimal.Decimal  `json:"leverage"`
}

// Side derives the position side from the sign of the quantity
func (p Position) Side() string {
	switch p.Quantity.Sign() {
	case 1:
		return SideLong
	case -1:
		return SideShort
	default:
		return SideFlat
	}
}

// PnLPercent derives the unrealized PnL as a percentage of the entry
// notional: unrealized_pnl / (entry_price * |quantity|) * 100.
// Returns zero when the notional is zero.
func (p Position) PnLPercent() decimal.Decimal {
	notional := p.EntryPrice.Mul(p.Quantity.Abs())
	if notional.IsZero() {
		return decimal.Zero
	}
	return p.UnrealizedPnL.Div(notional).Mul(decimal.NewFromInt(100))
}
