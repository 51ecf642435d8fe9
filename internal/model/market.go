package model

import (
	"github.com/shopspring/decimal"
)

// Intraday holds backend-computed intraday indicators. The client never
// computes indicators, only formats them.
type Intraday struct {
	EMA20 *decimal.Decimal `json:"ema20,omitempty"`
	RSI14 *float64         `json:"rsi14,omitempty"`
}

// MarketData is the market snapshot for a single asset, keyed by asset
// symbol in BotState.MarketData
type MarketData struct {
	Asset        string           `json:"asset"`
	CurrentPrice decimal.Decimal  `json:"current_price"`
	Change24h    *decimal.Decimal `json:"change_24h,omitempty"`
	Volume24h    *decimal.Decimal `json:"volume_24h,omitempty"`
	FundingRate  *decimal.Decimal `json:"funding_rate,omitempty"`
	OpenInterest *decimal.Decimal `json:"open_interest,omitempty"`
	Intraday     *Intraday        `json:"intraday,omitempty"`
}
