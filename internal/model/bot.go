package model

import (
	"github.com/shopspring/decimal"
)

// BotState is the authoritative snapshot of the trading bot's runtime
// condition held client-side. At most one BotState is live in the store
// at a time; partial updates are shallow-merged via BotStateDelta.
type BotState struct {
	IsRunning       bool                  `json:"is_running"`
	Balance         decimal.Decimal       `json:"balance"`
	TotalValue      decimal.Decimal       `json:"total_value"`
	TotalReturnPct  decimal.Decimal       `json:"total_return_pct"`
	SharpeRatio     decimal.Decimal       `json:"sharpe_ratio"`
	Positions       []Position            `json:"positions"`
	MarketData      map[string]MarketData `json:"market_data"`
	Error           string                `json:"error,omitempty"`
	InvocationCount int                   `json:"invocation_count"`
	LastUpdate      string                `json:"last_update"`
}

// BotStateDelta is a partial BotState. Nil fields are unspecified and
// keep their previous value when merged; set fields win (field-level
// last-write-wins, call order decides).
type BotStateDelta struct {
	IsRunning       *bool                 `json:"is_running,omitempty"`
	Balance         *decimal.Decimal      `json:"balance,omitempty"`
	TotalValue      *decimal.Decimal      `json:"total_value,omitempty"`
	TotalReturnPct  *decimal.Decimal      `json:"total_return_pct,omitempty"`
	SharpeRatio     *decimal.Decimal      `json:"sharpe_ratio,omitempty"`
	Positions       []Position            `json:"positions,omitempty"`
	MarketData      map[string]MarketData `json:"market_data,omitempty"`
	Error           *string               `json:"error,omitempty"`
	InvocationCount *int                  `json:"invocation_count,omitempty"`
	LastUpdate      *string               `json:"last_update,omitempty"`
}

// Apply shallow-merges a delta into the state and returns the result.
// The merge is per top-level field, not per whole object, and is
// idempotent: applying the same delta twice equals applying it once.
//
// MarketData is merged per asset key: assets present in the delta
// overwrite (each MarketData value replaces wholesale, no deep merge),
// assets absent from the delta are preserved. Positions replace the
// whole slice when specified.
func (s BotState) Apply(d BotStateDelta) BotState {
	if d.IsRunning != nil {
		s.IsRunning = *d.IsRunning
	}
	if d.Balance != nil {
		s.Balance = *d.Balance
	}
	if d.TotalValue != nil {
		s.TotalValue = *d.TotalValue
	}
	if d.TotalReturnPct != nil {
		s.TotalReturnPct = *d.TotalReturnPct
	}
	if d.SharpeRatio != nil {
		s.SharpeRatio = *d.SharpeRatio
	}
	if d.Positions != nil {
		s.Positions = append([]Position(nil), d.Positions...)
	}
	if d.MarketData != nil {
		merged := make(map[string]MarketData, len(s.MarketData)+len(d.MarketData))
		for asset, md := range s.MarketData {
			merged[asset] = md
		}
		for asset, md := range d.MarketData {
			merged[asset] = md
		}
		s.MarketData = merged
	}
	if d.Error != nil {
		s.Error = *d.Error
	}
	if d.InvocationCount != nil {
		s.InvocationCount = *d.InvocationCount
	}
	if d.LastUpdate != nil {
		s.LastUpdate = *d.LastUpdate
	}
	return s
}

// Clone returns a deep copy safe to hand out to readers
func (s BotState) Clone() BotState {
	out := s
	out.Positions = append([]Position(nil), s.Positions...)
	if s.MarketData != nil {
		out.MarketData = make(map[string]MarketData, len(s.MarketData))
		for asset, md := range s.MarketData {
			out.MarketData[asset] = md
		}
	}
	return out
}
