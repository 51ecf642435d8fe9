package model

import (
	"github.com/shopspring/decimal"
)

// Trading mode constants
const (
	TradingModeManual = "manual"
	TradingModeAuto   = "auto"
)

// Settings is the bot's single mutable configuration document. Edited via
// a local draft in the UI layer and committed atomically; the committed
// server copy is authoritative.
type Settings struct {
	Assets             []string         `json:"assets" validate:"required,min=1,dive,required"`
	Interval           string           `json:"interval" validate:"required,oneof=1m 5m 15m 30m 1h 4h 1d"`
	TradingMode        string           `json:"trading_mode" validate:"required,oneof=manual auto"`
	MaxPositionSize    *decimal.Decimal `json:"max_position_size,omitempty"`
	AutoTradeEnabled   bool             `json:"auto_trade_enabled"`
	AutoTradeThreshold float64          `json:"auto_trade_threshold,omitempty" validate:"gte=0,lte=100"`
}

// SettingsPatch is a partial Settings update. Nil fields are left
// untouched by the backend (partial-merge semantics are server-side).
type SettingsPatch struct {
	Assets             []string         `json:"assets,omitempty" validate:"omitempty,min=1,dive,required"`
	Interval           *string          `json:"interval,omitempty" validate:"omitempty,oneof=1m 5m 15m 30m 1h 4h 1d"`
	TradingMode        *string          `json:"trading_mode,omitempty" validate:"omitempty,oneof=manual auto"`
	MaxPositionSize    *decimal.Decimal `json:"max_position_size,omitempty"`
	AutoTradeEnabled   *bool            `json:"auto_trade_enabled,omitempty"`
	AutoTradeThreshold *float64         `json:"auto_trade_threshold,omitempty" validate:"omitempty,gte=0,lte=100"`
}
