// Package stubbot is an in-memory stand-in for the real trading backend.
// It serves the same REST surface and push events over /ws, driven by a
// simulated market, so the dashboard can run and be tested without the
// production bot.
package stubbot

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"nof1/dashboard/internal/model"
	"nof1/dashboard/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var basePrices = map[string]float64{
	"BTC": 65000,
	"ETH": 3400,
	"SOL": 150,
}

// Bot holds the simulated trading state behind the stub API
type Bot struct {
	mu        sync.Mutex
	state     model.BotState
	settings  model.Settings
	trades    []model.Trade
	proposals []model.Proposal
	rng       *rand.Rand
	ticks     int
	broadcast func(model.Event)
	log       *logger.Logger
}

// NewBot seeds a stopped bot with market data for the given assets
func NewBot(assets []string, interval string, log *logger.Logger) *Bot {
	if len(assets) == 0 {
		assets = []string{"BTC", "ETH"}
	}
	if interval == "" {
		interval = "1h"
	}
	if log == nil {
		log = logger.GetLogger()
	}

	b := &Bot{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		settings: model.Settings{
			Assets:             assets,
			Interval:           interval,
			TradingMode:        model.TradingModeManual,
			AutoTradeEnabled:   false,
			AutoTradeThreshold: 75,
		},
		log: log,
	}
	b.state = model.BotState{
		Balance:    decimal.NewFromInt(10000),
		TotalValue: decimal.NewFromInt(10000),
		MarketData: map[string]model.MarketData{},
		LastUpdate: now(),
	}
	for _, asset := range assets {
		b.state.MarketData[asset] = b.seedMarket(asset)
	}
	return b
}

// SetBroadcast wires the push hub. Must be called before the ticker runs.
func (b *Bot) SetBroadcast(fn func(model.Event)) {
	b.mu.Lock()
	b.broadcast = fn
	b.mu.Unlock()
}

func (b *Bot) emit(eventType model.EventType, payload interface{}) {
	if b.broadcast == nil {
		return
	}
	ev := model.Event{Type: eventType, Timestamp: now()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			b.log.Error("stubbot: failed to marshal event payload", err)
			return
		}
		ev.Data = data
	}
	b.broadcast(ev)
}

// Status returns a copy of the current bot state
func (b *Bot) Status() model.BotState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Clone()
}

// Start flips the bot to running, adopting the requested assets and
// interval when provided
func (b *Bot) Start(assets []string, interval string) {
	b.mu.Lock()
	if len(assets) > 0 {
		b.settings.Assets = assets
		for _, asset := range assets {
			if _, ok := b.state.MarketData[asset]; !ok {
				b.state.MarketData[asset] = b.seedMarket(asset)
			}
		}
	}
	if interval != "" {
		b.settings.Interval = interval
	}
	b.state.IsRunning = true
	b.state.Error = ""
	b.state.LastUpdate = now()
	running := b.state.IsRunning
	b.mu.Unlock()

	b.emit(model.EventBotStarted, nil)
	b.emit(model.EventStateUpdate, model.BotStateDelta{IsRunning: &running})
}

// Stop halts the simulation
func (b *Bot) Stop() {
	b.mu.Lock()
	b.state.IsRunning = false
	b.state.LastUpdate = now()
	running := b.state.IsRunning
	b.mu.Unlock()

	b.emit(model.EventBotStopped, nil)
	b.emit(model.EventStateUpdate, model.BotStateDelta{IsRunning: &running})
}

// Positions returns a copy of the open positions
func (b *Bot) Positions() []model.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Position(nil), b.state.Positions...)
}

// ClosePosition closes the position for an asset at the current market
// price. Returns false when no such position is open.
func (b *Bot) ClosePosition(asset string) bool {
	b.mu.Lock()
	idx := -1
	for i, p := range b.state.Positions {
		if p.Symbol == asset {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		return false
	}

	pos := b.state.Positions[idx]
	b.state.Positions = append(b.state.Positions[:idx], b.state.Positions[idx+1:]...)
	b.state.Balance = b.state.Balance.Add(pos.UnrealizedPnL)

	action := model.ActionSell
	if pos.Quantity.Sign() < 0 {
		action = model.ActionBuy
	}
	trade := model.Trade{
		ID:        uuid.NewString(),
		Asset:     asset,
		Action:    action,
		Amount:    pos.Quantity.Abs(),
		Price:     pos.CurrentPrice,
		Timestamp: now(),
	}
	b.trades = append([]model.Trade{trade}, b.trades...)
	b.recomputeTotals()
	delta := b.snapshotDelta()
	b.mu.Unlock()

	b.emit(model.EventPositionClosed, pos)
	b.emit(model.EventTradeExecuted, trade)
	b.emit(model.EventStateUpdate, delta)
	return true
}

// Trades returns one page of trade history, newest first
func (b *Bot) Trades(limit, offset int, asset, action string) []model.Trade {
	b.mu.Lock()
	defer b.mu.Unlock()

	filtered := make([]model.Trade, 0, len(b.trades))
	for _, t := range b.trades {
		if asset != "" && t.Asset != asset {
			continue
		}
		if action != "" && t.Action != action {
			continue
		}
		filtered = append(filtered, t)
	}

	if offset >= len(filtered) {
		return []model.Trade{}
	}
	end := offset + limit
	if limit <= 0 || end > len(filtered) {
		end = len(filtered)
	}
	return append([]model.Trade(nil), filtered[offset:end]...)
}

// Settings returns a copy of the settings document
func (b *Bot) Settings() model.Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	cfg := b.settings
	cfg.Assets = append([]string(nil), b.settings.Assets...)
	return cfg
}

// UpdateSettings merges a partial update into the settings document
func (b *Bot) UpdateSettings(patch model.SettingsPatch) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if patch.Assets != nil {
		b.settings.Assets = append([]string(nil), patch.Assets...)
	}
	if patch.Interval != nil {
		b.settings.Interval = *patch.Interval
	}
	if patch.TradingMode != nil {
		b.settings.TradingMode = *patch.TradingMode
	}
	if patch.MaxPositionSize != nil {
		size := *patch.MaxPositionSize
		b.settings.MaxPositionSize = &size
	}
	if patch.AutoTradeEnabled != nil {
		b.settings.AutoTradeEnabled = *patch.AutoTradeEnabled
	}
	if patch.AutoTradeThreshold != nil {
		b.settings.AutoTradeThreshold = *patch.AutoTradeThreshold
	}
}

// Proposals returns the pending proposals
func (b *Bot) Proposals() []model.Proposal {
	b.mu.Lock()
	defer b.mu.Unlock()

	pending := make([]model.Proposal, 0, len(b.proposals))
	for _, p := range b.proposals {
		if p.IsPending() {
			pending = append(pending, p)
		}
	}
	return pending
}

// Approve executes a pending proposal: opens a position at the entry
// price and records the trade. Returns false when the proposal is not
// pending or the bot is stopped.
func (b *Bot) Approve(id string) bool {
	b.mu.Lock()
	p := b.findPending(id)
	if p == nil || !b.state.IsRunning {
		b.mu.Unlock()
		return false
	}
	p.Status = model.ProposalStatusExecuted

	qty := decimal.Zero
	if !p.EntryPrice.IsZero() {
		qty = p.Amount.Div(p.EntryPrice)
	}
	if p.Action == model.ActionSell {
		qty = qty.Neg()
	}
	pos := model.Position{
		Symbol:       p.Asset,
		Quantity:     qty,
		EntryPrice:   p.EntryPrice,
		CurrentPrice: p.EntryPrice,
		Leverage:     decimal.NewFromInt(1),
	}
	b.state.Positions = append(b.state.Positions, pos)

	trade := model.Trade{
		ID:        uuid.NewString(),
		Asset:     p.Asset,
		Action:    p.Action,
		Amount:    qty.Abs(),
		Price:     p.EntryPrice,
		Timestamp: now(),
	}
	b.trades = append([]model.Trade{trade}, b.trades...)
	b.recomputeTotals()
	delta := b.snapshotDelta()
	b.mu.Unlock()

	b.emit(model.EventPositionOpened, pos)
	b.emit(model.EventTradeExecuted, trade)
	b.emit(model.EventStateUpdate, delta)
	return true
}

// Reject discards a pending proposal. Returns false when it is not
// pending or the bot is stopped.
func (b *Bot) Reject(id, reason string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.findPending(id)
	if p == nil || !b.state.IsRunning {
		return false
	}
	p.Status = model.ProposalStatusRejected
	b.log.Infof("stubbot: proposal %s rejected: %s", id, reason)
	return true
}

// RefreshMarket re-rolls market data immediately and pushes the update
func (b *Bot) RefreshMarket() {
	b.mu.Lock()
	b.jiggleMarket()
	b.state.LastUpdate = now()
	payload := model.MarketDataPayload{MarketData: b.cloneMarket()}
	b.mu.Unlock()

	b.emit(model.EventMarketDataUpdate, payload)
}

func (b *Bot) findPending(id string) *model.Proposal {
	for i := range b.proposals {
		if b.proposals[i].ID == id && b.proposals[i].IsPending() {
			return &b.proposals[i]
		}
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
