package stubbot

import (
	"context"
	"fmt"
	"time"

	"nof1/dashboard/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunTicker drives the market simulation until ctx is cancelled
func (b *Bot) RunTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Tick()
		}
	}
}

// Tick advances the simulation one step: random-walk prices, mark open
// positions, occasionally mint a proposal. No-op while the bot is
// stopped.
func (b *Bot) Tick() {
	b.mu.Lock()
	if !b.state.IsRunning {
		b.mu.Unlock()
		return
	}
	b.ticks++
	b.jiggleMarket()
	b.markPositions()
	b.recomputeTotals()
	b.state.InvocationCount++
	b.state.LastUpdate = now()

	marketPayload := model.MarketDataPayload{MarketData: b.cloneMarket()}
	stateDelta := b.snapshotDelta()

	var created *model.Proposal
	if b.ticks%5 == 0 && len(b.pendingLocked()) == 0 {
		p := b.mintProposal()
		b.proposals = append(b.proposals, p)
		created = &p
	}
	b.mu.Unlock()

	b.emit(model.EventMarketDataUpdate, marketPayload)
	b.emit(model.EventStateUpdate, stateDelta)
	if created != nil {
		b.emit(model.EventProposalCreated, *created)
	}
}

// seedMarket builds the initial market snapshot for an asset
func (b *Bot) seedMarket(asset string) model.MarketData {
	base, ok := basePrices[asset]
	if !ok {
		base = 100
	}
	price := decimal.NewFromFloat(base)
	change := decimal.NewFromFloat(0)
	volume := decimal.NewFromFloat(base * 1e4)
	funding := decimal.NewFromFloat(0.0001)
	rsi := 50.0
	ema := price
	return model.MarketData{
		Asset:        asset,
		CurrentPrice: price,
		Change24h:    &change,
		Volume24h:    &volume,
		FundingRate:  &funding,
		Intraday:     &model.Intraday{EMA20: &ema, RSI14: &rsi},
	}
}

// jiggleMarket applies a small random walk to every tracked asset.
// Caller holds the lock.
func (b *Bot) jiggleMarket() {
	for asset, md := range b.state.MarketData {
		drift := decimal.NewFromFloat(1 + (b.rng.Float64()-0.5)*0.01)
		md.CurrentPrice = md.CurrentPrice.Mul(drift).Round(2)

		change := decimal.NewFromFloat((b.rng.Float64() - 0.5) * 8).Round(2)
		md.Change24h = &change

		rsi := 30 + b.rng.Float64()*50
		ema := md.CurrentPrice.Mul(decimal.NewFromFloat(0.995)).Round(2)
		md.Intraday = &model.Intraday{EMA20: &ema, RSI14: &rsi}

		b.state.MarketData[asset] = md
	}
}

// markPositions revalues open positions against current prices.
// Caller holds the lock.
func (b *Bot) markPositions() {
	for i, pos := range b.state.Positions {
		md, ok := b.state.MarketData[pos.Symbol]
		if !ok {
			continue
		}
		pos.CurrentPrice = md.CurrentPrice
		pos.UnrealizedPnL = md.CurrentPrice.Sub(pos.EntryPrice).Mul(pos.Quantity).Round(2)
		b.state.Positions[i] = pos
	}
}

// recomputeTotals refreshes the derived balance figures.
// Caller holds the lock.
func (b *Bot) recomputeTotals() {
	total := b.state.Balance
	for _, pos := range b.state.Positions {
		total = total.Add(pos.UnrealizedPnL)
	}
	b.state.TotalValue = total.Round(2)

	initial := decimal.NewFromInt(10000)
	b.state.TotalReturnPct = total.Sub(initial).Div(initial).Mul(decimal.NewFromInt(100)).Round(2)
}

// mintProposal fabricates an AI proposal for a random tracked asset.
// Caller holds the lock.
func (b *Bot) mintProposal() model.Proposal {
	assets := b.settings.Assets
	asset := assets[b.rng.Intn(len(assets))]
	md := b.state.MarketData[asset]

	action := model.ActionBuy
	if b.rng.Float64() < 0.4 {
		action = model.ActionSell
	}
	entry := md.CurrentPrice
	tp := entry.Mul(decimal.NewFromFloat(1.03)).Round(2)
	sl := entry.Mul(decimal.NewFromFloat(0.98)).Round(2)
	if action == model.ActionSell {
		tp = entry.Mul(decimal.NewFromFloat(0.97)).Round(2)
		sl = entry.Mul(decimal.NewFromFloat(1.02)).Round(2)
	}

	return model.Proposal{
		ID:         uuid.NewString(),
		Asset:      asset,
		Action:     action,
		Confidence: 50 + b.rng.Float64()*45,
		EntryPrice: entry,
		Amount:     decimal.NewFromInt(500),
		TPPrice:    &tp,
		SLPrice:    &sl,
		Rationale:  fmt.Sprintf("Simulated %s signal for %s near %s", action, asset, entry),
		Status:     model.ProposalStatusPending,
		Timestamp:  now(),
	}
}

// pendingLocked lists pending proposals. Caller holds the lock.
func (b *Bot) pendingLocked() []model.Proposal {
	pending := make([]model.Proposal, 0, len(b.proposals))
	for _, p := range b.proposals {
		if p.IsPending() {
			pending = append(pending, p)
		}
	}
	return pending
}

// cloneMarket copies the market map. Caller holds the lock.
func (b *Bot) cloneMarket() map[string]model.MarketData {
	out := make(map[string]model.MarketData, len(b.state.MarketData))
	for asset, md := range b.state.MarketData {
		out[asset] = md
	}
	return out
}

// snapshotDelta builds a partial state update for broadcasting.
// Caller holds the lock.
func (b *Bot) snapshotDelta() model.BotStateDelta {
	running := b.state.IsRunning
	balance := b.state.Balance
	totalValue := b.state.TotalValue
	returnPct := b.state.TotalReturnPct
	invocations := b.state.InvocationCount
	lastUpdate := b.state.LastUpdate
	return model.BotStateDelta{
		IsRunning:       &running,
		Balance:         &balance,
		TotalValue:      &totalValue,
		TotalReturnPct:  &returnPct,
		Positions:       append([]model.Position(nil), b.state.Positions...),
		InvocationCount: &invocations,
		LastUpdate:      &lastUpdate,
	}
}
