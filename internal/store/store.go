package store

import (
	"context"
	"fmt"
	"sync"

	"nof1/dashboard/internal/api"
	"nof1/dashboard/internal/model"
	"nof1/dashboard/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// API is the slice of the REST client the store consumes
type API interface {
	GetStatus(ctx context.Context) (*model.BotState, error)
	StartBot(ctx context.Context, assets []string, interval string) (string, error)
	StopBot(ctx context.Context) (string, error)
	ClosePosition(ctx context.Context, asset string) (bool, error)
	GetTrades(ctx context.Context, q api.TradeQuery) ([]model.Trade, error)
	GetSettings(ctx context.Context) (*model.Settings, error)
	UpdateSettings(ctx context.Context, patch model.SettingsPatch) (bool, error)
	RefreshMarket(ctx context.Context) (bool, error)
	GetProposals(ctx context.Context) ([]model.Proposal, error)
	ApproveProposal(ctx context.Context, id string) error
	RejectProposal(ctx context.Context, id, reason string) error
}

// Snapshot is a point-in-time copy of the store's state. Views hold no
// references into the store's own values.
type Snapshot struct {
	BotState  *model.BotState
	Settings  *model.Settings
	Trades    []model.Trade
	Proposals []model.Proposal
	Connected bool
	Loading   bool
	Error     string
}

// Options tunes store construction
type Options struct {
	FallbackAssets   []string
	FallbackInterval string
	Log              *logger.Logger
}

// Store is the single source of truth for BotState, Settings, Trades,
// Proposals and the connectivity flag. All mutation goes through its
// action methods; a mutex serializes writers so field-level
// last-write-wins semantics hold even off the UI goroutine.
//
// Error policy per action, mirroring how each one is surfaced:
//   - initial status fetch, start/stop, close-position: captured into the
//     Error field (banner), never returned;
//   - background refreshes (settings, trades, proposals, market):
//     swallowed and logged;
//   - settings update and proposal approve/reject: returned to the
//     caller for inline handling.
type Store struct {
	mu        sync.Mutex
	botState  *model.BotState
	settings  *model.Settings
	trades    []model.Trade
	proposals []model.Proposal
	connected bool
	loading   bool
	lastError string

	subs    map[int]func()
	nextSub int

	api              API
	validate         *validator.Validate
	fallbackAssets   []string
	fallbackInterval string
	log              *logger.Logger
}

// New creates a store backed by the given API client. The store is
// created once at process start and passed by reference to whatever
// owns the UI tree.
func New(client API, opts Options) *Store {
	assets := opts.FallbackAssets
	if len(assets) == 0 {
		assets = []string{"BTC", "ETH"}
	}
	interval := opts.FallbackInterval
	if interval == "" {
		interval = "1h"
	}
	log := opts.Log
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{
		subs:             make(map[int]func()),
		api:              client,
		validate:         validator.New(),
		fallbackAssets:   assets,
		fallbackInterval: interval,
		log:              log,
	}
}

// Subscribe registers a change callback and returns an unsubscribe
// function. Callbacks run after every committed mutation, outside the
// store lock.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Connected: s.connected,
		Loading:   s.loading,
		Error:     s.lastError,
		Trades:    append([]model.Trade(nil), s.trades...),
		Proposals: append([]model.Proposal(nil), s.proposals...),
	}
	if s.botState != nil {
		st := s.botState.Clone()
		snap.BotState = &st
	}
	if s.settings != nil {
		cfg := *s.settings
		cfg.Assets = append([]string(nil), s.settings.Assets...)
		snap.Settings = &cfg
	}
	return snap
}

// FetchInitialState loads the full status snapshot, replacing any prior
// BotState wholesale and clearing the surfaced error. On failure the
// reason is captured into the Error field so the UI can show a retry
// banner.
func (s *Store) FetchInitialState(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	state, err := s.api.GetStatus(ctx)
	if err != nil {
		s.log.Error("failed to fetch bot status", err)
		s.setError(fmt.Sprintf("failed to fetch bot status: %v", err))
		return
	}

	s.mu.Lock()
	s.botState = state
	s.lastError = ""
	s.mu.Unlock()
	s.notify()
}

// UpdateBotState shallow-merges a partial state into the current
// BotState, or adopts it wholesale when none exists yet. This is the
// single convergence point for push events and polling fallbacks;
// overlapping writes resolve last-write-wins per field.
func (s *Store) UpdateBotState(delta model.BotStateDelta) {
	s.mu.Lock()
	var next model.BotState
	if s.botState != nil {
		next = s.botState.Apply(delta)
	} else {
		next = model.BotState{}.Apply(delta)
	}
	s.botState = &next
	s.mu.Unlock()
	s.notify()
}

// SetConnected updates the connectivity flag only
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	s.connected = connected
	s.mu.Unlock()
	s.notify()
}

// ApplyBotDelta implements push.Sink
func (s *Store) ApplyBotDelta(delta model.BotStateDelta) {
	s.UpdateBotState(delta)
}

// MergeMarketData implements push.Sink: merge the pushed per-asset map
// into BotState.MarketData and stamp last_update. Assets not present in
// the payload are preserved.
func (s *Store) MergeMarketData(data map[string]model.MarketData, timestamp string) {
	delta := model.BotStateDelta{MarketData: data}
	if timestamp != "" {
		delta.LastUpdate = &timestamp
	}
	s.UpdateBotState(delta)
}

// TradeExecuted implements push.Sink. Informational in this layer: no
// state mutation is mandated, consumers re-fetch history when they care.
func (s *Store) TradeExecuted(trade model.Trade) {
	s.log.Infof("trade executed: %s %s %s @ %s",
		trade.Action, trade.Amount, trade.Asset, trade.Price)
}

// StartBot starts the bot with the loaded Settings, or the fallback
// asset list and interval when Settings have not been fetched yet. The
// resulting state change arrives over the push channel.
func (s *Store) StartBot(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	assets, interval := s.startParams()
	if _, err := s.api.StartBot(ctx, assets, interval); err != nil {
		s.log.Error("failed to start bot", err)
		s.setError(fmt.Sprintf("failed to start bot: %v", err))
	}
}

// StopBot stops the bot
func (s *Store) StopBot(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.api.StopBot(ctx); err != nil {
		s.log.Error("failed to stop bot", err)
		s.setError(fmt.Sprintf("failed to stop bot: %v", err))
	}
}

func (s *Store) startParams() ([]string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings != nil && len(s.settings.Assets) > 0 {
		return append([]string(nil), s.settings.Assets...), s.settings.Interval
	}
	return append([]string(nil), s.fallbackAssets...), s.fallbackInterval
}

// ClosePosition closes the position for an asset. Fire-and-forget from
// the caller's perspective; failures land in the Error field.
func (s *Store) ClosePosition(ctx context.Context, asset string) {
	if _, err := s.api.ClosePosition(ctx, asset); err != nil {
		s.log.Error("failed to close position", err)
		s.setError(fmt.Sprintf("failed to close position %s: %v", asset, err))
	}
}

// FetchSettings loads the Settings document. Background refresh: errors
// are logged and swallowed.
func (s *Store) FetchSettings(ctx context.Context) {
	settings, err := s.api.GetSettings(ctx)
	if err != nil {
		s.log.Error("failed to load settings", err)
		return
	}
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	s.notify()
}

// UpdateSettings validates and commits a partial Settings update, then
// re-fetches the committed copy (no optimistic local apply; the server
// copy is authoritative). Unlike the other actions this returns the
// error so a form can show inline feedback.
func (s *Store) UpdateSettings(ctx context.Context, patch model.SettingsPatch) error {
	if err := s.validate.Struct(patch); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	ok, err := s.api.UpdateSettings(ctx, patch)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("settings update rejected by backend")
	}
	s.FetchSettings(ctx)
	return nil
}

// FetchTrades replaces the trade list with one full page. IDs missing
// from the backend are synthesized so list consumers have a stable key.
// Background refresh: errors are logged and swallowed.
func (s *Store) FetchTrades(ctx context.Context, limit, offset int) {
	trades, err := s.api.GetTrades(ctx, api.TradeQuery{Limit: limit, Offset: offset})
	if err != nil {
		s.log.Error("failed to fetch trades", err)
		return
	}
	for i := range trades {
		if trades[i].ID == "" {
			trades[i].ID = uuid.NewString()
		}
	}
	s.mu.Lock()
	s.trades = trades
	s.mu.Unlock()
	s.notify()
}

// FetchProposals replaces the pending proposal list. Background refresh:
// errors are logged and swallowed.
func (s *Store) FetchProposals(ctx context.Context) {
	proposals, err := s.api.GetProposals(ctx)
	if err != nil {
		s.log.Error("failed to fetch proposals", err)
		return
	}
	s.mu.Lock()
	s.proposals = proposals
	s.mu.Unlock()
	s.notify()
}

// ApproveProposal approves a proposal and re-fetches the pending list
// regardless of the outcome, reconciling with server truth instead of
// removing the entry locally. The approve error is returned for inline
// handling.
func (s *Store) ApproveProposal(ctx context.Context, id string) error {
	err := s.api.ApproveProposal(ctx, id)
	s.FetchProposals(ctx)
	return err
}

// RejectProposal rejects a proposal with a reason and re-fetches the
// pending list regardless of the outcome.
func (s *Store) RejectProposal(ctx context.Context, id, reason string) error {
	err := s.api.RejectProposal(ctx, id, reason)
	s.FetchProposals(ctx)
	return err
}

// RefreshMarket triggers a backend market refresh and immediately
// re-fetches full status rather than waiting for a push event, so
// "refresh now" behaves deterministically.
func (s *Store) RefreshMarket(ctx context.Context) {
	if _, err := s.api.RefreshMarket(ctx); err != nil {
		s.log.Error("failed to refresh market data", err)
		return
	}
	s.FetchInitialState(ctx)
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
	s.notify()
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
	s.notify()
}
