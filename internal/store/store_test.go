package store

import (
	"context"
	"errors"
	"testing"

	"nof1/dashboard/internal/api"
	"nof1/dashboard/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records calls and serves canned responses
type fakeAPI struct {
	status       *model.BotState
	statusErr    error
	settings     *model.Settings
	settingsErr  error
	trades       []model.Trade
	proposals    []model.Proposal
	updateOK     bool
	updateErr    error
	approveErr   error
	refreshErr   error
	startAssets  []string
	startIntv    string
	startCalls   int
	stopCalls    int
	closeAsset   string
	getProposals int
	refreshCalls int
	statusCalls  int
}

func (f *fakeAPI) GetStatus(ctx context.Context) (*model.BotState, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	st := f.status.Clone()
	return &st, nil
}

func (f *fakeAPI) StartBot(ctx context.Context, assets []string, interval string) (string, error) {
	f.startCalls++
	f.startAssets = assets
	f.startIntv = interval
	return "started", nil
}

func (f *fakeAPI) StopBot(ctx context.Context) (string, error) {
	f.stopCalls++
	return "stopped", nil
}

func (f *fakeAPI) ClosePosition(ctx context.Context, asset string) (bool, error) {
	f.closeAsset = asset
	return true, nil
}

func (f *fakeAPI) GetTrades(ctx context.Context, q api.TradeQuery) ([]model.Trade, error) {
	return append([]model.Trade(nil), f.trades...), nil
}

func (f *fakeAPI) GetSettings(ctx context.Context) (*model.Settings, error) {
	if f.settingsErr != nil {
		return nil, f.settingsErr
	}
	cfg := *f.settings
	return &cfg, nil
}

func (f *fakeAPI) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (bool, error) {
	return f.updateOK, f.updateErr
}

func (f *fakeAPI) RefreshMarket(ctx context.Context) (bool, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return false, f.refreshErr
	}
	return true, nil
}

func (f *fakeAPI) GetProposals(ctx context.Context) ([]model.Proposal, error) {
	f.getProposals++
	return append([]model.Proposal(nil), f.proposals...), nil
}

func (f *fakeAPI) ApproveProposal(ctx context.Context, id string) error {
	return f.approveErr
}

func (f *fakeAPI) RejectProposal(ctx context.Context, id, reason string) error {
	return nil
}

func newTestStore(f *fakeAPI) *Store {
	return New(f, Options{})
}

func TestFetchInitialStateReplacesWholesaleAndClearsError(t *testing.T) {
	f := &fakeAPI{status: &model.BotState{
		IsRunning: true,
		Balance:   decimal.NewFromInt(9500),
	}}
	st := newTestStore(f)

	// Stale partial state and a lingering error from a previous failure
	st.UpdateBotState(model.BotStateDelta{InvocationCount: intPtr(99)})
	st.setError("previous failure")

	st.FetchInitialState(context.Background())

	snap := st.Snapshot()
	require.NotNil(t, snap.BotState)
	assert.True(t, snap.BotState.IsRunning)
	assert.Equal(t, 0, snap.BotState.InvocationCount)
	assert.Empty(t, snap.Error)
	assert.False(t, snap.Loading)
}

func TestFetchInitialStateSurfacesErrorAndKeepsState(t *testing.T) {
	f := &fakeAPI{statusErr: errors.New("connection refused")}
	st := newTestStore(f)
	st.UpdateBotState(model.BotStateDelta{IsRunning: boolPtr(true)})

	st.FetchInitialState(context.Background())

	snap := st.Snapshot()
	assert.Contains(t, snap.Error, "connection refused")
	require.NotNil(t, snap.BotState)
	assert.True(t, snap.BotState.IsRunning)
	assert.False(t, snap.Loading)
}

func TestUpdateBotStateConvergesAcrossSources(t *testing.T) {
	st := newTestStore(&fakeAPI{})

	st.ApplyBotDelta(model.BotStateDelta{
		IsRunning: boolPtr(true),
		Balance:   decPtr("1000"),
	})
	st.MergeMarketData(map[string]model.MarketData{
		"BTC": {Asset: "BTC", CurrentPrice: decimal.NewFromInt(65000)},
	}, "2024-06-01T12:00:00Z")
	st.MergeMarketData(map[string]model.MarketData{
		"ETH": {Asset: "ETH", CurrentPrice: decimal.NewFromInt(3400)},
	}, "2024-06-01T12:00:02Z")

	snap := st.Snapshot()
	require.NotNil(t, snap.BotState)
	assert.True(t, snap.BotState.IsRunning)
	// Both assets survive; neither merge clobbered the other
	assert.Contains(t, snap.BotState.MarketData, "BTC")
	assert.Contains(t, snap.BotState.MarketData, "ETH")
	assert.Equal(t, "2024-06-01T12:00:02Z", snap.BotState.LastUpdate)
}

func TestSetConnectedTouchesOnlyConnectivity(t *testing.T) {
	st := newTestStore(&fakeAPI{})
	st.UpdateBotState(model.BotStateDelta{Balance: decPtr("500")})

	st.SetConnected(true)
	snap := st.Snapshot()
	assert.True(t, snap.Connected)
	assert.True(t, snap.BotState.Balance.Equal(decimal.NewFromInt(500)))

	st.SetConnected(false)
	assert.False(t, st.Snapshot().Connected)
	assert.True(t, st.Snapshot().BotState.Balance.Equal(decimal.NewFromInt(500)))
}

func TestStartBotUsesFallbackThenSettings(t *testing.T) {
	f := &fakeAPI{settings: &model.Settings{
		Assets:   []string{"SOL", "DOGE"},
		Interval: "15m",
	}}
	st := New(f, Options{FallbackAssets: []string{"BTC"}, FallbackInterval: "4h"})

	st.StartBot(context.Background())
	assert.Equal(t, []string{"BTC"}, f.startAssets)
	assert.Equal(t, "4h", f.startIntv)

	st.FetchSettings(context.Background())
	st.StartBot(context.Background())
	assert.Equal(t, []string{"SOL", "DOGE"}, f.startAssets)
	assert.Equal(t, "15m", f.startIntv)
	assert.Equal(t, 2, f.startCalls)
}

func TestUpdateSettingsValidatesBeforeCalling(t *testing.T) {
	f := &fakeAPI{updateOK: true, settings: &model.Settings{Interval: "1h"}}
	st := newTestStore(f)

	bad := "13m"
	err := st.UpdateSettings(context.Background(), model.SettingsPatch{Interval: &bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")

	good := "5m"
	require.NoError(t, st.UpdateSettings(context.Background(), model.SettingsPatch{Interval: &good}))
	// Committed copy was re-fetched, not applied locally
	require.NotNil(t, st.Snapshot().Settings)
	assert.Equal(t, "1h", st.Snapshot().Settings.Interval)
}

func TestUpdateSettingsRejectedByBackend(t *testing.T) {
	f := &fakeAPI{updateOK: false}
	st := newTestStore(f)

	good := "1h"
	err := st.UpdateSettings(context.Background(), model.SettingsPatch{Interval: &good})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}

func TestFetchTradesSynthesizesMissingIDs(t *testing.T) {
	f := &fakeAPI{trades: []model.Trade{
		{ID: "t-1", Asset: "BTC", Action: model.ActionBuy},
		{Asset: "ETH", Action: model.ActionSell},
	}}
	st := newTestStore(f)

	st.FetchTrades(context.Background(), 50, 0)

	snap := st.Snapshot()
	require.Len(t, snap.Trades, 2)
	assert.Equal(t, "t-1", snap.Trades[0].ID)
	assert.NotEmpty(t, snap.Trades[1].ID)

	// A later page replaces the list wholesale
	f.trades = []model.Trade{{ID: "t-9", Asset: "SOL", Action: model.ActionBuy}}
	st.FetchTrades(context.Background(), 50, 0)
	snap = st.Snapshot()
	require.Len(t, snap.Trades, 1)
	assert.Equal(t, "t-9", snap.Trades[0].ID)
}

func TestApproveProposalAlwaysReconciles(t *testing.T) {
	f := &fakeAPI{proposals: []model.Proposal{{ID: "p-1", Asset: "BTC"}}}
	st := newTestStore(f)

	require.NoError(t, st.ApproveProposal(context.Background(), "p-1"))
	assert.Equal(t, 1, f.getProposals)

	// Even a failed approve re-fetches so local state matches the server
	f.approveErr = errors.New("bot not running")
	err := st.ApproveProposal(context.Background(), "p-1")
	require.Error(t, err)
	assert.Equal(t, 2, f.getProposals)
}

func TestRefreshMarketRefetchesStatus(t *testing.T) {
	f := &fakeAPI{status: &model.BotState{Balance: decimal.NewFromInt(123)}}
	st := newTestStore(f)

	st.RefreshMarket(context.Background())
	assert.Equal(t, 1, f.refreshCalls)
	assert.Equal(t, 1, f.statusCalls)
	require.NotNil(t, st.Snapshot().BotState)

	// Refresh failure skips the status re-fetch
	f.refreshErr = errors.New("boom")
	st.RefreshMarket(context.Background())
	assert.Equal(t, 1, f.statusCalls)
}

func TestSubscribeNotifiesAndUnsubscribes(t *testing.T) {
	st := newTestStore(&fakeAPI{})

	calls := 0
	unsub := st.Subscribe(func() { calls++ })

	st.SetConnected(true)
	assert.Equal(t, 1, calls)

	unsub()
	st.SetConnected(false)
	assert.Equal(t, 1, calls)
}

func TestSnapshotIsIsolatedFromStore(t *testing.T) {
	f := &fakeAPI{status: &model.BotState{
		Positions:  []model.Position{{Symbol: "BTC"}},
		MarketData: map[string]model.MarketData{"BTC": {Asset: "BTC"}},
	}}
	st := newTestStore(f)
	st.FetchInitialState(context.Background())

	snap := st.Snapshot()
	snap.BotState.Positions[0].Symbol = "MUTATED"
	snap.BotState.MarketData["MUTATED"] = model.MarketData{}

	fresh := st.Snapshot()
	assert.Equal(t, "BTC", fresh.BotState.Positions[0].Symbol)
	assert.NotContains(t, fresh.BotState.MarketData, "MUTATED")
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }
func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}
