package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool          { return &v }
func strPtr(v string) *string       { return &v }
func intPtr(v int) *int             { return &v }
func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestApplyMergesSpecifiedFieldsOnly(t *testing.T) {
	base := BotState{
		IsRunning:       true,
		Balance:         decimal.NewFromInt(1000),
		SharpeRatio:     decimal.NewFromFloat(1.2),
		InvocationCount: 7,
		LastUpdate:      "2024-01-01T00:00:00Z",
	}

	next := base.Apply(BotStateDelta{
		Balance:    decPtr("950.50"),
		LastUpdate: strPtr("2024-01-01T00:05:00Z"),
	})

	assert.True(t, next.Balance.Equal(decimal.RequireFromString("950.50")))
	assert.Equal(t, "2024-01-01T00:05:00Z", next.LastUpdate)
	// Unspecified fields keep their last value
	assert.True(t, next.IsRunning)
	assert.True(t, next.SharpeRatio.Equal(decimal.NewFromFloat(1.2)))
	assert.Equal(t, 7, next.InvocationCount)
}

func TestApplySequenceEqualsShallowMergeInCallOrder(t *testing.T) {
	deltas := []BotStateDelta{
		{IsRunning: boolPtr(true), Balance: decPtr("100")},
		{Balance: decPtr("200"), InvocationCount: intPtr(1)},
		{IsRunning: boolPtr(false)},
	}

	state := BotState{}
	for _, d := range deltas {
		state = state.Apply(d)
	}

	assert.False(t, state.IsRunning)
	assert.True(t, state.Balance.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 1, state.InvocationCount)
}

func TestApplyIsIdempotent(t *testing.T) {
	base := BotState{Balance: decimal.NewFromInt(500), InvocationCount: 3}
	delta := BotStateDelta{
		Balance:   decPtr("750"),
		Positions: []Position{{Symbol: "BTC", Quantity: decimal.NewFromInt(1)}},
		MarketData: map[string]MarketData{
			"BTC": {Asset: "BTC", CurrentPrice: decimal.NewFromInt(65000)},
		},
	}

	once := base.Apply(delta)
	twice := once.Apply(delta)

	assert.Equal(t, once, twice)
}

func TestApplyMergesMarketDataPerAsset(t *testing.T) {
	base := BotState{
		MarketData: map[string]MarketData{
			"BTC": {Asset: "BTC", CurrentPrice: decimal.NewFromInt(64000)},
			"ETH": {Asset: "ETH", CurrentPrice: decimal.NewFromInt(3300)},
		},
	}

	ts := "2024-06-01T12:00:00Z"
	next := base.Apply(BotStateDelta{
		MarketData: map[string]MarketData{
			"BTC": {Asset: "BTC", CurrentPrice: decimal.NewFromInt(65500)},
		},
		LastUpdate: &ts,
	})

	// The pushed asset is replaced wholesale
	require.Contains(t, next.MarketData, "BTC")
	assert.True(t, next.MarketData["BTC"].CurrentPrice.Equal(decimal.NewFromInt(65500)))
	// Other assets are preserved untouched
	require.Contains(t, next.MarketData, "ETH")
	assert.True(t, next.MarketData["ETH"].CurrentPrice.Equal(decimal.NewFromInt(3300)))
	assert.Equal(t, ts, next.LastUpdate)
	// The original map is not mutated
	assert.True(t, base.MarketData["BTC"].CurrentPrice.Equal(decimal.NewFromInt(64000)))
}

func TestApplyReplacesPositionsWholesale(t *testing.T) {
	base := BotState{Positions: []Position{
		{Symbol: "BTC", Quantity: decimal.NewFromInt(1)},
		{Symbol: "ETH", Quantity: decimal.NewFromInt(10)},
	}}

	next := base.Apply(BotStateDelta{Positions: []Position{
		{Symbol: "SOL", Quantity: decimal.NewFromInt(5)},
	}})

	require.Len(t, next.Positions, 1)
	assert.Equal(t, "SOL", next.Positions[0].Symbol)

	// An explicit empty list clears positions; nil leaves them alone
	cleared := next.Apply(BotStateDelta{Positions: []Position{}})
	assert.Len(t, cleared.Positions, 0)
	untouched := next.Apply(BotStateDelta{})
	assert.Len(t, untouched.Positions, 1)
}

func TestDeltaJSONAbsentFieldsStayUnspecified(t *testing.T) {
	raw := []byte(`{"is_running": true, "market_data": {"BTC": {"asset": "BTC", "current_price": 65000}}}`)

	var delta BotStateDelta
	require.NoError(t, json.Unmarshal(raw, &delta))

	require.NotNil(t, delta.IsRunning)
	assert.True(t, *delta.IsRunning)
	assert.Nil(t, delta.Balance)
	assert.Nil(t, delta.Positions)
	assert.Nil(t, delta.LastUpdate)
	require.Contains(t, delta.MarketData, "BTC")
	assert.True(t, delta.MarketData["BTC"].CurrentPrice.Equal(decimal.NewFromInt(65000)))
}

func TestCloneIsolatesMutableFields(t *testing.T) {
	state := BotState{
		Positions: []Position{{Symbol: "BTC"}},
		MarketData: map[string]MarketData{
			"BTC": {Asset: "BTC"},
		},
	}

	clone := state.Clone()
	clone.Positions[0].Symbol = "ETH"
	clone.MarketData["SOL"] = MarketData{Asset: "SOL"}

	assert.Equal(t, "BTC", state.Positions[0].Symbol)
	assert.NotContains(t, state.MarketData, "SOL")
}
