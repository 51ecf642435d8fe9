package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nof1/dashboard/internal/model"
	"nof1/dashboard/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL+"/api/v1", 5*time.Second), srv
}

func TestGetStatusDecodesSnapshot(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/bot/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"is_running": true,
			"balance": 10000.5,
			"sharpe_ratio": 1.4,
			"positions": [{"symbol": "BTC", "quantity": 0.5, "entry_price": 60000, "current_price": 65000, "unrealized_pnl": 2500, "leverage": 2}],
			"market_data": {"BTC": {"asset": "BTC", "current_price": 65000, "intraday": {"rsi14": 72.5}}},
			"invocation_count": 12,
			"last_update": "2024-06-01T12:00:00Z"
		}`))
	}))
	defer srv.Close()

	state, err := client.GetStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, state.IsRunning)
	assert.True(t, state.Balance.Equal(decimal.NewFromFloat(10000.5)))
	require.Len(t, state.Positions, 1)
	assert.Equal(t, "BTC", state.Positions[0].Symbol)
	require.Contains(t, state.MarketData, "BTC")
	require.NotNil(t, state.MarketData["BTC"].Intraday)
	assert.InDelta(t, 72.5, *state.MarketData["BTC"].Intraday.RSI14, 0.001)
	assert.Equal(t, 12, state.InvocationCount)
}

func TestGetTradesForwardsPageQuery(t *testing.T) {
	var gotQuery map[string]string
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/trades/", r.URL.Path)
		gotQuery = map[string]string{
			"limit":  r.URL.Query().Get("limit"),
			"offset": r.URL.Query().Get("offset"),
			"action": r.URL.Query().Get("action"),
		}
		w.Write([]byte(`[{"asset": "BTC", "action": "buy", "amount": 0.1, "price": 64000, "timestamp": "2024-06-01T11:00:00Z"}]`))
	}))
	defer srv.Close()

	trades, err := client.GetTrades(context.Background(), TradeQuery{Limit: 20, Offset: 40, Action: "buy"})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "buy", trades[0].Action)
	assert.Equal(t, "20", gotQuery["limit"])
	assert.Equal(t, "40", gotQuery["offset"])
	assert.Equal(t, "buy", gotQuery["action"])
}

func TestGetTradesDefaultsLimit(t *testing.T) {
	var limit string
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit = r.URL.Query().Get("limit")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := client.GetTrades(context.Background(), TradeQuery{})
	require.NoError(t, err)
	assert.Equal(t, "50", limit)
}

func TestServerErrorCarriesStatusAndDetail(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Failed to approve proposal or bot not running"}`))
	}))
	defer srv.Close()

	err := client.ApproveProposal(context.Background(), "abc")
	require.Error(t, err)
	se := util.AsServerError(err)
	require.NotNil(t, se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "Failed to approve proposal or bot not running", se.Message)
}

func TestNetworkErrorOnUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url+"/api/v1", time.Second)
	_, err := client.GetStatus(context.Background())
	require.Error(t, err)
	assert.True(t, util.IsNetworkError(err))
	assert.False(t, util.IsServerError(err))
}

func TestParseErrorOnMalformedBody(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := client.GetSettings(context.Background())
	require.Error(t, err)
	var pe *util.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestRejectProposalSendsReason(t *testing.T) {
	var body map[string]string
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/proposals/p-1/reject", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"status": "rejected", "id": "p-1"}`))
	}))
	defer srv.Close()

	require.NoError(t, client.RejectProposal(context.Background(), "p-1", "too risky"))
	assert.Equal(t, "too risky", body["reason"])
}

func TestUpdateSettingsSendsOnlySetFields(t *testing.T) {
	var raw map[string]json.RawMessage
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	mode := model.TradingModeAuto
	ok, err := client.UpdateSettings(context.Background(), model.SettingsPatch{TradingMode: &mode})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, raw, "trading_mode")
	assert.NotContains(t, raw, "interval")
	assert.NotContains(t, raw, "assets")
}
