package model

import (
	"encoding/json"
)

// EventType tags a push channel frame
type EventType string

// Push event types broadcast by the backend. The dispatcher maps the
// first three to store effects; the rest are tolerated and ignored.
const (
	EventStateUpdate      EventType = "state_update"
	EventTradeExecuted    EventType = "trade_executed"
	EventMarketDataUpdate EventType = "market_data_update"
	EventBotStarted       EventType = "bot_started"
	EventBotStopped       EventType = "bot_stopped"
	EventPositionOpened   EventType = "position_opened"
	EventPositionClosed   EventType = "position_closed"
	EventProposalCreated  EventType = "proposal_created"
	EventError            EventType = "error_occurred"
)

// Event is the envelope for all push channel frames
type Event struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// MarketDataPayload is the data carried by a market_data_update event
type MarketDataPayload struct {
	MarketData map[string]MarketData `json:"market_data"`
}
