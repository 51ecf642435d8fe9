package push

import (
	"encoding/json"

	"nof1/dashboard/internal/model"
	"nof1/dashboard/internal/util"
)

// dispatch decodes one inbound frame and maps it to a sink effect.
// Malformed payloads are logged and dropped; a bad frame must never
// terminate the channel. Unrecognized event types are tolerated.
func (c *Client) dispatch(raw []byte) {
	var ev model.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		c.log.Warnf("push channel: dropping frame: %v", util.NewParseError("push frame", err))
		return
	}

	switch ev.Type {
	case model.EventStateUpdate:
		if len(ev.Data) == 0 {
			return
		}
		var delta model.BotStateDelta
		if err := json.Unmarshal(ev.Data, &delta); err != nil {
			c.log.Warnf("push channel: dropping state_update: %v", util.NewParseError("state_update payload", err))
			return
		}
		c.sink.ApplyBotDelta(delta)

	case model.EventMarketDataUpdate:
		if len(ev.Data) == 0 {
			return
		}
		var payload model.MarketDataPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			c.log.Warnf("push channel: dropping market_data_update: %v", util.NewParseError("market_data_update payload", err))
			return
		}
		if payload.MarketData == nil {
			return
		}
		c.sink.MergeMarketData(payload.MarketData, ev.Timestamp)

	case model.EventTradeExecuted:
		if len(ev.Data) == 0 {
			return
		}
		var trade model.Trade
		if err := json.Unmarshal(ev.Data, &trade); err != nil {
			c.log.Warnf("push channel: dropping trade_executed: %v", util.NewParseError("trade_executed payload", err))
			return
		}
		c.sink.TradeExecuted(trade)

	default:
		c.log.Debugf("push channel: ignoring event type %q", ev.Type)
	}
}
