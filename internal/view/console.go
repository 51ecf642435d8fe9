package view

import (
	"fmt"
	"io"
	"sort"

	"nof1/dashboard/internal/store"
)

// Console renders store snapshots as a plain-text summary. It is the
// only view shipped with the module; richer frontends consume the same
// snapshot contract.
type Console struct {
	out io.Writer
}

// NewConsole creates a console renderer writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Render writes a one-screen summary of the snapshot
func (c *Console) Render(snap store.Snapshot) {
	fmt.Fprintf(c.out, "── bot %s · feed %s", runState(snap), ConnLabel(snap.Connected))
	if snap.Error != "" {
		fmt.Fprintf(c.out, " · error: %s", snap.Error)
	}
	fmt.Fprintln(c.out)

	if snap.BotState == nil {
		fmt.Fprintln(c.out, "waiting for first status snapshot...")
		return
	}
	st := snap.BotState

	fmt.Fprintf(c.out, "balance %s · total %s (%s) · sharpe %s · cycles %d · updated %s\n",
		Money(st.Balance), Money(st.TotalValue), PnLPercent(st.TotalReturnPct),
		st.SharpeRatio.StringFixed(2), st.InvocationCount, st.LastUpdate)

	if len(st.Positions) > 0 {
		fmt.Fprintln(c.out, "positions:")
		for _, p := range st.Positions {
			fmt.Fprintf(c.out, "  %-6s %-5s qty %s entry %s now %s pnl %s (%s)\n",
				p.Symbol, p.Side(), p.Quantity.Abs(), Money(p.EntryPrice),
				Money(p.CurrentPrice), Money(p.UnrealizedPnL), PnLPercent(p.PnLPercent()))
		}
	}

	if len(st.MarketData) > 0 {
		assets := make([]string, 0, len(st.MarketData))
		for asset := range st.MarketData {
			assets = append(assets, asset)
		}
		sort.Strings(assets)
		fmt.Fprintln(c.out, "market:")
		for _, asset := range assets {
			md := st.MarketData[asset]
			line := fmt.Sprintf("  %-6s %s", asset, Money(md.CurrentPrice))
			if md.Change24h != nil {
				line += fmt.Sprintf(" 24h %s", PnLPercent(*md.Change24h))
			}
			if md.Intraday != nil && md.Intraday.RSI14 != nil {
				line += fmt.Sprintf(" rsi %.0f (%s)", *md.Intraday.RSI14, RSILabel(*md.Intraday.RSI14))
			}
			fmt.Fprintln(c.out, line)
		}
	}

	if len(snap.Proposals) > 0 {
		fmt.Fprintln(c.out, "pending proposals:")
		for _, p := range snap.Proposals {
			fmt.Fprintf(c.out, "  [%s] %s %s @ %s · confidence %s · %s\n",
				p.ID, p.Action, p.Asset, Money(p.EntryPrice),
				Confidence(p.Confidence), p.Rationale)
		}
	}

	fmt.Fprintf(c.out, "trades: %d fetched, %d executed\n",
		len(snap.Trades), ExecutedCount(snap.Trades))
}

func runState(snap store.Snapshot) string {
	if snap.BotState == nil {
		return RunLabel(false)
	}
	return RunLabel(snap.BotState.IsRunning)
}
