package model

import (
	"github.com/shopspring/decimal"
)

// Proposal status constants
const (
	ProposalStatusPending  = "pending"
	ProposalStatusApproved = "approved"
	ProposalStatusRejected = "rejected"
	ProposalStatusExecuted = "executed"
	ProposalStatusFailed   = "failed"
)

// Proposal is an AI-suggested trade awaiting manual approval or
// rejection. Visible while pending; removed from the pending set once
// approved or rejected.
type Proposal struct {
	ID         string           `json:"id"`
	Asset      string           `json:"asset"`
	Action     string           `json:"action"`
	Confidence float64          `json:"confidence"`
	RiskReward *float64         `json:"risk_reward,omitempty"`
	EntryPrice decimal.Decimal  `json:"entry_price"`
	Amount     decimal.Decimal  `json:"amount"`
	TPPrice    *decimal.Decimal `json:"tp_price,omitempty"`
	SLPrice    *decimal.Decimal `json:"sl_price,omitempty"`
	Rationale  string           `json:"rationale"`
	Status     string           `json:"status,omitempty"`
	Timestamp  string           `json:"timestamp"`
}

// NormalizedConfidence returns the confidence on the 0-100 scale. The
// backend sends either 0-1 or 0-100; values at or below 1 are scaled.
func (p Proposal) NormalizedConfidence() float64 {
	if p.Confidence <= 1 {
		return p.Confidence * 100
	}
	return p.Confidence
}

// IsPending reports whether the proposal still awaits a decision. An
// empty status is treated as pending since the pending list is the only
// place the backend omits it.
func (p Proposal) IsPending() bool {
	return p.Status == "" || p.Status == ProposalStatusPending
}

// PotentialGain returns the percentage gain if the take-profit price is
// hit, or nil when entry or TP is missing
func (p Proposal) PotentialGain() *decimal.Decimal {
	return priceDistancePct(p.Action, p.EntryPrice, p.TPPrice)
}

// PotentialLoss returns the percentage loss if the stop-loss price is
// hit, or nil when entry or SL is missing
func (p Proposal) PotentialLoss() *decimal.Decimal {
	return priceDistancePct(p.Action, p.EntryPrice, p.SLPrice)
}

func priceDistancePct(action string, entry decimal.Decimal, target *decimal.Decimal) *decimal.Decimal {
	if target == nil || entry.IsZero() {
		return nil
	}
	var diff decimal.Decimal
	switch action {
	case ActionBuy:
		diff = target.Sub(entry)
	case ActionSell:
		diff = entry.Sub(*target)
	default:
		return nil
	}
	pct := diff.Div(entry).Mul(decimal.NewFromInt(100))
	return &pct
}
