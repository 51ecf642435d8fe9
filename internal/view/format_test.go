package view

import (
	"testing"

	"nof1/dashboard/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConfidenceHandlesBothScales(t *testing.T) {
	assert.Equal(t, "82%", Confidence(0.82))
	assert.Equal(t, "82%", Confidence(82))
	assert.Equal(t, "100%", Confidence(1))
	assert.Equal(t, "0%", Confidence(0))
}

func TestPnLPercentSign(t *testing.T) {
	assert.Equal(t, "+3.52%", PnLPercent(decimal.NewFromFloat(3.52)))
	assert.Equal(t, "-1.20%", PnLPercent(decimal.NewFromFloat(-1.2)))
	assert.Equal(t, "+0.00%", PnLPercent(decimal.Zero))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$10000.50", Money(decimal.NewFromFloat(10000.5)))
	assert.Equal(t, "$-12.34", Money(decimal.NewFromFloat(-12.34)))
}

func TestRSILabel(t *testing.T) {
	assert.Equal(t, RSIOverbought, RSILabel(72.1))
	assert.Equal(t, RSIOversold, RSILabel(25))
	assert.Equal(t, RSINeutral, RSILabel(70))
	assert.Equal(t, RSINeutral, RSILabel(30))
	assert.Equal(t, RSINeutral, RSILabel(50))
}

func TestExecutedCountExcludesHold(t *testing.T) {
	trades := []model.Trade{
		{Action: model.ActionBuy},
		{Action: model.ActionHold},
		{Action: model.ActionSell},
	}
	assert.Equal(t, 2, ExecutedCount(trades))
	assert.Equal(t, 0, ExecutedCount(nil))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "live", ConnLabel(true))
	assert.Equal(t, "offline", ConnLabel(false))
	assert.Equal(t, "running", RunLabel(true))
	assert.Equal(t, "stopped", RunLabel(false))
}
