package sim

import (
	"testing"

	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/market"
	"github.com/stretchr/testify/assert"
)

func TestNoCostUsesSidePrice(t *testing.T) {
	q := market.Quote{AssetID: aapl, Ask: 100.10, AskSize: 500, Bid: 99.90, BidSize: 500}

	assert.Equal(t, 100.10, NoCost{}.Price(10, q), "buys lift the ask")
	assert.Equal(t, 99.90, NoCost{}.Price(-10, q), "sells hit the bid")
}

func TestNoCostFallsBackToBarClose(t *testing.T) {
	bar := market.PriceBar{AssetID: aapl, O: 99, H: 101, L: 98, C: 100, Vol: 500}

	assert.Equal(t, 100.0, NoCost{}.Price(10, bar))
	assert.Equal(t, 100.0, NoCost{}.Price(-10, bar))
}

func TestSpreadPricingWorsensBothSides(t *testing.T) {
	bar := market.PriceBar{AssetID: aapl, O: 99, H: 101, L: 98, C: 100, Vol: 500}
	p := SpreadPricing{Bps: 10}

	buy := p.Price(10, bar)
	sell := p.Price(-10, bar)

	assert.InDelta(t, 100.05, buy, 1e-9, "half the spread above")
	assert.InDelta(t, 99.95, sell, 1e-9, "half the spread below")
	assert.Greater(t, buy, sell)
}

func TestFeeModels(t *testing.T) {
	assert.Equal(t, 0.0, NoFee{}.Fee(10, 100))

	assert.InDelta(t, 1.0, PercentageFee{Rate: 0.001}.Fee(10, 100), 1e-9)
	assert.InDelta(t, 1.0, PercentageFee{Rate: 0.001}.Fee(-10, 100), 1e-9,
		"fees are always a cost, never a rebate")

	assert.InDelta(t, 5.0, PerUnitFee{Amount: 0.5}.Fee(-10, 100), 1e-9)
}

func TestMarginBuyingPowerNetsOpenPositions(t *testing.T) {
	b := newBroker(t, Config{Deposit: 10_000, Model: MarginAccount{Leverage: 2}})

	// 20,000 of buying power before any position.
	bp, err := MarginAccount{Leverage: 2}.BuyingPower(b.Account(), market.SingleCurrency{})
	assert.NoError(t, err)
	assert.InDelta(t, 20_000.0, bp, 1e-9)

	// Spend 5,000 on a position: equity is unchanged but exposure counts.
	acct := place(t, b, barEvent(t0, aapl, 99, 101, 98, 100, 500),
		broker.NewMarketOrder(aapl, 50))
	bp, err = MarginAccount{Leverage: 2}.BuyingPower(acct, market.SingleCurrency{})
	assert.NoError(t, err)
	assert.InDelta(t, 15_000.0, bp, 1e-9)
}
