package policy

import (
	"testing"
	"time"

	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	aapl = market.NewAsset("AAPL", "USD")
	t0   = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
)

func tradeEvent(price float64) market.Event {
	return market.NewEvent(t0, market.TradePrice{AssetID: aapl, Px: price, Vol: 1000})
}

func buySignal() []strategy.Signal  { return []strategy.Signal{{Asset: aapl, Rating: 1}} }
func sellSignal() []strategy.Signal { return []strategy.Signal{{Asset: aapl, Rating: -1}} }

func TestFlexSizesByEquityFraction(t *testing.T) {
	p := NewFlex(0.05, nil)
	acct := broker.NewAccount("USD", 100_000)

	orders := p.Act(buySignal(), acct, tradeEvent(110))
	require.Len(t, orders, 1)

	mo, ok := orders[0].(broker.MarketOrder)
	require.True(t, ok)
	// 5% of 100,000 is 5,000; at 110 that is 45 whole units.
	assert.Equal(t, 45.0, mo.Size)
	assert.Equal(t, aapl, mo.Asset)
}

func TestFlexSkipsWhenBudgetBelowOneUnit(t *testing.T) {
	p := NewFlex(0.05, nil)
	acct := broker.NewAccount("USD", 1000) // 5% = 50, price 110

	assert.Empty(t, p.Act(buySignal(), acct, tradeEvent(110)))
}

func TestFlexClosesOpposingPositionFirst(t *testing.T) {
	p := NewFlex(0.05, nil)
	acct := broker.NewAccount("USD", 100_000)
	acct.Positions[aapl] = broker.Position{Asset: aapl, Size: 45, AvgPrice: 100, MktPrice: 110}

	orders := p.Act(sellSignal(), acct, tradeEvent(110))
	require.Len(t, orders, 1)
	mo := orders[0].(broker.MarketOrder)
	assert.Equal(t, -45.0, mo.Size, "exact close, no flip")
}

func TestFlexIgnoresRepeatBuySignals(t *testing.T) {
	p := NewFlex(0.05, nil)
	acct := broker.NewAccount("USD", 100_000)
	acct.Positions[aapl] = broker.Position{Asset: aapl, Size: 45, AvgPrice: 100, MktPrice: 110}

	assert.Empty(t, p.Act(buySignal(), acct, tradeEvent(110)), "already long")
}

func TestFlexSkipsAssetsWithWorkingOrders(t *testing.T) {
	p := NewFlex(0.05, nil)
	acct := broker.NewAccount("USD", 100_000)

	pending := broker.NewLimitOrder(aapl, 10, 90)
	acct.Orders[pending.Id] = broker.NewOrderState(pending, t0)
	acct.Orders[pending.Id].Transition(broker.Accepted, t0)

	assert.Empty(t, p.Act(buySignal(), acct, tradeEvent(110)))
}

func TestFlexShortingGate(t *testing.T) {
	acct := broker.NewAccount("USD", 100_000)

	long := NewFlex(0.05, nil)
	assert.Empty(t, long.Act(sellSignal(), acct, tradeEvent(110)),
		"sell without a position is a no-op unless shorting is on")

	short := NewFlex(0.05, nil)
	short.Shorting = true
	orders := short.Act(sellSignal(), acct, tradeEvent(110))
	require.Len(t, orders, 1)
	assert.Equal(t, -45.0, orders[0].(broker.MarketOrder).Size)
}

func TestFlexConvertsBudgetToAssetCurrency(t *testing.T) {
	sap := market.NewAsset("SAP", "EUR")
	rates := market.NewFixedRates().Set("EUR", "USD", 1.25)

	p := NewFlex(0.05, rates)
	acct := broker.NewAccount("USD", 100_000)

	e := market.NewEvent(t0, market.TradePrice{AssetID: sap, Px: 100, Vol: 1000})
	orders := p.Act([]strategy.Signal{{Asset: sap, Rating: 1}}, acct, e)
	require.Len(t, orders, 1)
	// 5,000 USD is 4,000 EUR; at 100 EUR that is 40 units.
	assert.Equal(t, 40.0, orders[0].(broker.MarketOrder).Size)
}

func TestFlexMissingRateSkipsQuietly(t *testing.T) {
	sap := market.NewAsset("SAP", "EUR")
	p := NewFlex(0.05, nil) // single-currency rates
	acct := broker.NewAccount("USD", 100_000)

	e := market.NewEvent(t0, market.TradePrice{AssetID: sap, Px: 100, Vol: 1000})
	assert.Empty(t, p.Act([]strategy.Signal{{Asset: sap, Rating: 1}}, acct, e))
}
