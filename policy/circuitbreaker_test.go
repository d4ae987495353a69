package policy

import (
	"testing"
	"time"

	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/strategy"
	"github.com/stretchr/testify/assert"
)

// chatty emits one market order per call.
type chatty struct{}

func (chatty) Act(signals []strategy.Signal, account *broker.Account, event market.Event) []broker.Order {
	return []broker.Order{broker.NewMarketOrder(aapl, 1)}
}

func (chatty) Reset() {}

func TestCircuitBreakerTripsAtLimit(t *testing.T) {
	p := NewCircuitBreaker(chatty{}, 3, time.Hour)
	acct := broker.NewAccount("USD", 1000)

	at := func(i int) market.Event {
		return market.NewEvent(t0.Add(time.Duration(i)*time.Minute),
			market.TradePrice{AssetID: aapl, Px: 100, Vol: 100})
	}

	for i := 0; i < 3; i++ {
		assert.Len(t, p.Act(nil, acct, at(i)), 1)
	}
	assert.Empty(t, p.Act(nil, acct, at(3)), "fourth order within the hour is suppressed")
}

func TestCircuitBreakerRecoversAfterWindow(t *testing.T) {
	p := NewCircuitBreaker(chatty{}, 2, time.Hour)
	acct := broker.NewAccount("USD", 1000)

	at := func(d time.Duration) market.Event {
		return market.NewEvent(t0.Add(d), market.TradePrice{AssetID: aapl, Px: 100, Vol: 100})
	}

	assert.Len(t, p.Act(nil, acct, at(0)), 1)
	assert.Len(t, p.Act(nil, acct, at(time.Minute)), 1)
	assert.Empty(t, p.Act(nil, acct, at(2*time.Minute)))

	// Both earlier orders have aged out of the rolling window.
	assert.Len(t, p.Act(nil, acct, at(2*time.Hour)), 1)
}

func TestCircuitBreakerDropsWholeBatch(t *testing.T) {
	// A policy emitting two orders per call against a limit of 3: the
	// second batch would overflow, so neither of its orders passes.
	double := policyFunc(func() []broker.Order {
		return []broker.Order{broker.NewMarketOrder(aapl, 1), broker.NewMarketOrder(aapl, 1)}
	})
	p := NewCircuitBreaker(double, 3, time.Hour)
	acct := broker.NewAccount("USD", 1000)

	assert.Len(t, p.Act(nil, acct, tradeEvent(100)), 2)
	assert.Empty(t, p.Act(nil, acct, tradeEvent(100)))
}

func TestCircuitBreakerResetClearsHistory(t *testing.T) {
	p := NewCircuitBreaker(chatty{}, 1, time.Hour)
	acct := broker.NewAccount("USD", 1000)

	assert.Len(t, p.Act(nil, acct, tradeEvent(100)), 1)
	assert.Empty(t, p.Act(nil, acct, tradeEvent(100)))

	p.Reset()
	assert.Len(t, p.Act(nil, acct, tradeEvent(100)), 1)
}

type policyFunc func() []broker.Order

func (f policyFunc) Act([]strategy.Signal, *broker.Account, market.Event) []broker.Order {
	return f()
}

func (policyFunc) Reset() {}
