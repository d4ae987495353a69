package policy

import (
	"time"

	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/strategy"
)

// CircuitBreaker suppresses a policy's output once it has emitted more than
// maxOrders orders within a rolling window. It protects a run from a
// misbehaving policy flooding the broker.
type CircuitBreaker struct {
	inner     Policy
	maxOrders int
	window    time.Duration
	history   []time.Time
}

func NewCircuitBreaker(inner Policy, maxOrders int, window time.Duration) *CircuitBreaker {
	return &CircuitBreaker{inner: inner, maxOrders: maxOrders, window: window}
}

func (p *CircuitBreaker) Reset() {
	p.history = p.history[:0]
	p.inner.Reset()
}

func (p *CircuitBreaker) Act(signals []strategy.Signal, account *broker.Account, event market.Event) []broker.Order {
	orders := p.inner.Act(signals, account, event)
	if len(orders) == 0 {
		return nil
	}

	cutoff := event.Time.Add(-p.window)
	keep := p.history[:0]
	for _, t := range p.history {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	p.history = keep

	if len(p.history)+len(orders) > p.maxOrders {
		// Tripped: drop the whole batch, the window must cool down.
		return nil
	}
	for range orders {
		p.history = append(p.history, event.Time)
	}
	return orders
}
