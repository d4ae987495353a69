package policy

import (
	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/strategy"
)

// Resolution dedups the signals handed to a policy when several strategies
// (or one chatty strategy) rate the same asset within one event.
type Resolution int8

const (
	// First keeps the first signal per asset.
	First Resolution = iota
	// Last keeps the last signal per asset.
	Last
	// NoDuplicates drops every signal for an asset that got more than one.
	NoDuplicates
	// NoConflicts drops signals for assets with disagreeing directions,
	// keeping the first of agreeing duplicates.
	NoConflicts
)

// Resolver filters signals through a resolution rule before the inner
// policy sees them.
type Resolver struct {
	inner Policy
	rule  Resolution
}

func NewResolver(inner Policy, rule Resolution) *Resolver {
	return &Resolver{inner: inner, rule: rule}
}

func (p *Resolver) Reset() { p.inner.Reset() }

func (p *Resolver) Act(signals []strategy.Signal, account *broker.Account, event market.Event) []broker.Order {
	return p.inner.Act(resolve(signals, p.rule), account, event)
}

func resolve(signals []strategy.Signal, rule Resolution) []strategy.Signal {
	if len(signals) < 2 {
		return signals
	}

	switch rule {
	case Last:
		seen := make(map[market.Asset]int, len(signals))
		var out []strategy.Signal
		for _, s := range signals {
			if i, ok := seen[s.Asset]; ok {
				out[i] = s
				continue
			}
			seen[s.Asset] = len(out)
			out = append(out, s)
		}
		return out

	case NoDuplicates:
		count := make(map[market.Asset]int, len(signals))
		for _, s := range signals {
			count[s.Asset]++
		}
		var out []strategy.Signal
		for _, s := range signals {
			if count[s.Asset] == 1 {
				out = append(out, s)
			}
		}
		return out

	case NoConflicts:
		conflicted := make(map[market.Asset]bool)
		first := make(map[market.Asset]strategy.Signal)
		for _, s := range signals {
			if prev, ok := first[s.Asset]; ok {
				if s.Conflicts(prev) {
					conflicted[s.Asset] = true
				}
				continue
			}
			first[s.Asset] = s
		}
		var out []strategy.Signal
		seen := make(map[market.Asset]bool)
		for _, s := range signals {
			if conflicted[s.Asset] || seen[s.Asset] {
				continue
			}
			seen[s.Asset] = true
			out = append(out, s)
		}
		return out

	default: // First
		seen := make(map[market.Asset]bool, len(signals))
		var out []strategy.Signal
		for _, s := range signals {
			if seen[s.Asset] {
				continue
			}
			seen[s.Asset] = true
			out = append(out, s)
		}
		return out
	}
}
