// Package strategy defines the signal-generation surface consumed by the
// run loop, plus a reference EMA crossover implementation.
package strategy

import "github.com/rustyeddy/quant/market"

// Signal is a strategy's opinion about one asset. Rating is in [-1, 1]:
// positive to buy, negative to sell, magnitude is conviction.
type Signal struct {
	Asset  market.Asset
	Rating float64
}

// Buy reports whether the signal recommends increasing the position.
func (s Signal) Buy() bool { return s.Rating > 0 }

// Sell reports whether the signal recommends decreasing the position.
func (s Signal) Sell() bool { return s.Rating < 0 }

// Conflicts reports whether two signals for the same asset disagree in
// direction.
func (s Signal) Conflicts(other Signal) bool {
	return s.Asset == other.Asset && s.Rating*other.Rating < 0
}

// Strategy turns events into signals. Implementations keep internal
// indicator state; Reset must clear it completely so re-runs over the same
// data are deterministic.
type Strategy interface {
	Generate(event market.Event) []Signal
	Reset()
}
