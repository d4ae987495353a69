package sim

import "github.com/rustyeddy/quant/market"

// Pricing derives an execution price from a price item for a signed
// quantity. Implementations model slippage; they must be pure so replays
// stay deterministic.
type Pricing interface {
	// Price returns the execution price for a fill of qty (signed) against
	// the item. Buys pay the ask side, sells receive the bid side when the
	// item carries one.
	Price(qty float64, item market.PriceItem) float64
}

// NoCost executes at the item's side price with zero slippage: quotes fill
// at bid/ask, everything else at the default price. The right engine for
// idealized tests.
type NoCost struct{}

func (NoCost) Price(qty float64, item market.PriceItem) float64 {
	return sidePrice(qty, item)
}

// SpreadPricing applies a fixed half-spread in basis points around the side
// price: buys pay up, sells receive less.
type SpreadPricing struct {
	Bps float64 // full spread in basis points, half applied per side
}

func (s SpreadPricing) Price(qty float64, item market.PriceItem) float64 {
	price := sidePrice(qty, item)
	half := s.Bps / 2 / 10_000
	if qty > 0 {
		return price * (1 + half)
	}
	return price * (1 - half)
}

func sidePrice(qty float64, item market.PriceItem) float64 {
	if qty > 0 {
		return item.Price(market.AskPrice)
	}
	return item.Price(market.BidPrice)
}
