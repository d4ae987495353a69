package sim

import (
	"math"

	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/market"
)

// execution is the broker-private state of one working order: the current
// order value (Update replaces it in place), the shared lifecycle state, and
// order-type specifics like the trailing trigger. Bracket relations are kept
// as ids into the execution table, never as direct references.
type execution struct {
	order broker.Order
	state *broker.OrderState

	trail     float64 // current trailing-stop trigger, 0 until primed
	triggered bool    // stop variants: trigger crossed, now marketable

	waitFor string // bracket child: entry id that must complete first
	sibling string // bracket child: id cancelled when this one fills
	parent  string // bracket child/entry: parent order id
}

// singleOf extracts the shared fields of a tradable order variant.
func singleOf(o broker.Order) (broker.SingleOrder, bool) {
	switch v := o.(type) {
	case broker.MarketOrder:
		return v.SingleOrder, true
	case broker.LimitOrder:
		return v.SingleOrder, true
	case broker.StopOrder:
		return v.SingleOrder, true
	case broker.TrailingStopOrder:
		return v.SingleOrder, true
	}
	return broker.SingleOrder{}, false
}

// applyUpdate replaces size (and limit, where the variant has one) of a
// working order in place. The id and fill history are untouched. It reports
// whether the target variant supports updates.
func applyUpdate(x *execution, u broker.UpdateOrder) bool {
	switch o := x.order.(type) {
	case broker.MarketOrder:
		if u.Size != 0 {
			o.Size = u.Size
		}
		x.order = o
	case broker.LimitOrder:
		if u.Size != 0 {
			o.Size = u.Size
		}
		if u.Limit > 0 {
			o.Limit = u.Limit
		}
		x.order = o
	case broker.StopOrder:
		if u.Size != 0 {
			o.Size = u.Size
		}
		x.order = o
	case broker.TrailingStopOrder:
		if u.Size != 0 {
			o.Size = u.Size
		}
		x.order = o
	default:
		return false
	}
	x.state.Order = x.order
	return true
}

// tryFill decides whether the order fills against the item and at what
// price. It returns qty == 0 when the order stays working. volumeLimit > 0
// caps a single fill to that fraction of the item's volume, producing
// partial fills.
func (x *execution) tryFill(item market.PriceItem, pricing Pricing, volumeLimit float64) (qty, price float64) {
	switch o := x.order.(type) {
	case broker.MarketOrder:
		qty = x.state.Remaining(o.Size)
		price = pricing.Price(qty, item)

	case broker.LimitOrder:
		rem := x.state.Remaining(o.Size)
		if !limitCrossed(rem, o.Limit, item) {
			return 0, 0
		}
		qty = rem
		price = limitPrice(rem, o.Limit, item)

	case broker.StopOrder:
		rem := x.state.Remaining(o.Size)
		if !x.triggered && stopCrossed(rem, o.Stop, item) {
			x.triggered = true
		}
		if !x.triggered {
			return 0, 0
		}
		qty = rem
		price = pricing.Price(qty, item)

	case broker.TrailingStopOrder:
		rem := x.state.Remaining(o.Size)
		x.ratchet(rem, o.Trail, item)
		if !x.triggered && stopCrossed(rem, x.trail, item) {
			x.triggered = true
		}
		if !x.triggered {
			return 0, 0
		}
		qty = rem
		price = pricing.Price(qty, item)

	default:
		return 0, 0
	}

	if qty == 0 {
		return 0, 0
	}
	if volumeLimit > 0 && item.Volume() > 0 {
		most := volumeLimit * item.Volume()
		if math.Abs(qty) > most {
			qty = math.Copysign(most, qty)
		}
	}
	return qty, price
}

// ratchet moves the trailing trigger with the price, favorably only. A sell
// trailing stop (protecting a long) trails below the price and only rises; a
// buy trailing stop trails above and only falls.
func (x *execution) ratchet(qty, trail float64, item market.PriceItem) {
	ref := item.Price(market.DefaultPrice)
	if qty < 0 {
		cand := ref * (1 - trail)
		if x.trail == 0 || cand > x.trail {
			x.trail = cand
		}
		return
	}
	cand := ref * (1 + trail)
	if x.trail == 0 || cand < x.trail {
		x.trail = cand
	}
}

// limitCrossed uses the bar extremes (falling back to the item's default
// price) to decide whether the market traded through the limit.
func limitCrossed(qty, limit float64, item market.PriceItem) bool {
	if qty > 0 {
		return item.Price(market.LowPrice) <= limit
	}
	return item.Price(market.HighPrice) >= limit
}

// limitPrice fills a buy at min(limit, market) and a sell at max(limit,
// market): the limit is the worst price the order can receive.
func limitPrice(qty, limit float64, item market.PriceItem) float64 {
	mkt := sidePrice(qty, item)
	if qty > 0 {
		return math.Min(limit, mkt)
	}
	return math.Max(limit, mkt)
}

// stopCrossed: buy stops trigger at or above the stop, sell stops at or
// below.
func stopCrossed(qty, stop float64, item market.PriceItem) bool {
	if stop == 0 {
		return false
	}
	if qty > 0 {
		return item.Price(market.HighPrice) >= stop
	}
	return item.Price(market.LowPrice) <= stop
}
