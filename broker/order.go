// Package broker defines the trading instructions, the per-order lifecycle
// state machine, and the account aggregate that one simulation run mutates.
package broker

import (
	"fmt"

	"github.com/rustyeddy/quant/internal/id"
	"github.com/rustyeddy/quant/market"
)

// TimeInForce controls how long a working order stays valid.
type TimeInForce int8

const (
	// GTC orders stay working until filled or cancelled.
	GTC TimeInForce = iota
	// Day orders expire when the trading day of their creation ends.
	Day
)

func (t TimeInForce) String() string {
	if t == Day {
		return "DAY"
	}
	return "GTC"
}

// Order is one trading instruction. The set of implementations is closed;
// the simulated broker switches exhaustively over it. Size is signed:
// positive buys, negative sells. Orders are created by a policy and owned by
// the broker from the moment they are placed.
type Order interface {
	ID() string
	order()
}

// SingleOrder carries the fields shared by all tradable order variants.
type SingleOrder struct {
	Id    string
	Asset market.Asset
	Size  float64
	TIF   TimeInForce
}

func (o SingleOrder) ID() string { return o.Id }
func (o SingleOrder) order()     {}

// Buy reports whether the order increases the position.
func (o SingleOrder) Buy() bool { return o.Size > 0 }

// Direction returns +1 for buys and -1 for sells.
func (o SingleOrder) Direction() float64 {
	if o.Size < 0 {
		return -1
	}
	return 1
}

// MarketOrder fills fully at the next available price plus slippage.
type MarketOrder struct {
	SingleOrder
}

func NewMarketOrder(asset market.Asset, size float64) MarketOrder {
	return MarketOrder{SingleOrder{Id: id.New(), Asset: asset, Size: size}}
}

// LimitOrder fills only when the market crosses the limit: buys at or below,
// sells at or above.
type LimitOrder struct {
	SingleOrder
	Limit float64
}

func NewLimitOrder(asset market.Asset, size, limit float64) LimitOrder {
	return LimitOrder{SingleOrder{Id: id.New(), Asset: asset, Size: size}, limit}
}

// StopOrder becomes a market order once the stop price is crossed: buys
// trigger at or above the stop, sells at or below.
type StopOrder struct {
	SingleOrder
	Stop float64
}

func NewStopOrder(asset market.Asset, size, stop float64) StopOrder {
	return StopOrder{SingleOrder{Id: id.New(), Asset: asset, Size: size}, stop}
}

// TrailingStopOrder is a stop whose trigger follows the price at a fixed
// fractional distance, ratcheting only in the favorable direction.
type TrailingStopOrder struct {
	SingleOrder
	Trail float64 // fraction of price, e.g. 0.05 for 5%
}

func NewTrailingStopOrder(asset market.Asset, size, trail float64) TrailingStopOrder {
	return TrailingStopOrder{SingleOrder{Id: id.New(), Asset: asset, Size: size}, trail}
}

// BracketOrder composes an entry with protective exits. The children become
// active once the entry completes; the first child to fill cancels its
// sibling.
type BracketOrder struct {
	Id         string
	Entry      Order
	TakeProfit Order
	StopLoss   Order
}

func (o BracketOrder) ID() string { return o.Id }
func (o BracketOrder) order()     {}

func NewBracketOrder(entry, takeProfit, stopLoss Order) BracketOrder {
	return BracketOrder{Id: id.New(), Entry: entry, TakeProfit: takeProfit, StopLoss: stopLoss}
}

// CancelOrder asks the broker to cancel a working order by id. Cancelling an
// already-terminal order is reported on the instruction's own state, not
// fatal.
type CancelOrder struct {
	Id     string
	Target string
}

func (o CancelOrder) ID() string { return o.Id }
func (o CancelOrder) order()     {}

func NewCancelOrder(target string) CancelOrder {
	return CancelOrder{Id: id.New(), Target: target}
}

// UpdateOrder replaces the size and, where applicable, the limit of a
// working order in place. The target keeps its id and fill history. The new
// size must keep the order's direction and must not fall below the quantity
// already filled.
type UpdateOrder struct {
	Id     string
	Target string
	Size   float64
	Limit  float64
}

func (o UpdateOrder) ID() string { return o.Id }
func (o UpdateOrder) order()     {}

func NewUpdateOrder(target string, size, limit float64) UpdateOrder {
	return UpdateOrder{Id: id.New(), Target: target, Size: size, Limit: limit}
}

// Describe returns a short human-readable tag for logs and journals.
func Describe(o Order) string {
	switch v := o.(type) {
	case MarketOrder:
		return fmt.Sprintf("MARKET %s %+.2f", v.Asset.Symbol, v.Size)
	case LimitOrder:
		return fmt.Sprintf("LIMIT %s %+.2f @%.4f", v.Asset.Symbol, v.Size, v.Limit)
	case StopOrder:
		return fmt.Sprintf("STOP %s %+.2f @%.4f", v.Asset.Symbol, v.Size, v.Stop)
	case TrailingStopOrder:
		return fmt.Sprintf("TRAIL %s %+.2f %.2f%%", v.Asset.Symbol, v.Size, v.Trail*100)
	case BracketOrder:
		return fmt.Sprintf("BRACKET %s", v.Id)
	case CancelOrder:
		return fmt.Sprintf("CANCEL %s", v.Target)
	case UpdateOrder:
		return fmt.Sprintf("UPDATE %s %+.2f", v.Target, v.Size)
	default:
		return "UNKNOWN"
	}
}
