package broker

import (
	"math"
	"time"

	"github.com/rustyeddy/quant/market"
)

// Wallet maps currencies to signed cash amounts.
type Wallet map[market.Currency]float64

// Deposit adds a signed amount; zero balances are kept out of the map.
func (w Wallet) Deposit(c market.Currency, amount float64) {
	v := w[c] + amount
	if v == 0 {
		delete(w, c)
		return
	}
	w[c] = v
}

// Convert values the whole wallet in the given currency.
func (w Wallet) Convert(to market.Currency, rates market.RateSource, at time.Time) (float64, error) {
	var total float64
	for c, amount := range w {
		v, err := market.Convert(amount, c, to, rates, at)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

// Clone returns an independent copy.
func (w Wallet) Clone() Wallet {
	out := make(Wallet, len(w))
	for c, v := range w {
		out[c] = v
	}
	return out
}

// Position is an open exposure in one asset. AvgPrice is the weighted
// average cost of the open size; it is meaningless once Size is zero, at
// which point the position is removed from the account.
type Position struct {
	Asset    market.Asset
	Size     float64
	AvgPrice float64
	MktPrice float64
	LastSeen time.Time
}

// Value returns the position's market value in the asset currency.
func (p Position) Value() float64 {
	return p.Asset.Value(p.Size, p.MktPrice)
}

// Unrealized returns the open P&L in the asset currency.
func (p Position) Unrealized() float64 {
	return p.Asset.Value(p.Size, p.MktPrice-p.AvgPrice)
}

// Account is the aggregate root for one simulation run: cash, open
// positions, and the full order table. It is mutated exclusively by the
// broker that owns it; everyone else works from a Snapshot.
type Account struct {
	BaseCurrency market.Currency
	Cash         Wallet
	Positions    map[market.Asset]Position
	Orders       map[string]*OrderState
	Time         time.Time
	RealizedPL   float64 // cumulative, in base currency
}

func NewAccount(base market.Currency, deposit float64) *Account {
	a := &Account{
		BaseCurrency: base,
		Cash:         make(Wallet),
		Positions:    make(map[market.Asset]Position),
		Orders:       make(map[string]*OrderState),
	}
	if deposit != 0 {
		a.Cash.Deposit(base, deposit)
	}
	return a
}

// Snapshot returns a deep copy safe for concurrent reads by strategies,
// policies, and metrics. Order values are copied; the Order instructions
// themselves are immutable once placed.
func (a *Account) Snapshot() *Account {
	cp := &Account{
		BaseCurrency: a.BaseCurrency,
		Cash:         a.Cash.Clone(),
		Positions:    make(map[market.Asset]Position, len(a.Positions)),
		Orders:       make(map[string]*OrderState, len(a.Orders)),
		Time:         a.Time,
		RealizedPL:   a.RealizedPL,
	}
	for k, v := range a.Positions {
		cp.Positions[k] = v
	}
	for k, v := range a.Orders {
		st := *v
		cp.Orders[k] = &st
	}
	return cp
}

// CashValue is the wallet total in base currency.
func (a *Account) CashValue(rates market.RateSource) (float64, error) {
	return a.Cash.Convert(a.BaseCurrency, rates, a.Time)
}

// PositionValue is the market value of all open positions in base currency.
func (a *Account) PositionValue(rates market.RateSource) (float64, error) {
	var total float64
	for _, p := range a.Positions {
		v, err := market.Convert(p.Value(), p.Asset.Currency, a.BaseCurrency, rates, a.Time)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

// Equity is cash plus position value in base currency.
func (a *Account) Equity(rates market.RateSource) (float64, error) {
	cash, err := a.CashValue(rates)
	if err != nil {
		return 0, err
	}
	pos, err := a.PositionValue(rates)
	if err != nil {
		return 0, err
	}
	return cash + pos, nil
}

// OpenOrders returns the states still working (non-terminal).
func (a *Account) OpenOrders() []*OrderState {
	var out []*OrderState
	for _, st := range a.Orders {
		if !st.Status.Terminal() {
			out = append(out, st)
		}
	}
	return out
}

// OpenOrderFor reports whether a non-terminal order exists for the asset.
func (a *Account) OpenOrderFor(asset market.Asset) bool {
	for _, st := range a.Orders {
		if st.Status.Terminal() {
			continue
		}
		if so, ok := orderAsset(st.Order); ok && so == asset {
			return true
		}
	}
	return false
}

func orderAsset(o Order) (market.Asset, bool) {
	switch v := o.(type) {
	case MarketOrder:
		return v.Asset, true
	case LimitOrder:
		return v.Asset, true
	case StopOrder:
		return v.Asset, true
	case TrailingStopOrder:
		return v.Asset, true
	}
	return market.Asset{}, false
}

// ApplyFill books one execution into the position table using weighted
// average cost and returns the realized P&L, in the asset currency. A fill
// that reduces or flips the position realizes the difference between fill
// price and average cost on the closed part; a flip restarts the average on
// the new side.
func (a *Account) ApplyFill(asset market.Asset, qty, price float64, now time.Time) float64 {
	p, ok := a.Positions[asset]
	if !ok {
		a.Positions[asset] = Position{
			Asset: asset, Size: qty, AvgPrice: price, MktPrice: price, LastSeen: now,
		}
		return 0
	}

	var realized float64
	newSize := p.Size + qty

	switch {
	case p.Size > 0 == (qty > 0): // extending
		p.AvgPrice = (p.AvgPrice*math.Abs(p.Size) + price*math.Abs(qty)) / math.Abs(newSize)
	case math.Abs(qty) <= math.Abs(p.Size): // reducing (or flat close)
		closed := qty
		realized = asset.Value(-closed, price-p.AvgPrice)
	default: // flipping
		realized = asset.Value(p.Size, price-p.AvgPrice)
		p.AvgPrice = price
	}

	p.Size = newSize
	p.MktPrice = price
	p.LastSeen = now

	if math.Abs(p.Size) < 1e-9 {
		delete(a.Positions, asset)
	} else {
		a.Positions[asset] = p
	}
	return realized
}

// MarkToMarket refreshes position market prices from the event.
func (a *Account) MarkToMarket(e market.Event) {
	for asset, p := range a.Positions {
		if px, ok := e.Price(asset); ok {
			p.MktPrice = px
			p.LastSeen = e.Time
			a.Positions[asset] = p
		}
	}
}
