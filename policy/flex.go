package policy

import (
	"math"

	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/strategy"
)

// Flex sizes orders as a fixed fraction of account equity. A buy signal
// opens a long when the asset has no position and no working order; a sell
// signal closes an existing long (and mirrored for shorts when Shorting is
// enabled).
type Flex struct {
	// OrderPct is the fraction of equity committed per order, e.g. 0.05.
	OrderPct float64
	// Rates values the account; it must cover every traded currency.
	Rates market.RateSource
	// Shorting permits opening short positions on sell signals.
	Shorting bool
}

func NewFlex(orderPct float64, rates market.RateSource) *Flex {
	if rates == nil {
		rates = market.SingleCurrency{}
	}
	return &Flex{OrderPct: orderPct, Rates: rates}
}

func (p *Flex) Reset() {}

func (p *Flex) Act(signals []strategy.Signal, account *broker.Account, event market.Event) []broker.Order {
	if account == nil {
		return nil
	}

	var orders []broker.Order
	for _, sig := range signals {
		asset := sig.Asset
		pos, hasPos := account.Positions[asset]

		// Close an opposing position first.
		if hasPos && (sig.Sell() && pos.Size > 0 || sig.Buy() && pos.Size < 0) {
			orders = append(orders, broker.NewMarketOrder(asset, -pos.Size))
			continue
		}
		if hasPos || account.OpenOrderFor(asset) {
			continue
		}
		if sig.Sell() && !p.Shorting {
			continue
		}

		price, ok := event.Price(asset)
		if !ok || price <= 0 {
			continue
		}
		equity, err := account.Equity(p.Rates)
		if err != nil || equity <= 0 {
			continue
		}
		budget, err := market.Convert(equity*p.OrderPct, account.BaseCurrency, asset.Currency, p.Rates, event.Time)
		if err != nil {
			continue
		}

		size := math.Trunc(budget / (price * asset.Multiplier))
		if size < 1 {
			continue
		}
		if sig.Sell() {
			size = -size
		}
		orders = append(orders, broker.NewMarketOrder(asset, size))
	}
	return orders
}
