package sim

import (
	"math"

	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/market"
)

// AccountModel computes buying power: the maximum additional notional (in
// the account's base currency) the account may commit to new orders.
type AccountModel interface {
	BuyingPower(a *broker.Account, rates market.RateSource) (float64, error)
}

// CashAccount permits no leverage: buying power is the cash on hand.
type CashAccount struct{}

func (CashAccount) BuyingPower(a *broker.Account, rates market.RateSource) (float64, error) {
	return a.CashValue(rates)
}

// MarginAccount permits a leverage multiple of equity, reduced by the gross
// exposure of open positions.
type MarginAccount struct {
	Leverage float64 // e.g. 4 for 4:1
}

func (m MarginAccount) BuyingPower(a *broker.Account, rates market.RateSource) (float64, error) {
	lev := m.Leverage
	if lev < 1 {
		lev = 1
	}
	equity, err := a.Equity(rates)
	if err != nil {
		return 0, err
	}
	var exposure float64
	for _, p := range a.Positions {
		v, err := market.Convert(p.Value(), p.Asset.Currency, a.BaseCurrency, rates, a.Time)
		if err != nil {
			return 0, err
		}
		exposure += math.Abs(v)
	}
	return equity*lev - exposure, nil
}
