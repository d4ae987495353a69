// Package metric samples account statistics once per step. Metric names use
// dotted namespaces, e.g. "account.equity".
package metric

import (
	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/market"
)

// Metric computes named values from the account snapshot after each step.
// Implementations must treat the account as read-only.
type Metric interface {
	Calculate(account *broker.Account, event market.Event) map[string]float64
}

// AccountMetric reports the account's headline numbers.
type AccountMetric struct {
	Rates market.RateSource
}

func NewAccountMetric(rates market.RateSource) *AccountMetric {
	if rates == nil {
		rates = market.SingleCurrency{}
	}
	return &AccountMetric{Rates: rates}
}

func (m *AccountMetric) Calculate(account *broker.Account, event market.Event) map[string]float64 {
	out := make(map[string]float64, 5)

	if cash, err := account.CashValue(m.Rates); err == nil {
		out["account.cash"] = cash
	}
	if pos, err := account.PositionValue(m.Rates); err == nil {
		out["account.positions"] = pos
	}
	if eq, err := account.Equity(m.Rates); err == nil {
		out["account.equity"] = eq
	}
	out["account.orders.open"] = float64(len(account.OpenOrders()))
	out["account.realized_pl"] = account.RealizedPL

	return out
}
