package sim

import "math"

// FeeModel computes the transaction cost of one fill, expressed in the
// instrument's currency. Models are pure functions of quantity and price and
// are applied once per fill.
type FeeModel interface {
	Fee(qty, price float64) float64
}

// NoFee charges nothing.
type NoFee struct{}

func (NoFee) Fee(qty, price float64) float64 { return 0 }

// PercentageFee charges a fraction of the fill notional, e.g. 0.001 for 10
// basis points.
type PercentageFee struct {
	Rate float64
}

func (f PercentageFee) Fee(qty, price float64) float64 {
	return math.Abs(qty*price) * f.Rate
}

// PerUnitFee charges a fixed amount per unit traded.
type PerUnitFee struct {
	Amount float64
}

func (f PerUnitFee) Fee(qty, price float64) float64 {
	return math.Abs(qty) * f.Amount
}
