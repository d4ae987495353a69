package market

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoRate is returned when no conversion rate is known for a currency
// pair. Missing rates are a hard error, never a silent 1.0.
var ErrNoRate = errors.New("no exchange rate")

// RateSource converts amounts between currencies at a point in time. It is
// read-only configuration: implementations must be safe for concurrent use
// by parallel runs.
type RateSource interface {
	Rate(from, to Currency, at time.Time) (float64, error)
}

// Convert turns an amount in one currency into another using the source.
// Identity conversions never consult the source.
func Convert(amount float64, from, to Currency, rates RateSource, at time.Time) (float64, error) {
	if from == to || amount == 0 {
		return amount, nil
	}
	r, err := rates.Rate(from, to, at)
	if err != nil {
		return 0, err
	}
	return amount * r, nil
}

type pair struct {
	from, to Currency
}

// FixedRates is a time-invariant rate table. Setting a pair also derives the
// inverse so EUR→USD and USD→EUR stay consistent.
type FixedRates struct {
	rates map[pair]float64
}

func NewFixedRates() *FixedRates {
	return &FixedRates{rates: make(map[pair]float64)}
}

func (f *FixedRates) Set(from, to Currency, rate float64) *FixedRates {
	f.rates[pair{from, to}] = rate
	if rate != 0 {
		f.rates[pair{to, from}] = 1 / rate
	}
	return f
}

func (f *FixedRates) Rate(from, to Currency, _ time.Time) (float64, error) {
	if from == to {
		return 1, nil
	}
	r, ok := f.rates[pair{from, to}]
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s", ErrNoRate, from, to)
	}
	return r, nil
}

// SingleCurrency rejects every non-identity conversion. It is the right
// source for single-currency runs where a conversion would indicate a bug.
type SingleCurrency struct{}

func (SingleCurrency) Rate(from, to Currency, _ time.Time) (float64, error) {
	if from == to {
		return 1, nil
	}
	return 0, fmt.Errorf("%w: %s/%s (single-currency run)", ErrNoRate, from, to)
}
