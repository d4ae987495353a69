package backtest

import (
	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/market"
)

// Phase labels what a run's output is used for.
type Phase int8

const (
	Main Phase = iota
	Train
	Validation
)

func (p Phase) String() string {
	switch p {
	case Train:
		return "TRAIN"
	case Validation:
		return "VALIDATION"
	default:
		return "MAIN"
	}
}

// RunContext identifies one isolated execution: no state is shared between
// concurrent run contexts.
type RunContext struct {
	RunID     string
	Phase     Phase
	Timeframe market.Timeframe
}

// Result is the outcome of one finished run. Account is the final immutable
// snapshot; it is always present, even for runs that terminated early, and
// Err carries the reason when they did.
type Result struct {
	RunID     string
	Phase     Phase
	Timeframe market.Timeframe
	Account   *broker.Account
	Steps     int
	Metrics   map[string]float64 // last calculated value per metric name
	Err       error
}

// Results is a keyed result set collected after each run finished.
type Results map[string]*Result

// Failed returns the results whose runs terminated with an error.
func (r Results) Failed() []*Result {
	var out []*Result
	for _, res := range r {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}
