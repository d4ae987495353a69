// Package backtest drives the simulation loop: events from a feed flow
// through strategy, policy, broker, and metrics, with support for
// walk-forward windows and parallel isolated runs.
package backtest

import (
	"context"
	"fmt"

	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/feed"
	"github.com/rustyeddy/quant/internal/id"
	"github.com/rustyeddy/quant/journal"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/metric"
	"github.com/rustyeddy/quant/policy"
	"github.com/rustyeddy/quant/strategy"
)

// Runner owns one simulation pipeline. It may execute many runs
// sequentially (each preceded by a full reset), but a single Runner must
// never be shared by concurrent runs; use a factory (see MonteCarlo) for
// parallelism.
type Runner struct {
	Feed     feed.Feed
	Strategy strategy.Strategy
	Policy   policy.Policy
	Broker   broker.Broker
	Metrics  []metric.Metric
	Journal  journal.Journal

	// Rates values the account for the per-step equity journal record.
	Rates market.RateSource
	// Capacity is the event channel buffer size; 0 means
	// feed.DefaultCapacity.
	Capacity int
}

func NewRunner(f feed.Feed, s strategy.Strategy, p policy.Policy, b broker.Broker) *Runner {
	return &Runner{
		Feed:     f,
		Strategy: s,
		Policy:   p,
		Broker:   b,
		Journal:  journal.Nop{},
		Rates:    market.SingleCurrency{},
	}
}

// Run executes one MAIN-phase run over the feed's whole timeframe.
func (r *Runner) Run(ctx context.Context) *Result {
	return r.RunWindow(ctx, RunContext{
		RunID:     id.New(),
		Phase:     Main,
		Timeframe: r.Feed.Timeframe(),
	})
}

// RunWindow executes one isolated run bounded to the context's timeframe.
// The strategy, policy, and broker are reset first, so the run starts from
// a fresh account and clean indicator state. The returned result always
// carries a final account snapshot; Err explains any early termination.
func (r *Runner) RunWindow(ctx context.Context, rc RunContext) (res *Result) {
	res = &Result{
		RunID:     rc.RunID,
		Phase:     rc.Phase,
		Timeframe: rc.Timeframe,
		Metrics:   make(map[string]float64),
	}

	// A collaborator panic aborts this run only; the account snapshot
	// taken below reflects the last completed step.
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("run %s: panic: %v", rc.RunID, p)
		}
		if res.Account == nil {
			res.Account = r.Broker.Account()
		}
	}()

	r.Strategy.Reset()
	r.Policy.Reset()
	r.Broker.Reset()
	if tagged, ok := r.Broker.(interface{ SetRun(string) }); ok {
		tagged.SetRun(rc.RunID)
	}

	ch := feed.NewChannel(r.Capacity, rc.Timeframe)
	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	playErr := make(chan error, 1)
	go func() {
		err := r.Feed.Play(playCtx, ch)
		ch.Close()
		playErr <- err
	}()
	// Unblock the producer before waiting for it, whatever path exits the
	// loop below.
	defer func() {
		cancel()
		ch.Close()
		if perr := <-playErr; perr != nil && res.Err == nil {
			res.Err = fmt.Errorf("feed: %w", perr)
		}
		res.Account = r.Broker.Account()
	}()

	acct := r.Broker.Account()

	for {
		event, err := ch.Receive(ctx)
		if err == feed.ErrChannelClosed {
			return res
		}
		if err != nil {
			// Cancelled mid-stream: discard the partial step, mutate
			// nothing further.
			res.Err = err
			return res
		}

		signals := r.Strategy.Generate(event)
		orders := r.Policy.Act(signals, acct, event)

		acct, err = r.Broker.Place(orders, event)
		if err != nil {
			res.Err = fmt.Errorf("place at %s: %w", event.Time, err)
			return res
		}

		for _, m := range r.Metrics {
			for name, value := range m.Calculate(acct, event) {
				res.Metrics[name] = value
				if err := r.Journal.RecordMetric(journal.MetricSample{
					RunID: rc.RunID, Time: event.Time, Name: name, Value: value,
				}); err != nil {
					res.Err = fmt.Errorf("journal metric: %w", err)
					return res
				}
			}
		}

		if err := r.recordEquity(rc.RunID, acct, event); err != nil {
			res.Err = err
			return res
		}

		res.Steps++
	}
}

func (r *Runner) recordEquity(runID string, acct *broker.Account, event market.Event) error {
	cash, err := acct.CashValue(r.Rates)
	if err != nil {
		return fmt.Errorf("value cash: %w", err)
	}
	pos, err := acct.PositionValue(r.Rates)
	if err != nil {
		return fmt.Errorf("value positions: %w", err)
	}
	return r.Journal.RecordEquity(journal.EquitySnapshot{
		RunID:         runID,
		Time:          event.Time,
		Cash:          cash,
		PositionValue: pos,
		Equity:        cash + pos,
	})
}
