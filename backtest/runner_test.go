package backtest

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/feed"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/metric"
	"github.com/rustyeddy/quant/sim"
	"github.com/rustyeddy/quant/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	aapl = market.NewAsset("AAPL", "USD")
	t0   = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
)

// trendFeed is 100 hourly trade prints walking up from 100.
func trendFeed() *feed.HistoricFeed {
	f := feed.NewHistoricFeed()
	for i := 0; i < 100; i++ {
		f.AddTrade(t0.Add(time.Duration(i)*time.Hour), aapl, 100+float64(i), 1000)
	}
	return f
}

// buyAtStep signals a buy on exactly one event.
type buyAtStep struct {
	at   int
	seen int
}

func (s *buyAtStep) Generate(event market.Event) []strategy.Signal {
	s.seen++
	if s.seen-1 == s.at {
		return []strategy.Signal{{Asset: aapl, Rating: 1}}
	}
	return nil
}

func (s *buyAtStep) Reset() { s.seen = 0 }

// fixedSize turns every buy signal into a market order for a fixed quantity,
// at most once per run.
type fixedSize struct {
	qty    float64
	placed bool
	acts   int
	onAct  func(step int)
}

func (p *fixedSize) Act(signals []strategy.Signal, account *broker.Account, event market.Event) []broker.Order {
	p.acts++
	if p.onAct != nil {
		p.onAct(p.acts)
	}
	if p.placed {
		return nil
	}
	for _, s := range signals {
		if s.Buy() {
			p.placed = true
			return []broker.Order{broker.NewMarketOrder(s.Asset, p.qty)}
		}
	}
	return nil
}

func (p *fixedSize) Reset() { p.placed = false; p.acts = 0 }

// panicAtStep blows up inside signal generation.
type panicAtStep struct {
	at   int
	seen int
}

func (s *panicAtStep) Generate(event market.Event) []strategy.Signal {
	s.seen++
	if s.seen-1 == s.at {
		panic("indicator out of range")
	}
	return nil
}

func (s *panicAtStep) Reset() { s.seen = 0 }

func newTrendRunner(t *testing.T) *Runner {
	t.Helper()
	b := sim.New(sim.Config{Deposit: 100_000})
	r := NewRunner(trendFeed(), &buyAtStep{at: 10}, &fixedSize{qty: 10}, b)
	r.Metrics = []metric.Metric{metric.NewAccountMetric(nil)}
	return r
}

func TestRunBuySignalFillsAtSignalPrice(t *testing.T) {
	r := newTrendRunner(t)
	res := r.Run(context.Background())

	require.NoError(t, res.Err)
	assert.Equal(t, 100, res.Steps)
	assert.Equal(t, Main, res.Phase)

	require.NotNil(t, res.Account)
	pos := res.Account.Positions[aapl]
	assert.Equal(t, 10.0, pos.Size)
	assert.Equal(t, 110.0, pos.AvgPrice, "filled on the same event that produced the signal")

	// Cash paid for the fill, position marked to the last trade.
	assert.InDelta(t, 100_000-1100, res.Account.Cash["USD"], 1e-9)
	assert.InDelta(t, 199.0, pos.MktPrice, 1e-9)
	assert.InDelta(t, 100_000-1100+10*199, res.Metrics["account.equity"], 1e-9)
}

func TestRunIsDeterministic(t *testing.T) {
	r := newTrendRunner(t)

	first := r.Run(context.Background())
	second := r.Run(context.Background())

	require.NoError(t, first.Err)
	require.NoError(t, second.Err)
	assert.Equal(t, first.Steps, second.Steps)
	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Equal(t, first.Account.Positions[aapl], second.Account.Positions[aapl])
	assert.Equal(t, first.Account.Cash, second.Account.Cash)
}

func TestRunStopsOnCancellation(t *testing.T) {
	r := newTrendRunner(t)
	r.Capacity = 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pol := r.Policy.(*fixedSize)
	pol.onAct = func(step int) {
		if step == 10 {
			cancel()
		}
	}

	res := r.Run(ctx)

	// A few buffered events may still drain, but the run stops well short
	// of the full feed and every counted step ran the whole pipeline.
	assert.GreaterOrEqual(t, res.Steps, 10)
	assert.Less(t, res.Steps, 20)
	assert.Equal(t, res.Steps, pol.acts)
	require.NotNil(t, res.Account, "the last completed step's account survives")
}

func TestRunContainsPanic(t *testing.T) {
	b := sim.New(sim.Config{Deposit: 100_000})
	r := NewRunner(trendFeed(), &panicAtStep{at: 5}, &fixedSize{qty: 10}, b)

	res := r.Run(context.Background())

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "panic")
	assert.Contains(t, res.Err.Error(), "indicator out of range")
	require.NotNil(t, res.Account)
	assert.Equal(t, 5, res.Steps, "steps before the panic are kept")

	// The runner is still usable; the next run resets and completes.
	r.Strategy = &buyAtStep{at: 10}
	res = r.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, 100, res.Steps)
}

func TestWalkForwardPartitionsEveryEventOnce(t *testing.T) {
	r := newTrendRunner(t)

	results, err := r.WalkForward(context.Background(), 4, 0)
	require.NoError(t, err)
	require.Len(t, results, 4)

	total := 0
	for _, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, Main, res.Phase)
		assert.Greater(t, res.Steps, 0)
		total += res.Steps
	}
	assert.Equal(t, 100, total, "contiguous windows see each event exactly once")
}

func TestWalkForwardValidationSplit(t *testing.T) {
	r := newTrendRunner(t)

	results, err := r.WalkForward(context.Background(), 3, 0.25)
	require.NoError(t, err)
	require.Len(t, results, 6)

	var train, validation, total int
	for _, res := range results {
		require.NoError(t, res.Err)
		total += res.Steps
		switch res.Phase {
		case Train:
			train++
		case Validation:
			validation++
		default:
			t.Fatalf("unexpected phase %v", res.Phase)
		}
	}
	assert.Equal(t, 3, train)
	assert.Equal(t, 3, validation)
	assert.Equal(t, 100, total, "train and validation partition each window")
}

func TestWalkForwardRejectsBadInput(t *testing.T) {
	r := newTrendRunner(t)

	_, err := r.WalkForward(context.Background(), 4, 1.0)
	assert.Error(t, err)

	r.Feed = feed.NewHistoricFeed() // empty, unbounded timeframe
	_, err = r.WalkForward(context.Background(), 4, 0)
	assert.Error(t, err)
}

func TestMonteCarloRunsAreIsolated(t *testing.T) {
	shared := trendFeed() // immutable, safe to share across runs

	factory := func() *Runner {
		b := sim.New(sim.Config{Deposit: 100_000})
		return NewRunner(shared, &buyAtStep{at: 3}, &fixedSize{qty: 10}, b)
	}

	results, err := MonteCarlo(context.Background(), factory, 8, 24*time.Hour, 7)
	require.NoError(t, err)
	require.Len(t, results, 8)
	require.Empty(t, results.Failed())

	for _, res := range results {
		assert.Equal(t, Main, res.Phase)
		require.NotNil(t, res.Account)
		// Each run starts from its own fresh deposit; cross-run state
		// leakage would compound cash across accounts.
		cash := res.Account.Cash["USD"]
		assert.LessOrEqual(t, cash, 100_000.0)
		assert.Greater(t, cash, 90_000.0)
	}
}

func TestMonteCarloSeedReproducesWindows(t *testing.T) {
	shared := trendFeed()
	factory := func() *Runner {
		return NewRunner(shared, &buyAtStep{at: 3}, &fixedSize{qty: 10},
			sim.New(sim.Config{Deposit: 100_000}))
	}

	sample := func() []market.Timeframe {
		results, err := MonteCarlo(context.Background(), factory, 5, 24*time.Hour, 42)
		require.NoError(t, err)
		out := make([]market.Timeframe, 0, len(results))
		for _, res := range results {
			out = append(out, res.Timeframe)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
		return out
	}

	assert.Equal(t, sample(), sample(), "same seed, same windows")
}
