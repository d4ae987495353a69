package backtest

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rustyeddy/quant/internal/id"
)

// WalkForward partitions the feed's timeframe into n contiguous windows and
// executes one isolated run per window, sequentially. With validation > 0,
// each window is split into a TRAIN run over the first part and a
// VALIDATION run over the remainder (classic out-of-sample evaluation);
// otherwise each window runs as MAIN.
//
// Runs after a failed one still execute: a data error in one window must
// not hide the others.
func (r *Runner) WalkForward(ctx context.Context, n int, validation float64) (Results, error) {
	tf := r.Feed.Timeframe()
	if tf.IsZero() {
		return nil, fmt.Errorf("walk-forward needs a bounded feed timeframe")
	}
	if validation < 0 || validation >= 1 {
		return nil, fmt.Errorf("validation fraction %v out of range [0,1)", validation)
	}

	results := make(Results)
	for _, window := range tf.Split(n) {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		if validation == 0 {
			res := r.RunWindow(ctx, RunContext{
				RunID: id.New(), Phase: Main, Timeframe: window,
			})
			results[res.RunID] = res
			continue
		}

		cut := window.Start.Add(time.Duration(float64(window.Duration()) * (1 - validation)))
		train := r.RunWindow(ctx, RunContext{
			RunID: id.New(), Phase: Train,
			Timeframe: window.WithEnd(cut),
		})
		results[train.RunID] = train

		valid := r.RunWindow(ctx, RunContext{
			RunID: id.New(), Phase: Validation,
			Timeframe: window.WithStart(cut),
		})
		results[valid.RunID] = valid
	}
	return results, nil
}

// Factory builds a fresh, fully isolated runner: its own broker and
// account, its own strategy and policy state. MonteCarlo calls it once per
// parallel run. The feeds returned by separate factory calls may share one
// immutable dataset, since Play never mutates a feed.
type Factory func() *Runner

// MonteCarlo samples n random windows of the given duration from the feed's
// timeframe and executes one isolated run per window, all in parallel.
// Results are collected by run id only after each run finishes; a failure
// (or panic) in one run neither blocks nor corrupts the others.
//
// The same seed always yields the same windows.
func MonteCarlo(ctx context.Context, newRunner Factory, n int, window time.Duration, seed int64) (Results, error) {
	probe := newRunner()
	tf := probe.Feed.Timeframe()
	if tf.IsZero() {
		return nil, fmt.Errorf("monte carlo needs a bounded feed timeframe")
	}

	rng := rand.New(rand.NewSource(seed))
	windows := tf.Sample(n, window, rng)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(Results, len(windows))
	)

	for i, w := range windows {
		runner := probe
		if i > 0 {
			runner = newRunner()
		}
		rc := RunContext{RunID: id.New(), Phase: Main, Timeframe: w}

		wg.Add(1)
		go func() {
			defer wg.Done()
			res := runner.RunWindow(ctx, rc)
			mu.Lock()
			results[res.RunID] = res
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results, nil
}
