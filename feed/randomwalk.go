package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/rustyeddy/quant/market"
)

// RandomWalkFeed generates a seeded geometric random walk of price bars for
// a set of assets. It is the repo's built-in data source for demos and
// scenario tests: the same seed always produces the same event stream, and
// each Play regenerates it from scratch so concurrent replays are isolated.
type RandomWalkFeed struct {
	AssetList  []market.Asset
	Events     int
	Start      time.Time
	Interval   time.Duration
	StartPrice float64
	Volatility float64 // per-step fractional move, e.g. 0.01
	Spread     float64 // bar high/low half-range as a fraction of price
	VolumeBase float64
	Seed       int64
}

// NewRandomWalkFeed returns a walk with sensible defaults: hourly bars,
// price starting at 100, 1% volatility.
func NewRandomWalkFeed(events int, assets ...market.Asset) *RandomWalkFeed {
	return &RandomWalkFeed{
		AssetList:  assets,
		Events:     events,
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:   time.Hour,
		StartPrice: 100,
		Volatility: 0.01,
		Spread:     0.002,
		VolumeBase: 1000,
		Seed:       42,
	}
}

func (f *RandomWalkFeed) Timeframe() market.Timeframe {
	if f.Events <= 0 {
		return market.Timeframe{}
	}
	last := f.Start.Add(time.Duration(f.Events-1) * f.Interval)
	return market.Timeframe{Start: f.Start, End: last.Add(time.Nanosecond)}
}

func (f *RandomWalkFeed) Assets() []market.Asset {
	out := make([]market.Asset, len(f.AssetList))
	copy(out, f.AssetList)
	return out
}

func (f *RandomWalkFeed) Play(ctx context.Context, ch *Channel) error {
	// Fresh rng per Play keeps replays deterministic and concurrent Plays
	// independent.
	rng := rand.New(rand.NewSource(f.Seed))

	prices := make([]float64, len(f.AssetList))
	for i := range prices {
		prices[i] = f.StartPrice
	}

	t := f.Start
	for n := 0; n < f.Events; n++ {
		items := make([]market.Item, 0, len(f.AssetList))
		for i, asset := range f.AssetList {
			open := prices[i]
			move := (rng.Float64()*2 - 1) * f.Volatility
			last := open * (1 + move)
			high := max(open, last) * (1 + f.Spread)
			low := min(open, last) * (1 - f.Spread)
			vol := f.VolumeBase * (0.5 + rng.Float64())
			prices[i] = last

			items = append(items, market.PriceBar{
				AssetID: asset,
				O:       open, H: high, L: low, C: last,
				Vol: vol,
			})
		}

		stop, err := send(ctx, ch, market.NewEvent(t, items...))
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
		t = t.Add(f.Interval)
	}
	return nil
}
