package feed

import (
	"context"
	"sort"
	"time"

	"github.com/rustyeddy/quant/market"
)

// HistoricFeed replays an in-memory, time-sorted series of events. It is the
// building block behind file-based adapters and the feed used by most tests:
// load it once, then Play it any number of times (concurrently too, Play
// never mutates the feed).
type HistoricFeed struct {
	events []market.Event
	assets map[market.Asset]struct{}
	sorted bool
}

func NewHistoricFeed() *HistoricFeed {
	return &HistoricFeed{assets: make(map[market.Asset]struct{})}
}

// Add appends the items as one event at time t. Events may be added in any
// order; they are sorted (stable) before the first Play.
func (f *HistoricFeed) Add(t time.Time, items ...market.Item) {
	f.events = append(f.events, market.NewEvent(t, items...))
	for _, it := range items {
		if pi, ok := it.(market.PriceItem); ok {
			f.assets[pi.Asset()] = struct{}{}
		}
	}
	f.sorted = false
}

// AddBar is shorthand for adding a single OHLCV bar event.
func (f *HistoricFeed) AddBar(t time.Time, asset market.Asset, o, h, l, c, vol float64) {
	f.Add(t, market.PriceBar{AssetID: asset, O: o, H: h, L: l, C: c, Vol: vol})
}

// AddTrade is shorthand for adding a single trade-print event.
func (f *HistoricFeed) AddTrade(t time.Time, asset market.Asset, price, vol float64) {
	f.Add(t, market.TradePrice{AssetID: asset, Px: price, Vol: vol})
}

// AddQuote is shorthand for adding a single bid/ask event.
func (f *HistoricFeed) AddQuote(t time.Time, asset market.Asset, bid, ask float64) {
	f.Add(t, market.Quote{AssetID: asset, Bid: bid, Ask: ask})
}

func (f *HistoricFeed) ensureSorted() {
	if f.sorted {
		return
	}
	sort.SliceStable(f.events, func(i, j int) bool {
		return f.events[i].Time.Before(f.events[j].Time)
	})
	f.sorted = true
}

// Timeframe spans the first event through just past the last one, so the
// last event still falls inside the half-open window.
func (f *HistoricFeed) Timeframe() market.Timeframe {
	f.ensureSorted()
	if len(f.events) == 0 {
		return market.Timeframe{}
	}
	first := f.events[0].Time
	last := f.events[len(f.events)-1].Time
	return market.Timeframe{Start: first, End: last.Add(time.Nanosecond)}
}

func (f *HistoricFeed) Assets() []market.Asset {
	out := make([]market.Asset, 0, len(f.assets))
	for a := range f.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Len returns the number of events in the feed.
func (f *HistoricFeed) Len() int { return len(f.events) }

func (f *HistoricFeed) Play(ctx context.Context, ch *Channel) error {
	f.ensureSorted()
	for _, e := range f.events {
		stop, err := send(ctx, ch, e)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}
