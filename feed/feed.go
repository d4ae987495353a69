// Package feed defines the event distribution protocol between market data
// producers and the simulation loop: the Feed contract, the bounded Channel
// transport, fan-in merging, and the built-in historic and random-walk
// feeds.
package feed

import (
	"context"

	"github.com/rustyeddy/quant/market"
)

// Feed produces a chronological sequence of events. Implementations must be
// deterministic for historic data: two Plays over the same feed deliver the
// same events. A feed must be safe for concurrent Plays into independent
// channels so parallel runs can share one immutable dataset.
type Feed interface {
	// Play pushes events into the channel in non-decreasing time order
	// until the data is exhausted, the channel closes, or the context is
	// cancelled. A closed channel is a normal way to stop: Play returns
	// nil for it.
	Play(ctx context.Context, ch *Channel) error

	// Timeframe returns the window covered by this feed, zero when
	// unknown (e.g. live feeds).
	Timeframe() market.Timeframe

	// Assets returns the distinct assets this feed produces prices for.
	Assets() []market.Asset
}

// send pushes one event and maps the "consumer went away" cases to a clean
// stop. Shared by the feed implementations in this package.
func send(ctx context.Context, ch *Channel, e market.Event) (stop bool, err error) {
	switch err := ch.Send(ctx, e); err {
	case nil:
		return false, nil
	case ErrChannelClosed:
		return true, nil
	default:
		if ctx.Err() != nil {
			return true, nil
		}
		return true, err
	}
}
