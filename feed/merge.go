package feed

import (
	"container/heap"
	"context"
	"sync"

	"github.com/rustyeddy/quant/market"
)

// MergedFeed fans in several independent feeds and re-establishes global
// time order with a k-way merge on event time, not on arrival order. Each
// source feed plays into its own small private channel; the merge pulls the
// earliest head each step.
type MergedFeed struct {
	feeds []Feed
}

func Merge(feeds ...Feed) *MergedFeed {
	return &MergedFeed{feeds: feeds}
}

// Timeframe returns the union of the source timeframes.
func (m *MergedFeed) Timeframe() market.Timeframe {
	var tf market.Timeframe
	for _, f := range m.feeds {
		sub := f.Timeframe()
		if sub.IsZero() {
			continue
		}
		if tf.IsZero() {
			tf = sub
			continue
		}
		if sub.Start.Before(tf.Start) {
			tf.Start = sub.Start
		}
		if sub.End.After(tf.End) {
			tf.End = sub.End
		}
	}
	return tf
}

func (m *MergedFeed) Assets() []market.Asset {
	seen := make(map[market.Asset]struct{})
	var out []market.Asset
	for _, f := range m.feeds {
		for _, a := range f.Assets() {
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

// mergeHead is one source's current earliest event.
type mergeHead struct {
	event market.Event
	src   int
}

type mergeHeap []mergeHead

func (h mergeHeap) Len() int            { return len(h) }
func (h mergeHeap) Less(i, j int) bool  { return h[i].event.Time.Before(h[j].event.Time) }
func (h mergeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x any)         { *h = append(*h, x.(mergeHead)) }
func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func (m *MergedFeed) Play(ctx context.Context, out *Channel) error {
	if len(m.feeds) == 0 {
		return nil
	}

	subCtx, cancel := context.WithCancel(ctx)

	// One private channel per source. Capacity is deliberately small: the
	// merge provides the real buffering via the output channel.
	chans := make([]*Channel, len(m.feeds))
	errs := make([]error, len(m.feeds))
	var wg sync.WaitGroup
	for i, f := range m.feeds {
		chans[i] = NewChannel(16, market.Timeframe{})
		wg.Add(1)
		go func(i int, f Feed) {
			defer wg.Done()
			errs[i] = f.Play(subCtx, chans[i])
			chans[i].Close()
		}(i, f)
	}
	// Unblock any producer still sending before waiting for them.
	defer func() {
		cancel()
		wg.Wait()
	}()

	h := make(mergeHeap, 0, len(chans))
	heap.Init(&h)

	pull := func(src int) error {
		e, err := chans[src].Receive(subCtx)
		switch err {
		case nil:
			heap.Push(&h, mergeHead{event: e, src: src})
			return nil
		case ErrChannelClosed:
			return nil
		default:
			return err
		}
	}

	for i := range chans {
		if err := pull(i); err != nil {
			return err
		}
	}

	for h.Len() > 0 {
		head := heap.Pop(&h).(mergeHead)
		stop, err := send(subCtx, out, head.event)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
		if err := pull(head.src); err != nil {
			return err
		}
	}

	// Surface the first producer failure once all events drained.
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
