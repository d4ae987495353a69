package market

import "time"

// Event is an immutable snapshot of market observations at one timestamp.
// Events inside one feed are non-decreasing in Time; ties form a
// same-timestamp batch.
type Event struct {
	Time  time.Time
	Items []Item
}

func NewEvent(t time.Time, items ...Item) Event {
	return Event{Time: t, Items: items}
}

// Empty reports whether the event carries no observations.
func (e Event) Empty() bool { return len(e.Items) == 0 }

// PriceItem returns the single deterministic price item for an asset within
// this event. When several items reference the same asset, a bar or quote
// wins over a trade print or book snapshot so one event can never fill the
// same order twice.
func (e Event) PriceItem(asset Asset) (PriceItem, bool) {
	var found PriceItem
	for _, it := range e.Items {
		pi, ok := it.(PriceItem)
		if !ok || pi.Asset() != asset {
			continue
		}
		switch pi.(type) {
		case PriceBar, Quote:
			return pi, true
		default:
			if found == nil {
				found = pi
			}
		}
	}
	return found, found != nil
}

// Price returns the default price for an asset, if the event has one.
func (e Event) Price(asset Asset) (float64, bool) {
	pi, ok := e.PriceItem(asset)
	if !ok {
		return 0, false
	}
	return pi.Price(DefaultPrice), true
}

// Assets returns the distinct assets priced in this event.
func (e Event) Assets() []Asset {
	seen := make(map[Asset]struct{}, len(e.Items))
	var out []Asset
	for _, it := range e.Items {
		pi, ok := it.(PriceItem)
		if !ok {
			continue
		}
		if _, dup := seen[pi.Asset()]; dup {
			continue
		}
		seen[pi.Asset()] = struct{}{}
		out = append(out, pi.Asset())
	}
	return out
}
