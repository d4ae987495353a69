package market

// PriceKind selects which price to read from a PriceItem. Items that do not
// carry the requested kind fall back to their default price.
type PriceKind int8

const (
	DefaultPrice PriceKind = iota
	OpenPrice
	HighPrice
	LowPrice
	ClosePrice
	BidPrice
	AskPrice
)

// Item is one market observation inside an Event. The set of implementations
// is closed: the pricing engine switches exhaustively over them.
type Item interface {
	item()
}

// PriceItem is an Item that carries a price for a single asset.
type PriceItem interface {
	Item
	Asset() Asset
	// Price returns the price for the requested kind. Unknown kinds fall
	// back to the item's default price.
	Price(kind PriceKind) float64
	// Volume returns the observed volume, or 0 when not available.
	Volume() float64
}

// TradePrice is a single trade print.
type TradePrice struct {
	AssetID Asset
	Px      float64
	Vol     float64
}

func (t TradePrice) item()        {}
func (t TradePrice) Asset() Asset { return t.AssetID }

func (t TradePrice) Price(PriceKind) float64 { return t.Px }
func (t TradePrice) Volume() float64         { return t.Vol }

// PriceBar is an OHLCV candle.
type PriceBar struct {
	AssetID    Asset
	O, H, L, C float64
	Vol        float64
}

func (b PriceBar) item()        {}
func (b PriceBar) Asset() Asset { return b.AssetID }

func (b PriceBar) Price(kind PriceKind) float64 {
	switch kind {
	case OpenPrice:
		return b.O
	case HighPrice:
		return b.H
	case LowPrice:
		return b.L
	default:
		return b.C
	}
}

func (b PriceBar) Volume() float64 { return b.Vol }

// Quote is a top-of-book bid/ask pair.
type Quote struct {
	AssetID Asset
	Ask     float64
	AskSize float64
	Bid     float64
	BidSize float64
}

func (q Quote) item()        {}
func (q Quote) Asset() Asset { return q.AssetID }

func (q Quote) Price(kind PriceKind) float64 {
	switch kind {
	case BidPrice:
		return q.Bid
	case AskPrice:
		return q.Ask
	default:
		return q.Mid()
	}
}

func (q Quote) Mid() float64    { return (q.Bid + q.Ask) / 2 }
func (q Quote) Spread() float64 { return q.Ask - q.Bid }
func (q Quote) Volume() float64 { return q.AskSize + q.BidSize }

// OrderBookEntry is one level of an order book side.
type OrderBookEntry struct {
	Px   float64
	Size float64
}

// OrderBook is a depth snapshot. Its default price is the mid of the best
// levels.
type OrderBook struct {
	AssetID Asset
	Asks    []OrderBookEntry
	Bids    []OrderBookEntry
}

func (o OrderBook) item()        {}
func (o OrderBook) Asset() Asset { return o.AssetID }

func (o OrderBook) Price(kind PriceKind) float64 {
	switch kind {
	case BidPrice:
		if len(o.Bids) > 0 {
			return o.Bids[0].Px
		}
	case AskPrice:
		if len(o.Asks) > 0 {
			return o.Asks[0].Px
		}
	}
	if len(o.Bids) > 0 && len(o.Asks) > 0 {
		return (o.Bids[0].Px + o.Asks[0].Px) / 2
	}
	if len(o.Bids) > 0 {
		return o.Bids[0].Px
	}
	if len(o.Asks) > 0 {
		return o.Asks[0].Px
	}
	return 0
}

func (o OrderBook) Volume() float64 {
	var v float64
	for _, e := range o.Asks {
		v += e.Size
	}
	for _, e := range o.Bids {
		v += e.Size
	}
	return v
}

// News is a non-priced observation, kept in the event stream so strategies
// can react to it. It never produces fills.
type News struct {
	Source   string
	Headline string
}

func (n News) item() {}
