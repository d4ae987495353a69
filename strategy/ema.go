package strategy

import "github.com/rustyeddy/quant/market"

// ema is a streaming exponential moving average. It warms up with a simple
// average over the first period values, then applies the standard smoothing
// multiplier 2/(period+1).
type ema struct {
	period int
	mult   float64
	warm   []float64
	value  float64
	ready  bool
}

func newEMA(period int) *ema {
	return &ema{period: period, mult: 2.0 / float64(period+1)}
}

func (e *ema) Update(price float64) {
	if !e.ready {
		e.warm = append(e.warm, price)
		if len(e.warm) < e.period {
			return
		}
		sum := 0.0
		for _, v := range e.warm {
			sum += v
		}
		e.value = sum / float64(e.period)
		e.warm = nil
		e.ready = true
		return
	}
	e.value = (price-e.value)*e.mult + e.value
}

func (e *ema) Ready() bool    { return e.ready }
func (e *ema) Value() float64 { return e.value }

// EMACross signals on fast/slow EMA crossovers, one pair of averages per
// asset it observes. A cross up rates +1, a cross down -1; no signal while
// warming up or between crosses.
type EMACross struct {
	Fast int
	Slow int

	pairs map[market.Asset]*emaPair
}

type emaPair struct {
	fast, slow *ema
	lastDiff   float64
	haveDiff   bool
}

func NewEMACross(fast, slow int) *EMACross {
	if fast >= slow {
		fast, slow = slow, fast
	}
	return &EMACross{Fast: fast, Slow: slow, pairs: make(map[market.Asset]*emaPair)}
}

func (s *EMACross) Reset() {
	s.pairs = make(map[market.Asset]*emaPair)
}

func (s *EMACross) Generate(event market.Event) []Signal {
	var signals []Signal

	for _, asset := range event.Assets() {
		price, ok := event.Price(asset)
		if !ok {
			continue
		}

		p, ok := s.pairs[asset]
		if !ok {
			p = &emaPair{fast: newEMA(s.Fast), slow: newEMA(s.Slow)}
			s.pairs[asset] = p
		}

		p.fast.Update(price)
		p.slow.Update(price)
		if !p.fast.Ready() || !p.slow.Ready() {
			continue
		}

		diff := p.fast.Value() - p.slow.Value()
		if !p.haveDiff {
			p.lastDiff = diff
			p.haveDiff = true
			continue
		}

		switch {
		case p.lastDiff <= 0 && diff > 0:
			signals = append(signals, Signal{Asset: asset, Rating: 1})
		case p.lastDiff >= 0 && diff < 0:
			signals = append(signals, Signal{Asset: asset, Rating: -1})
		}
		p.lastDiff = diff
	}

	return signals
}
