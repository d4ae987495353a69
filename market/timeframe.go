package market

import (
	"fmt"
	"math/rand"
	"time"
)

// Timeframe is a half-open time window [Start, End). The zero value means
// "unbounded" and contains every time.
type Timeframe struct {
	Start time.Time
	End   time.Time
}

func NewTimeframe(start, end time.Time) (Timeframe, error) {
	if !start.Before(end) {
		return Timeframe{}, fmt.Errorf("timeframe start %s not before end %s", start, end)
	}
	return Timeframe{Start: start, End: end}, nil
}

func (tf Timeframe) IsZero() bool {
	return tf.Start.IsZero() && tf.End.IsZero()
}

// Contains reports whether t falls within [Start, End).
func (tf Timeframe) Contains(t time.Time) bool {
	if tf.IsZero() {
		return true
	}
	return !t.Before(tf.Start) && t.Before(tf.End)
}

func (tf Timeframe) Duration() time.Duration {
	return tf.End.Sub(tf.Start)
}

func (tf Timeframe) String() string {
	if tf.IsZero() {
		return "[unbounded]"
	}
	return fmt.Sprintf("[%s .. %s)", tf.Start.Format(time.RFC3339), tf.End.Format(time.RFC3339))
}

// WithStart returns a copy starting at t.
func (tf Timeframe) WithStart(t time.Time) Timeframe {
	tf.Start = t
	return tf
}

// WithEnd returns a copy ending at t.
func (tf Timeframe) WithEnd(t time.Time) Timeframe {
	tf.End = t
	return tf
}

// Split partitions the timeframe into n contiguous equal windows, used for
// walk-forward runs. The last window absorbs any rounding remainder.
func (tf Timeframe) Split(n int) []Timeframe {
	if n <= 0 || tf.IsZero() {
		return nil
	}
	step := tf.Duration() / time.Duration(n)
	out := make([]Timeframe, 0, n)
	start := tf.Start
	for i := 0; i < n; i++ {
		end := start.Add(step)
		if i == n-1 {
			end = tf.End
		}
		out = append(out, Timeframe{Start: start, End: end})
		start = end
	}
	return out
}

// Sample draws n random windows of the given duration from within the
// timeframe, used for Monte Carlo runs. Windows may overlap. The caller owns
// the rng, which makes sampling reproducible for a fixed seed.
func (tf Timeframe) Sample(n int, d time.Duration, rng *rand.Rand) []Timeframe {
	if n <= 0 || tf.IsZero() {
		return nil
	}
	span := tf.Duration() - d
	if span < 0 {
		span = 0
	}
	out := make([]Timeframe, 0, n)
	for i := 0; i < n; i++ {
		var off time.Duration
		if span > 0 {
			off = time.Duration(rng.Int63n(int64(span)))
		}
		start := tf.Start.Add(off)
		end := start.Add(d)
		if end.After(tf.End) {
			end = tf.End
		}
		out = append(out, Timeframe{Start: start, End: end})
	}
	return out
}
