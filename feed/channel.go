package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/quant/market"
)

var (
	// ErrChannelClosed signals that no more events will be delivered.
	ErrChannelClosed = errors.New("event channel closed")
	// ErrOutOfOrder signals a producer pushed an event older than the one
	// before it. This is a data-integrity error and fatal for the run.
	ErrOutOfOrder = errors.New("event out of time order")
)

// DefaultCapacity is the buffer size used when a caller passes 0.
const DefaultCapacity = 100

// Channel is the bounded, time-ordered transport between one Feed producer
// and one consumer loop. Send blocks when the buffer is full (backpressure,
// events are never dropped) and Receive blocks when it is empty. Close is
// safe from either side and from multiple goroutines: a producer blocked on
// a full buffer whose consumer is gone unblocks with ErrChannelClosed.
type Channel struct {
	ch   chan market.Event
	tf   market.Timeframe
	done chan struct{}
	once sync.Once

	mu   sync.Mutex
	last time.Time
}

// NewChannel returns a channel with the given buffer capacity, optionally
// restricted to a timeframe. Events outside [tf.Start, tf.End) are silently
// dropped before buffering; when an event at or past tf.End arrives, the
// channel closes itself.
func NewChannel(capacity int, tf market.Timeframe) *Channel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Channel{
		ch:   make(chan market.Event, capacity),
		tf:   tf,
		done: make(chan struct{}),
	}
}

// Timeframe returns the channel's filter window (zero when unbounded).
func (c *Channel) Timeframe() market.Timeframe { return c.tf }

// Close stops the channel. Buffered events remain receivable; once drained,
// Receive returns ErrChannelClosed. Idempotent.
func (c *Channel) Close() {
	c.once.Do(func() { close(c.done) })
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Send delivers one event to the consumer, blocking while the buffer is
// full. It returns ErrChannelClosed after Close, ErrOutOfOrder when the
// event time precedes the previous event's, and ctx.Err() on cancellation.
// Events before the timeframe are dropped without error.
func (c *Channel) Send(ctx context.Context, e market.Event) error {
	if !c.tf.IsZero() {
		if e.Time.Before(c.tf.Start) {
			return nil
		}
		if !e.Time.Before(c.tf.End) {
			// End of the window: a live feed bounded to "the next N
			// minutes" stops here.
			c.Close()
			return ErrChannelClosed
		}
	}

	c.mu.Lock()
	if e.Time.Before(c.last) {
		last := c.last
		c.mu.Unlock()
		return fmt.Errorf("%w: %s before %s", ErrOutOfOrder, e.Time, last)
	}
	c.last = e.Time
	c.mu.Unlock()

	select {
	case <-c.done:
		return ErrChannelClosed
	default:
	}

	select {
	case c.ch <- e:
		return nil
	case <-c.done:
		return ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns the next event, blocking while the buffer is empty. After
// Close it drains the remaining buffered events in order, then returns
// ErrChannelClosed.
func (c *Channel) Receive(ctx context.Context) (market.Event, error) {
	// Drain buffered events first so Close never loses what was already
	// accepted.
	select {
	case e := <-c.ch:
		return e, nil
	default:
	}

	select {
	case e := <-c.ch:
		return e, nil
	case <-c.done:
		select {
		case e := <-c.ch:
			return e, nil
		default:
			return market.Event{}, ErrChannelClosed
		}
	case <-ctx.Done():
		return market.Event{}, ctx.Err()
	}
}
