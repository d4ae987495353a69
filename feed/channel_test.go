package feed

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rustyeddy/quant/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAsset = market.NewAsset("AAPL", "USD")

func tradeEvent(t time.Time, px float64) market.Event {
	return market.NewEvent(t, market.TradePrice{AssetID: testAsset, Px: px})
}

func TestChannelDeliversInOrder(t *testing.T) {
	ctx := context.Background()
	ch := NewChannel(10, market.Timeframe{})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	go func() {
		for i := 0; i < 5; i++ {
			ch.Send(ctx, tradeEvent(start.Add(time.Duration(i)*time.Minute), 100))
		}
		ch.Close()
	}()

	var prev time.Time
	count := 0
	for {
		e, err := ch.Receive(ctx)
		if err == ErrChannelClosed {
			break
		}
		require.NoError(t, err)
		assert.False(t, e.Time.Before(prev), "events delivered in time order")
		prev = e.Time
		count++
	}
	assert.Equal(t, 5, count)
}

func TestChannelBackpressure(t *testing.T) {
	// Capacity 1 with a stalled consumer: the producer must block without
	// dropping, then all events arrive in order once the consumer resumes.
	ctx := context.Background()
	ch := NewChannel(1, market.Timeframe{})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	const n = 10
	var sent atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			if err := ch.Send(ctx, tradeEvent(start.Add(time.Duration(i)*time.Second), 100)); err != nil {
				return
			}
			sent.Add(1)
		}
	}()

	// Stalled consumer: producer can get at most capacity+1 ahead (one
	// buffered, one blocked in Send).
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, sent.Load(), int32(2), "producer blocked by backpressure")

	var prev time.Time
	received := 0
	for received < n {
		e, err := ch.Receive(ctx)
		require.NoError(t, err)
		assert.False(t, e.Time.Before(prev))
		prev = e.Time
		received++
	}
	<-done
	assert.Equal(t, int32(n), sent.Load(), "no events dropped")
}

func TestChannelCloseUnblocksProducer(t *testing.T) {
	ctx := context.Background()
	ch := NewChannel(1, market.Timeframe{})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, ch.Send(ctx, tradeEvent(start, 100)))

	errc := make(chan error, 1)
	go func() {
		// Buffer full; this send blocks until the consumer abandons the
		// run.
		errc <- ch.Send(ctx, tradeEvent(start.Add(time.Second), 101))
	}()

	time.Sleep(20 * time.Millisecond)
	ch.Close()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrChannelClosed)
	case <-time.After(time.Second):
		t.Fatal("producer deadlocked on a closed channel")
	}
}

func TestChannelDrainsAfterClose(t *testing.T) {
	ctx := context.Background()
	ch := NewChannel(5, market.Timeframe{})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, ch.Send(ctx, tradeEvent(start.Add(time.Duration(i)*time.Second), 100)))
	}
	ch.Close()

	for i := 0; i < 3; i++ {
		_, err := ch.Receive(ctx)
		require.NoError(t, err, "buffered events survive close")
	}
	_, err := ch.Receive(ctx)
	assert.ErrorIs(t, err, ErrChannelClosed)
}

func TestChannelTimeframeFilter(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tf, err := market.NewTimeframe(start.Add(time.Hour), start.Add(2*time.Hour))
	require.NoError(t, err)

	ch := NewChannel(10, tf)

	// Before the window: dropped silently.
	require.NoError(t, ch.Send(ctx, tradeEvent(start, 100)))
	// Inside the window: buffered.
	require.NoError(t, ch.Send(ctx, tradeEvent(start.Add(90*time.Minute), 101)))
	// At the end bound: channel closes itself.
	err = ch.Send(ctx, tradeEvent(start.Add(2*time.Hour), 102))
	assert.ErrorIs(t, err, ErrChannelClosed)
	assert.True(t, ch.Closed())

	e, err := ch.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, start.Add(90*time.Minute), e.Time)

	_, err = ch.Receive(ctx)
	assert.ErrorIs(t, err, ErrChannelClosed)
}

func TestChannelRejectsOutOfOrder(t *testing.T) {
	ctx := context.Background()
	ch := NewChannel(10, market.Timeframe{})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, ch.Send(ctx, tradeEvent(start.Add(time.Hour), 100)))
	// Equal timestamps are a legal same-time batch.
	require.NoError(t, ch.Send(ctx, tradeEvent(start.Add(time.Hour), 101)))
	// Going backwards is a data error.
	err := ch.Send(ctx, tradeEvent(start, 99))
	assert.ErrorIs(t, err, ErrOutOfOrder)
}

func TestChannelReceiveCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := NewChannel(1, market.Timeframe{})

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := ch.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
