package broker

import "github.com/rustyeddy/quant/market"

// Broker turns orders into fills and owns the account for one run.
//
// Place is synchronous: it processes the instructions against the event,
// applies any fills atomically, and returns an immutable account snapshot.
// Order-level problems (bad size, no buying power) are recorded as REJECTED
// states and do not error; only data-integrity failures (a missing exchange
// rate) abort the run.
type Broker interface {
	Place(orders []Order, event market.Event) (*Account, error)

	// Account returns a snapshot of the current state without placing
	// anything.
	Account() *Account

	// Reset discards all state and starts a fresh account, used between
	// isolated runs.
	Reset()
}
