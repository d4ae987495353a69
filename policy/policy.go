// Package policy turns signals into orders given the current account
// snapshot. Policies are composable: decorators add circuit breaking and
// signal-resolution rules around any inner policy.
package policy

import (
	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/strategy"
)

// Policy converts signals into orders. The account is an immutable snapshot
// of the state after the previous step; the policy must not retain it past
// the call. Reset clears internal state between isolated runs.
type Policy interface {
	Act(signals []strategy.Signal, account *broker.Account, event market.Event) []broker.Order
	Reset()
}
