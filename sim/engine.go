// Package sim implements the simulated broker: order validation, the
// per-order state machine, pricing with slippage, fees, and account
// accounting, integrated into a single synchronous Place step.
package sim

import (
	"fmt"
	"math"

	"github.com/rustyeddy/quant/broker"
	"github.com/rustyeddy/quant/internal/id"
	"github.com/rustyeddy/quant/journal"
	"github.com/rustyeddy/quant/market"
)

// Config assembles the policies of a simulated broker. Zero fields get safe
// defaults: USD account with 1,000,000 cash, no slippage, no fees, cash
// account, single-currency rates.
type Config struct {
	Currency market.Currency
	Deposit  float64
	Pricing  Pricing
	Fees     FeeModel
	Model    AccountModel
	Rates    market.RateSource
	Registry market.Registry

	// VolumeLimit caps one fill at this fraction of the price item's
	// volume, yielding partial fills. 0 disables the cap.
	VolumeLimit float64

	Journal journal.Journal
}

func (c *Config) defaults() {
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.Deposit == 0 {
		c.Deposit = 1_000_000
	}
	if c.Pricing == nil {
		c.Pricing = NoCost{}
	}
	if c.Fees == nil {
		c.Fees = NoFee{}
	}
	if c.Model == nil {
		c.Model = CashAccount{}
	}
	if c.Rates == nil {
		c.Rates = market.SingleCurrency{}
	}
	if c.Journal == nil {
		c.Journal = journal.Nop{}
	}
}

// Broker simulates order execution against a single synthetic counterparty.
// It owns its account exclusively; one broker serves one run, so no locking
// is involved. All methods are synchronous and non-blocking.
type Broker struct {
	cfg    Config
	acct   *broker.Account
	execs  map[string]*execution
	active []string // execution ids in placement order, for deterministic stepping
	last   map[market.Asset]float64
	runID  string
}

func New(cfg Config) *Broker {
	cfg.defaults()
	b := &Broker{cfg: cfg, runID: id.New()}
	b.Reset()
	return b
}

// SetRun tags subsequent journal records with the given run id.
func (b *Broker) SetRun(runID string) { b.runID = runID }

// Reset discards all orders, positions, and cash and starts a fresh account
// with the configured deposit.
func (b *Broker) Reset() {
	b.acct = broker.NewAccount(b.cfg.Currency, b.cfg.Deposit)
	b.execs = make(map[string]*execution)
	b.active = b.active[:0]
	b.last = make(map[market.Asset]float64)
}

// Account returns a snapshot of the current state.
func (b *Broker) Account() *broker.Account { return b.acct.Snapshot() }

// Place processes the instructions against the event: new orders are
// validated and accepted or rejected, cancels and updates applied, working
// orders matched against the event's prices, fills booked into the account.
// It returns an immutable snapshot of the updated account.
//
// A nil or empty order slice is the common case: it advances the simulation
// one event without placing anything.
func (b *Broker) Place(orders []broker.Order, e market.Event) (*broker.Account, error) {
	if !e.Time.IsZero() {
		b.acct.Time = e.Time
	}
	for _, asset := range e.Assets() {
		if px, ok := e.Price(asset); ok {
			b.last[asset] = px
		}
	}

	for _, o := range orders {
		if err := b.register(o); err != nil {
			return nil, err
		}
	}

	if err := b.step(e); err != nil {
		return nil, err
	}

	b.acct.MarkToMarket(e)
	return b.acct.Snapshot(), nil
}

// register admits one instruction into the order table.
func (b *Broker) register(o broker.Order) error {
	now := b.acct.Time

	switch v := o.(type) {
	case broker.CancelOrder:
		st := broker.NewOrderState(v, now)
		b.track(v.ID(), &execution{order: v, state: st})
		target, ok := b.execs[v.Target]
		if !ok {
			st.Reject(fmt.Sprintf("unknown order %s", v.Target), now)
			return nil
		}
		if !target.state.Cancel("cancelled by instruction", now) {
			st.Reject(fmt.Sprintf("order %s already %s", v.Target, target.state.Status), now)
			return nil
		}
		st.Transition(broker.Completed, now)
		return nil

	case broker.UpdateOrder:
		st := broker.NewOrderState(v, now)
		b.track(v.ID(), &execution{order: v, state: st})
		target, ok := b.execs[v.Target]
		if !ok || target.state.Status.Terminal() {
			st.Reject(fmt.Sprintf("order %s not updatable", v.Target), now)
			return nil
		}
		// The new size must keep the order's direction and cover what is
		// already filled, or the remaining quantity would change sign.
		if single, ok := singleOf(target.order); ok && v.Size != 0 {
			if v.Size*single.Size < 0 {
				st.Reject(fmt.Sprintf("update cannot reverse order %s", v.Target), now)
				return nil
			}
			if math.Abs(v.Size) < math.Abs(target.state.Fill) {
				st.Reject(fmt.Sprintf("update size %.2f below filled %.2f", v.Size, target.state.Fill), now)
				return nil
			}
		}
		if !applyUpdate(target, v) {
			st.Reject(fmt.Sprintf("order %s does not support update", v.Target), now)
			return nil
		}
		st.Transition(broker.Completed, now)
		// Shrinking to exactly the filled quantity leaves nothing working.
		if single, ok := singleOf(target.order); ok && target.state.Remaining(single.Size) == 0 {
			target.state.Transition(broker.Completed, now)
		}
		return nil

	case broker.BracketOrder:
		return b.registerBracket(v)

	default:
		_, err := b.registerSingle(o, "", "")
		return err
	}
}

// registerSingle validates and accepts one tradable order. Bracket children
// pass waitFor (the entry id) and their sibling id.
func (b *Broker) registerSingle(o broker.Order, waitFor, sibling string) (*execution, error) {
	now := b.acct.Time
	st := broker.NewOrderState(o, now)
	x := &execution{order: o, state: st, waitFor: waitFor, sibling: sibling}
	b.track(o.ID(), x)

	single, ok := singleOf(o)
	if !ok {
		st.Reject("unsupported order type", now)
		return x, nil
	}
	if reason := b.validate(o, single); reason != "" {
		st.Reject(reason, now)
		return x, nil
	}

	// Buying-power check under the active account model. Skipped when the
	// asset has no observed price yet; the valuation would be meaningless.
	if px, ok := b.last[single.Asset]; ok && waitFor == "" {
		required, err := market.Convert(
			math.Abs(single.Asset.Value(single.Size, px)),
			single.Asset.Currency, b.acct.BaseCurrency, b.cfg.Rates, now,
		)
		if err != nil {
			return nil, fmt.Errorf("value order %s: %w", o.ID(), err)
		}
		bp, err := b.cfg.Model.BuyingPower(b.acct, b.cfg.Rates)
		if err != nil {
			return nil, fmt.Errorf("buying power: %w", err)
		}
		if required > bp {
			st.Reject(fmt.Sprintf("insufficient buying power: need %.2f, have %.2f", required, bp), now)
			return x, nil
		}
	}

	if waitFor == "" {
		st.Transition(broker.Accepted, now)
	}
	return x, nil
}

func (b *Broker) registerBracket(o broker.BracketOrder) error {
	now := b.acct.Time
	st := broker.NewOrderState(o, now)
	b.track(o.Id, &execution{order: o, state: st})

	if o.Entry == nil {
		st.Reject("bracket without entry", now)
		return nil
	}

	entry, err := b.registerSingle(o.Entry, "", "")
	if err != nil {
		return err
	}
	entry.parent = o.Id
	if entry.state.Status == broker.Rejected {
		st.Reject("entry rejected: "+entry.state.Reason, now)
		return nil
	}

	var tpID, slID string
	if o.TakeProfit != nil {
		tpID = o.TakeProfit.ID()
	}
	if o.StopLoss != nil {
		slID = o.StopLoss.ID()
	}
	if o.TakeProfit != nil {
		x, err := b.registerSingle(o.TakeProfit, o.Entry.ID(), slID)
		if err != nil {
			return err
		}
		x.parent = o.Id
	}
	if o.StopLoss != nil {
		x, err := b.registerSingle(o.StopLoss, o.Entry.ID(), tpID)
		if err != nil {
			return err
		}
		x.parent = o.Id
	}

	st.Transition(broker.Accepted, now)
	return nil
}

func (b *Broker) validate(o broker.Order, single broker.SingleOrder) string {
	if single.Size == 0 || math.IsNaN(single.Size) || math.IsInf(single.Size, 0) {
		return "invalid size"
	}
	if single.TIF != broker.GTC && single.TIF != broker.Day {
		return fmt.Sprintf("unsupported time in force %d", single.TIF)
	}
	if !b.cfg.Registry.Tradable(single.Asset) {
		return fmt.Sprintf("asset %s not tradable", single.Asset.Symbol)
	}
	switch v := o.(type) {
	case broker.LimitOrder:
		if v.Limit <= 0 {
			return "invalid limit price"
		}
	case broker.StopOrder:
		if v.Stop <= 0 {
			return "invalid stop price"
		}
	case broker.TrailingStopOrder:
		if v.Trail <= 0 || v.Trail >= 1 {
			return "invalid trail fraction"
		}
	}
	return ""
}

func (b *Broker) track(orderID string, x *execution) {
	b.execs[orderID] = x
	b.active = append(b.active, orderID)
	b.acct.Orders[orderID] = x.state
}

// step walks the order table in placement order and applies at most one
// state transition per order. The per-asset price item is deterministic
// (Event.PriceItem), so an order can never fill twice within one event.
func (b *Broker) step(e market.Event) error {
	for _, oid := range b.active {
		x := b.execs[oid]
		st := x.state
		if st.Status.Terminal() {
			continue
		}

		// Bracket children wait for their entry to complete.
		if x.waitFor != "" {
			entry, ok := b.execs[x.waitFor]
			if !ok || entry.state.Status == broker.Rejected {
				st.Reject("bracket entry rejected", e.Time)
				continue
			}
			if entry.state.Status != broker.Completed {
				continue
			}
			if st.Status == broker.Initial {
				st.Transition(broker.Accepted, e.Time)
			}
		}

		single, ok := singleOf(x.order)
		if !ok {
			continue
		}
		if st.Status == broker.Initial {
			continue
		}

		if st.ExpiredAt(single.TIF, e.Time) {
			st.Transition(broker.Expired, e.Time)
			continue
		}

		item, ok := e.PriceItem(single.Asset)
		if !ok {
			continue
		}

		qty, price := x.tryFill(item, b.cfg.Pricing, b.cfg.VolumeLimit)
		if qty == 0 {
			continue
		}
		if err := b.fill(x, single, qty, price, e); err != nil {
			return err
		}
	}
	return nil
}

// fill books one execution atomically: fee, cash, position, order state,
// bracket sibling cancellation, journal record.
func (b *Broker) fill(x *execution, single broker.SingleOrder, qty, price float64, e market.Event) error {
	asset := single.Asset
	fee := b.cfg.Fees.Fee(qty, price)

	// Resolve the conversion rate before touching the account, so a rate
	// failure leaves no half-booked fill behind.
	rate := 1.0
	if asset.Currency != b.acct.BaseCurrency {
		r, err := b.cfg.Rates.Rate(asset.Currency, b.acct.BaseCurrency, e.Time)
		if err != nil {
			return fmt.Errorf("book realized pl: %w", err)
		}
		rate = r
	}

	realized := b.acct.ApplyFill(asset, qty, price, e.Time)
	b.acct.Cash.Deposit(asset.Currency, -asset.Value(qty, price)-fee)

	realizedBase := realized * rate
	b.acct.RealizedPL += realizedBase

	x.state.AddFill(qty, single.Size, e.Time)

	// First fill of a bracket child retires its sibling.
	if x.sibling != "" {
		if sib, ok := b.execs[x.sibling]; ok {
			sib.state.Cancel("sibling filled", e.Time)
		}
	}

	// Entry completion is what arms the bracket children; the parent just
	// mirrors it.
	if x.parent != "" && x.state.Status == broker.Completed {
		if parent, ok := b.execs[x.parent]; ok && x.waitFor == "" {
			parent.state.Transition(broker.Completed, e.Time)
		}
	}

	return b.cfg.Journal.RecordFill(journal.FillRecord{
		RunID:      b.runID,
		OrderID:    single.Id,
		Symbol:     asset.Symbol,
		Time:       e.Time,
		Qty:        qty,
		Price:      price,
		Fee:        fee,
		RealizedPL: realizedBase,
	})
}
