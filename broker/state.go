package broker

import (
	"math"
	"time"
)

// Status is the lifecycle state of a working order.
type Status int8

const (
	Initial Status = iota
	Accepted
	PartiallyFilled
	Completed
	Cancelled
	Expired
	Rejected
)

func (s Status) String() string {
	switch s {
	case Initial:
		return "INITIAL"
	case Accepted:
		return "ACCEPTED"
	case PartiallyFilled:
		return "PARTIALLY_FILLED"
	case Completed:
		return "COMPLETED"
	case Cancelled:
		return "CANCELLED"
	case Expired:
		return "EXPIRED"
	case Rejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition out of this status is
// allowed.
func (s Status) Terminal() bool {
	switch s {
	case Completed, Cancelled, Expired, Rejected:
		return true
	}
	return false
}

// OrderState tracks one order through its lifecycle. Transitions are
// monotonic: once a terminal status is reached, further updates are ignored.
type OrderState struct {
	Order     Order
	Status    Status
	Fill      float64 // signed filled quantity, same sign as the order size
	Reason    string  // populated for REJECTED and CANCELLED
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewOrderState(order Order, now time.Time) *OrderState {
	return &OrderState{Order: order, Status: Initial, CreatedAt: now, UpdatedAt: now}
}

// Transition moves the state to a new status unless the current status is
// already terminal. It reports whether the transition was applied.
func (s *OrderState) Transition(status Status, now time.Time) bool {
	if s.Status.Terminal() {
		return false
	}
	s.Status = status
	s.UpdatedAt = now
	return true
}

// Reject marks the order terminally rejected with a reason.
func (s *OrderState) Reject(reason string, now time.Time) {
	if s.Transition(Rejected, now) {
		s.Reason = reason
	}
}

// Cancel marks the order terminally cancelled with a reason. It reports
// whether the order was still cancellable.
func (s *OrderState) Cancel(reason string, now time.Time) bool {
	if s.Transition(Cancelled, now) {
		s.Reason = reason
		return true
	}
	return false
}

// AddFill records a (partial) execution and advances the status. The fill
// must have the same sign as the remaining quantity; the absolute fill never
// exceeds the absolute order size.
func (s *OrderState) AddFill(qty float64, size float64, now time.Time) {
	if s.Status.Terminal() || qty == 0 {
		return
	}
	s.Fill += qty
	// Clamp against over-fill; the execution logic sizes fills from the
	// remaining quantity so this only guards float drift.
	if math.Abs(s.Fill) > math.Abs(size) {
		s.Fill = size
	}
	if remaining(size, s.Fill) == 0 {
		s.Transition(Completed, now)
		return
	}
	s.Transition(PartiallyFilled, now)
}

// Remaining returns the signed unfilled quantity for an order of the given
// size.
func (s *OrderState) Remaining(size float64) float64 {
	return remaining(size, s.Fill)
}

func remaining(size, fill float64) float64 {
	rem := size - fill
	if math.Abs(rem) < 1e-9 {
		return 0
	}
	return rem
}

// ExpiredAt reports whether a DAY order created at CreatedAt has outlived
// its session by the time now. GTC orders never expire on time alone.
func (s *OrderState) ExpiredAt(tif TimeInForce, now time.Time) bool {
	if tif != Day {
		return false
	}
	y1, m1, d1 := s.CreatedAt.UTC().Date()
	y2, m2, d2 := now.UTC().Date()
	return y2 > y1 || (y2 == y1 && (m2 > m1 || (m2 == m1 && d2 > d1)))
}
