// Package journal records what happened during simulation runs: fills,
// equity snapshots, and metric samples, keyed by run id. Backends exist for
// CSV files and SQLite; Nop discards everything.
package journal

import "time"

// FillRecord is one (partial) order execution.
type FillRecord struct {
	RunID      string
	OrderID    string
	Symbol     string
	Time       time.Time
	Qty        float64 // signed
	Price      float64
	Fee        float64
	RealizedPL float64 // booked by this fill, account currency
}

// EquitySnapshot is the account valuation after one step.
type EquitySnapshot struct {
	RunID         string
	Time          time.Time
	Cash          float64
	PositionValue float64
	Equity        float64
}

// MetricSample is one named metric value at one step.
type MetricSample struct {
	RunID string
	Time  time.Time
	Name  string
	Value float64
}

// Journal persists run records. Implementations need not be safe for
// concurrent use; parallel runs each get their own journal (or share a
// serialized one such as SQLite).
type Journal interface {
	RecordFill(FillRecord) error
	RecordEquity(EquitySnapshot) error
	RecordMetric(MetricSample) error
	Close() error
}

// Nop discards all records. It is the default journal.
type Nop struct{}

func (Nop) RecordFill(FillRecord) error       { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) RecordMetric(MetricSample) error   { return nil }
func (Nop) Close() error                      { return nil }

// Memory keeps all records in slices, used by tests and reporting.
type Memory struct {
	Fills   []FillRecord
	Equity  []EquitySnapshot
	Metrics []MetricSample
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) RecordFill(r FillRecord) error {
	m.Fills = append(m.Fills, r)
	return nil
}

func (m *Memory) RecordEquity(r EquitySnapshot) error {
	m.Equity = append(m.Equity, r)
	return nil
}

func (m *Memory) RecordMetric(r MetricSample) error {
	m.Metrics = append(m.Metrics, r)
	return nil
}

func (m *Memory) Close() error { return nil }
