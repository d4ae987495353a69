package journal

import (
	"database/sql"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite persists run records to a SQLite database. A single SQLite journal
// may be shared by parallel runs; writes are serialized by an internal
// mutex.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFill(r FillRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.Exec(`
		INSERT INTO fills
		(run_id, order_id, symbol, time, qty, price, fee, realized_pl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.OrderID, r.Symbol, r.Time, r.Qty, r.Price, r.Fee, r.RealizedPL,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, cash, position_value, equity)
		VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Time, e.Cash, e.PositionValue, e.Equity,
	)
	return err
}

func (j *SQLite) RecordMetric(m MetricSample) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.Exec(`
		INSERT INTO metrics
		(run_id, time, name, value)
		VALUES (?, ?, ?, ?)`,
		m.RunID, m.Time, m.Name, m.Value,
	)
	return err
}

func (j *SQLite) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}
