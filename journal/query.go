package journal

import (
	"database/sql"
	"fmt"
)

// ListFills returns a run's fills in time order.
func (j *SQLite) ListFills(runID string) ([]FillRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(`
		SELECT run_id, order_id, symbol, time, qty, price, fee, realized_pl
		FROM fills
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		var r FillRecord
		if err := rows.Scan(&r.RunID, &r.OrderID, &r.Symbol, &r.Time, &r.Qty, &r.Price, &r.Fee, &r.RealizedPL); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// EquityCurve returns a run's equity snapshots in time order.
func (j *SQLite) EquityCurve(runID string) ([]EquitySnapshot, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(`
		SELECT run_id, time, cash, position_value, equity
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Time, &e.Cash, &e.PositionValue, &e.Equity); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LastMetric returns the final recorded value of a named metric for a run.
func (j *SQLite) LastMetric(runID, name string) (float64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var v float64
	row := j.db.QueryRow(`
		SELECT value FROM metrics
		WHERE run_id = ? AND name = ?
		ORDER BY time DESC LIMIT 1`, runID, name)
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("metric %q not recorded for run %q", name, runID)
		}
		return 0, err
	}
	return v, nil
}

// RunIDs lists the distinct runs present in the journal.
func (j *SQLite) RunIDs() ([]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(`SELECT DISTINCT run_id FROM equity ORDER BY run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
