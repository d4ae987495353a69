package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV appends run records to flat files, one per record kind. Rows are
// flushed on every write so a crashed run still leaves its history behind.
type CSV struct {
	fills   *csv.Writer
	equity  *csv.Writer
	metrics *csv.Writer
	files   []*os.File
}

func NewCSV(fillsPath, equityPath, metricsPath string) (*CSV, error) {
	j := &CSV{}

	open := func(path string, header []string) (*csv.Writer, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, f)
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			return nil, err
		}
		w.Flush()
		return w, w.Error()
	}

	var err error
	if j.fills, err = open(fillsPath, []string{"run_id", "order_id", "symbol", "time", "qty", "price", "fee", "realized_pl"}); err != nil {
		j.Close()
		return nil, err
	}
	if j.equity, err = open(equityPath, []string{"run_id", "time", "cash", "position_value", "equity"}); err != nil {
		j.Close()
		return nil, err
	}
	if j.metrics, err = open(metricsPath, []string{"run_id", "time", "name", "value"}); err != nil {
		j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSV) RecordFill(r FillRecord) error {
	j.fills.Write([]string{
		r.RunID, r.OrderID, r.Symbol,
		r.Time.Format(time.RFC3339Nano),
		f(r.Qty), f(r.Price), f(r.Fee), f(r.RealizedPL),
	})
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	j.equity.Write([]string{
		e.RunID,
		e.Time.Format(time.RFC3339Nano),
		f(e.Cash), f(e.PositionValue), f(e.Equity),
	})
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) RecordMetric(m MetricSample) error {
	j.metrics.Write([]string{
		m.RunID,
		m.Time.Format(time.RFC3339Nano),
		m.Name, f(m.Value),
	})
	j.metrics.Flush()
	return j.metrics.Error()
}

func (j *CSV) Close() error {
	var firstErr error
	for _, f := range j.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
