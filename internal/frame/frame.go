// Package frame provides the columnar table indicator results attach to.
package frame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taframe/internal/indicators"
	"taframe/internal/models"
)

// ErrDuplicateColumn indicates an attach under an already-present name.
var ErrDuplicateColumn = errors.New("duplicate column")

// Frame is a column-ordered float64 table with the row timestamps kept
// alongside. Columns are append-only. Attached and returned slices are
// shared, not copied; treat them as read-only.
type Frame struct {
	names   []string
	columns map[string][]float64
	index   []time.Time
	rows    int
}

// New creates an empty frame with a fixed row count.
func New(rows int) *Frame {
	return &Frame{
		columns: make(map[string][]float64),
		rows:    rows,
	}
}

// FromCandles builds a frame with the open, high, low, close and volume
// columns in that order, indexed by the candle timestamps.
func FromCandles(candles []models.Candle) *Frame {
	n := len(candles)
	f := New(n)
	f.index = make([]time.Time, n)

	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	volume := make([]float64, n)
	for i, c := range candles {
		f.index[i] = c.Timestamp
		open[i] = c.Open
		high[i] = c.High
		low[i] = c.Low
		close[i] = c.Close
		volume[i] = float64(c.Volume)
	}

	f.attach(indicators.ColumnOpen, open)
	f.attach(indicators.ColumnHigh, high)
	f.attach(indicators.ColumnLow, low)
	f.attach(indicators.ColumnClose, close)
	f.attach(indicators.ColumnVolume, volume)
	return f
}

func (f *Frame) attach(name string, series []float64) {
	f.names = append(f.names, name)
	f.columns[name] = series
}

// Attach appends a named column. The series length must equal the frame
// row count and the name must be new.
func (f *Frame) Attach(name string, series []float64) error {
	if len(series) != f.rows {
		return fmt.Errorf("attach %q: series has %d rows, want %d: %w",
			name, len(series), f.rows, indicators.ErrRowCountMismatch)
	}
	if _, exists := f.columns[name]; exists {
		return fmt.Errorf("attach: %w %q", ErrDuplicateColumn, name)
	}
	f.attach(name, series)
	return nil
}

// Column returns the series attached under name.
func (f *Frame) Column(name string) ([]float64, error) {
	series, ok := f.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", indicators.ErrMissingColumn, name)
	}
	return series, nil
}

// Has reports whether a column with the given name is attached.
func (f *Frame) Has(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// RowCount returns the fixed number of rows.
func (f *Frame) RowCount() int {
	return f.rows
}

// ColumnNames returns the column names in attach order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.names))
	copy(names, f.names)
	return names
}

// Index returns the row timestamps, or nil for frames without one.
func (f *Frame) Index() []time.Time {
	return f.index
}

// SetIndex sets the row timestamps.
func (f *Frame) SetIndex(index []time.Time) error {
	if len(index) != f.rows {
		return fmt.Errorf("set index: got %d rows, want %d: %w",
			len(index), f.rows, indicators.ErrRowCountMismatch)
	}
	f.index = index
	return nil
}

// Apply computes the requested indicator columns and attaches them in
// output order. Nothing is attached if any computation fails.
func (f *Frame) Apply(ctx context.Context, engine *indicators.Engine, texts ...string) error {
	result, err := engine.Compute(ctx, f, texts)
	if err != nil {
		return err
	}
	for _, name := range result.Columns() {
		series, ok := result.Series(name)
		if !ok {
			continue
		}
		if err := f.Attach(name, series); err != nil {
			return err
		}
	}
	return nil
}
