package store

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	apperrors "taframe/internal/errors"
	"taframe/internal/frame"
	"taframe/internal/models"
)

// CSVTime wraps time.Time so candle files can carry either RFC3339
// timestamps or bare dates.
type CSVTime struct {
	time.Time
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (t *CSVTime) UnmarshalCSV(text string) error {
	text = strings.TrimSpace(text)
	parsed, err := time.Parse(time.RFC3339, text)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", text)
	}
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", text, err)
	}
	t.Time = parsed
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (t *CSVTime) MarshalCSV() (string, error) {
	return t.Time.Format(time.RFC3339), nil
}

type candleRow struct {
	Timestamp CSVTime `csv:"timestamp"`
	Open      float64 `csv:"open"`
	High      float64 `csv:"high"`
	Low       float64 `csv:"low"`
	Close     float64 `csv:"close"`
	Volume    int64   `csv:"volume"`
}

// LoadCandlesCSV reads candles from a CSV file with a
// timestamp,open,high,low,close,volume header. Rows are returned in
// ascending timestamp order regardless of file order.
func LoadCandlesCSV(path string) ([]models.Candle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewDataError("csv", path, "opening file", err)
	}
	defer file.Close()

	var records []candleRow
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, apperrors.NewDataError("csv", path, "parsing candles", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewDataError("csv", path, "no rows", apperrors.ErrNoData)
	}

	candles := make([]models.Candle, len(records))
	for i, r := range records {
		candles[i] = models.Candle{
			Timestamp: r.Timestamp.Time,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		}
	}
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return candles, nil
}

// SaveCandlesCSV writes candles to a CSV file, creating parent
// directories as needed.
func SaveCandlesCSV(path string, candles []models.Candle) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewDataError("csv", path, "creating directory", err)
		}
	}

	rows := make([]candleRow, len(candles))
	for i, c := range candles {
		rows[i] = candleRow{
			Timestamp: CSVTime{c.Timestamp},
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewDataError("csv", path, "creating file", err)
	}
	if err := gocsv.MarshalFile(&rows, file); err != nil {
		file.Close()
		return apperrors.NewDataError("csv", path, "writing candles", err)
	}
	if err := file.Close(); err != nil {
		return apperrors.NewDataError("csv", path, "closing file", err)
	}
	return nil
}

// SaveFrameCSV writes a frame with all its columns to a CSV file.
// The column set varies per frame, so rows are assembled by hand.
// Missing values are written as empty cells.
func SaveFrameCSV(path string, f *frame.Frame) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewDataError("csv", path, "creating directory", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewDataError("csv", path, "creating file", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	names := f.ColumnNames()
	index := f.Index()

	header := make([]string, 0, len(names)+1)
	if index != nil {
		header = append(header, "timestamp")
	}
	header = append(header, names...)
	if err := writer.Write(header); err != nil {
		return apperrors.NewDataError("csv", path, "writing header", err)
	}

	columns := make([][]float64, len(names))
	for i, name := range names {
		series, err := f.Column(name)
		if err != nil {
			return apperrors.NewDataError("csv", path, "reading column", err)
		}
		columns[i] = series
	}

	record := make([]string, len(header))
	for row := 0; row < f.RowCount(); row++ {
		record = record[:0]
		if index != nil {
			record = append(record, index[row].Format(time.RFC3339))
		}
		for _, series := range columns {
			v := series[row]
			if math.IsNaN(v) {
				record = append(record, "")
			} else {
				record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
			}
		}
		if err := writer.Write(record); err != nil {
			return apperrors.NewDataError("csv", path, "writing row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewDataError("csv", path, "flushing file", err)
	}
	return nil
}
