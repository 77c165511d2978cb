package store

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"taframe/internal/models"
)

// Property 1: Candle round-trip consistency.
//
// For any valid candle data, saving candles to the database and then
// retrieving them over a covering time range produces equivalent data
// in ascending timestamp order.
func TestProperty_CandleRoundTripConsistency(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "candles_property.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	properties := gopter.NewProperties(parameters)

	timeframeGen := gen.OneConstOf("1min", "5min", "15min", "1hour", "1day")

	run := 0
	properties.Property("save then retrieve produces equivalent candles", prop.ForAll(
		func(timeframe string, count int, basePrice float64, baseVolume int64) bool {
			ctx := context.Background()
			run++
			symbol := fmt.Sprintf("SYM%d", run)

			candles := generateTestCandles(count, basePrice, baseVolume)

			if err := store.SaveCandles(ctx, symbol, timeframe, candles); err != nil {
				t.Logf("Failed to save candles: %v", err)
				return false
			}

			from := candles[0].Timestamp.Add(-time.Second)
			to := candles[len(candles)-1].Timestamp.Add(time.Second)
			retrieved, err := store.GetCandles(ctx, symbol, timeframe, from, to)
			if err != nil {
				t.Logf("Failed to get candles: %v", err)
				return false
			}
			if len(retrieved) != len(candles) {
				t.Logf("Count mismatch: saved %d, got %d", len(candles), len(retrieved))
				return false
			}

			for i, c := range candles {
				r := retrieved[i]
				if !r.Timestamp.Equal(c.Timestamp) {
					t.Logf("Timestamp mismatch at %d: %v vs %v", i, c.Timestamp, r.Timestamp)
					return false
				}
				if !floatEq(r.Open, c.Open) || !floatEq(r.High, c.High) ||
					!floatEq(r.Low, c.Low) || !floatEq(r.Close, c.Close) || r.Volume != c.Volume {
					t.Logf("Value mismatch at %d: %+v vs %+v", i, c, r)
					return false
				}
			}
			return true
		},
		timeframeGen,
		gen.IntRange(1, 20),
		gen.Float64Range(10.0, 5000.0),
		gen.Int64Range(1000, 1000000),
	))

	properties.TestingRun(t)
}

// Property 2: Indicator column round-trip preserves missing values.
//
// Saving a series with NaN warm-up positions and loading it back over
// the same timestamp index reproduces the series, with NaN positions
// surviving the NULL encoding.
func TestProperty_IndicatorColumnRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "indicators_property.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	properties := gopter.NewProperties(parameters)

	run := 0
	properties.Property("NaN positions survive the NULL round-trip", prop.ForAll(
		func(rows int, warmup int, base float64) bool {
			ctx := context.Background()
			run++
			symbol := fmt.Sprintf("IND%d", run)
			if warmup > rows {
				warmup = rows
			}

			start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			index := make([]time.Time, rows)
			series := make([]float64, rows)
			for i := 0; i < rows; i++ {
				index[i] = start.AddDate(0, 0, i)
				if i < warmup {
					series[i] = math.NaN()
				} else {
					series[i] = base + float64(i)
				}
			}

			columns := map[string][]float64{"sma_14": series}
			if err := store.SaveIndicatorColumns(ctx, symbol, "1day", index, columns); err != nil {
				t.Logf("Failed to save columns: %v", err)
				return false
			}

			loaded, err := store.GetIndicatorColumns(ctx, symbol, "1day", index)
			if err != nil {
				t.Logf("Failed to load columns: %v", err)
				return false
			}
			got, ok := loaded["sma_14"]
			if !ok || len(got) != rows {
				t.Logf("Column missing or wrong length: %v", loaded)
				return false
			}

			for i := 0; i < rows; i++ {
				if math.IsNaN(series[i]) != math.IsNaN(got[i]) {
					t.Logf("Missing marker mismatch at %d", i)
					return false
				}
				if !math.IsNaN(series[i]) && !floatEq(series[i], got[i]) {
					t.Logf("Value mismatch at %d: %v vs %v", i, series[i], got[i])
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 40),
		gen.IntRange(0, 20),
		gen.Float64Range(1.0, 1000.0),
	))

	properties.TestingRun(t)
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// generateTestCandles builds count candles with valid OHLC
// relationships starting at basePrice.
func generateTestCandles(count int, basePrice float64, baseVolume int64) []models.Candle {
	start := time.Date(2026, 1, 1, 9, 15, 0, 0, time.UTC)
	candles := make([]models.Candle, count)
	for i := 0; i < count; i++ {
		open := basePrice + float64(i)
		close := open + 0.5
		candles[i] = models.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Open:      open,
			High:      close + 1,
			Low:       open - 1,
			Close:     close,
			Volume:    baseVolume + int64(i),
		}
	}
	return candles
}
