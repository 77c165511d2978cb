package cli

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property 1: Value formatting round-trips within display precision.
//
// For any finite value, FormatValue produces a string that parses back
// to the value within the 4-decimal display tolerance, and missing
// values always render as a dash.
func TestProperty_ValueFormattingRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatValue parses back within tolerance", prop.ForAll(
		func(v float64) bool {
			formatted := FormatValue(v)
			parsed, err := strconv.ParseFloat(formatted, 64)
			if err != nil {
				t.Logf("FormatValue(%v) = %q is not numeric", v, formatted)
				return false
			}
			return math.Abs(parsed-v) <= 0.5e-4
		},
		gen.Float64Range(-1e6, 1e6),
	))

	properties.Property("missing values render as a dash", prop.ForAll(
		func(useNaN bool) bool {
			return FormatValue(math.NaN()) == "-" && FormatPrice(math.NaN()) == "-"
		},
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property 2: JSON conversion maps missing to null and nothing else.
//
// JSONSeries preserves length, turns every NaN into nil, and leaves
// every defined value untouched.
func TestProperty_JSONSeriesMissingBecomesNull(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	properties := gopter.NewProperties(parameters)

	properties.Property("NaN maps to nil, defined values pass through", prop.ForAll(
		func(values []float64, nanEvery int) bool {
			series := make([]float64, len(values))
			copy(series, values)
			for i := range series {
				if nanEvery > 0 && i%nanEvery == 0 {
					series[i] = math.NaN()
				}
			}

			out := JSONSeries(series)
			if len(out) != len(series) {
				return false
			}
			for i, v := range series {
				if math.IsNaN(v) {
					if out[i] != nil {
						t.Logf("NaN at %d did not map to nil", i)
						return false
					}
					continue
				}
				got, ok := out[i].(float64)
				if !ok || got != v {
					t.Logf("value at %d changed: %v -> %v", i, v, out[i])
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-1e9, 1e9)),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}

func TestFormatTimestampDropsMidnight(t *testing.T) {
	daily := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if got := FormatTimestamp(daily); got != "2026-03-05" {
		t.Errorf("FormatTimestamp(midnight) = %q, want date only", got)
	}

	intraday := time.Date(2026, 3, 5, 9, 15, 0, 0, time.UTC)
	if got := FormatTimestamp(intraday); !strings.Contains(got, "09:15") {
		t.Errorf("FormatTimestamp(intraday) = %q, want time included", got)
	}
}

func TestFormatDurationUnits(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "500µs"},
		{42 * time.Millisecond, "42ms"},
		{1500 * time.Millisecond, "1.50s"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
