// Package cli provides the command-line interface for the indicator engine.
package cli

import (
	"fmt"
	"math"
	"time"

	"taframe/pkg/utils"
)

// FormatValue formats an indicator value for table cells.
func FormatValue(v float64) string {
	return utils.FormatFloat(v, 4)
}

// FormatPrice formats a price with 2 decimal places.
func FormatPrice(price float64) string {
	return utils.FormatFloat(price, 2)
}

// FormatTimestamp formats a candle timestamp. Daily candles carry a
// midnight time, so the time part is dropped when it says nothing.
func FormatTimestamp(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// JSONValue converts a float to a JSON-encodable value. NaN has no
// JSON representation, so missing values become null.
func JSONValue(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// JSONSeries converts a series to JSON-encodable values.
func JSONSeries(series []float64) []interface{} {
	out := make([]interface{}, len(series))
	for i, v := range series {
		out[i] = JSONValue(v)
	}
	return out
}
