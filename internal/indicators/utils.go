package indicators

import "math"

// nanSeries returns a series of n missing values.
func nanSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// mean returns the arithmetic mean. A missing value in the input makes
// the result missing.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return sum(values) / float64(len(values))
}

// stdDev returns the population standard deviation (divide by n).
func stdDev(values []float64) float64 {
	m := mean(values)
	if math.IsNaN(m) {
		return math.NaN()
	}
	variance := 0.0
	for _, v := range values {
		d := v - m
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// rollingMean computes the trailing mean over a fixed window. Positions
// before window-1 are missing, as is any position whose window contains
// a missing value.
func rollingMean(values []float64, window int) []float64 {
	n := len(values)
	result := nanSeries(n)
	if window <= 0 {
		return result
	}
	windowSum := 0.0
	missing := 0
	for i := 0; i < n; i++ {
		if v := values[i]; math.IsNaN(v) {
			missing++
		} else {
			windowSum += v
		}
		if i >= window {
			if old := values[i-window]; math.IsNaN(old) {
				missing--
			} else {
				windowSum -= old
			}
		}
		if i >= window-1 && missing == 0 {
			result[i] = windowSum / float64(window)
		}
	}
	return result
}

// rollingMax computes the trailing maximum over a fixed window.
func rollingMax(values []float64, window int) []float64 {
	n := len(values)
	result := nanSeries(n)
	if window <= 0 {
		return result
	}
	for i := window - 1; i < n; i++ {
		m := values[i-window+1]
		for j := i - window + 2; j <= i && !math.IsNaN(m); j++ {
			if v := values[j]; math.IsNaN(v) || v > m {
				m = v
			}
		}
		result[i] = m
	}
	return result
}

// rollingMin computes the trailing minimum over a fixed window.
func rollingMin(values []float64, window int) []float64 {
	n := len(values)
	result := nanSeries(n)
	if window <= 0 {
		return result
	}
	for i := window - 1; i < n; i++ {
		m := values[i-window+1]
		for j := i - window + 2; j <= i && !math.IsNaN(m); j++ {
			if v := values[j]; math.IsNaN(v) || v < m {
				m = v
			}
		}
		result[i] = m
	}
	return result
}

// rollingStdDev computes the trailing population standard deviation
// over a fixed window.
func rollingStdDev(values []float64, window int) []float64 {
	n := len(values)
	result := nanSeries(n)
	if window <= 0 {
		return result
	}
	for i := window - 1; i < n; i++ {
		result[i] = stdDev(values[i-window+1 : i+1])
	}
	return result
}

// emaSeries computes an exponential moving average seeded with the mean
// of the first window values. A missing input value makes every later
// position missing since all prior values contribute to the recursion.
func emaSeries(values []float64, window int) []float64 {
	n := len(values)
	result := nanSeries(n)
	if window <= 0 || n < window {
		return result
	}
	multiplier := 2.0 / float64(window+1)

	// First EMA is SMA
	result[window-1] = mean(values[:window])

	for i := window; i < n; i++ {
		result[i] = (values[i]-result[i-1])*multiplier + result[i-1]
	}
	return result
}

// wilderSmooth applies Wilder's smoothing, seeding with the mean of the
// first window defined values. Leading missing values shift the seed
// forward by their count.
func wilderSmooth(values []float64, window int) []float64 {
	n := len(values)
	result := nanSeries(n)
	if window <= 0 {
		return result
	}
	start := 0
	for start < n && math.IsNaN(values[start]) {
		start++
	}
	if n-start < window {
		return result
	}
	seed := start + window - 1
	result[seed] = mean(values[start : seed+1])
	multiplier := 1.0 / float64(window)
	for i := seed + 1; i < n; i++ {
		result[i] = result[i-1] + multiplier*(values[i]-result[i-1])
	}
	return result
}

// trueRangeSeries computes the true range per row. The first row is
// missing because it has no previous close.
func trueRangeSeries(high, low, close []float64) []float64 {
	n := len(high)
	result := nanSeries(n)
	for i := 1; i < n; i++ {
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		result[i] = math.Max(hl, math.Max(hc, lc))
	}
	return result
}

// stochasticK computes %K from close and the rolling low/high bands. A
// zero or missing band spread yields a missing value.
func stochasticK(close, low, high []float64) []float64 {
	n := len(close)
	result := nanSeries(n)
	for i := 0; i < n; i++ {
		spread := high[i] - low[i]
		if math.IsNaN(spread) || spread == 0 || math.IsNaN(close[i]) {
			continue
		}
		result[i] = 100 * (close[i] - low[i]) / spread
	}
	return result
}

// williamsR computes Williams %R from close and the rolling low/high
// bands on the -100..0 scale. A zero or missing spread yields missing.
func williamsR(close, low, high []float64) []float64 {
	n := len(close)
	result := nanSeries(n)
	for i := 0; i < n; i++ {
		spread := high[i] - low[i]
		if math.IsNaN(spread) || spread == 0 || math.IsNaN(close[i]) {
			continue
		}
		result[i] = -100 * (high[i] - close[i]) / spread
	}
	return result
}
