package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taframe/pkg/utils"
)

func seq(from, to float64) []float64 {
	n := int(to-from) + 1
	s := make([]float64, n)
	for i := range s {
		s[i] = from + float64(i)
	}
	return s
}

func constant(v float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func nan() float64 {
	return math.NaN()
}

func TestRollingMean(t *testing.T) {
	got := rollingMean(seq(1, 10), 5)

	require.Len(t, got, 10)
	for i := 0; i < 4; i++ {
		assert.True(t, math.IsNaN(got[i]), "position %d should be warm-up", i)
	}
	// Mean of each trailing 5-window of 1..10 is the window midpoint
	for i := 4; i < 10; i++ {
		assert.InDelta(t, float64(i-1), got[i], 1e-9)
	}
}

func TestRollingMeanPropagatesMissing(t *testing.T) {
	values := seq(1, 10)
	values[3] = nan()

	got := rollingMean(values, 3)
	// Windows covering index 3 are missing, the rest recover
	assert.InDelta(t, 2, got[2], 1e-9)
	assert.True(t, math.IsNaN(got[3]))
	assert.True(t, math.IsNaN(got[4]))
	assert.True(t, math.IsNaN(got[5]))
	assert.InDelta(t, 6, got[6], 1e-9)
}

func TestRollingMeanWindowLargerThanSeries(t *testing.T) {
	got := rollingMean(seq(1, 3), 5)
	for i, v := range got {
		assert.True(t, math.IsNaN(v), "position %d", i)
	}
}

func TestRollingMinMax(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6}

	max := rollingMax(values, 3)
	min := rollingMin(values, 3)

	assert.True(t, utils.SeriesAlmostEqual(
		[]float64{nan(), nan(), 4, 4, 5, 9, 9, 9}, max, 1e-9))
	assert.True(t, utils.SeriesAlmostEqual(
		[]float64{nan(), nan(), 1, 1, 1, 1, 2, 2}, min, 1e-9))
}

func TestRollingMinMaxPropagatesMissing(t *testing.T) {
	values := []float64{3, nan(), 4, 1, 5}

	max := rollingMax(values, 2)
	assert.True(t, math.IsNaN(max[1]))
	assert.True(t, math.IsNaN(max[2]))
	assert.InDelta(t, 4, max[3], 1e-9)
	assert.InDelta(t, 5, max[4], 1e-9)
}

func TestStdDevIsPopulation(t *testing.T) {
	// Population stddev of [2,4,4,4,5,5,7,9] is exactly 2 (the sample
	// version would be ~2.138).
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2, stdDev(values), 1e-9)
}

func TestRollingStdDev(t *testing.T) {
	got := rollingStdDev(constant(7, 6), 3)
	assert.True(t, math.IsNaN(got[1]))
	for i := 2; i < 6; i++ {
		assert.InDelta(t, 0, got[i], 1e-9)
	}
}

func TestEMASeriesSeededWithSMA(t *testing.T) {
	values := seq(1, 10)
	got := emaSeries(values, 5)

	for i := 0; i < 4; i++ {
		assert.True(t, math.IsNaN(got[i]), "position %d should be warm-up", i)
	}
	// First defined value is the SMA of the first window
	assert.InDelta(t, 3, got[4], 1e-9)

	multiplier := 2.0 / 6.0
	want := 3.0
	for i := 5; i < 10; i++ {
		want = (values[i]-want)*multiplier + want
		assert.InDelta(t, want, got[i], 1e-9)
	}
}

func TestWilderSmoothSkipsLeadingMissing(t *testing.T) {
	values := []float64{nan(), nan(), 3, 5, 7, 9}
	got := wilderSmooth(values, 3)

	for i := 0; i < 4; i++ {
		assert.True(t, math.IsNaN(got[i]), "position %d", i)
	}
	assert.InDelta(t, 5, got[4], 1e-9) // mean of 3,5,7
	assert.InDelta(t, 5+(9-5)/3.0, got[5], 1e-9)
}

func TestTrueRangeSeries(t *testing.T) {
	high := []float64{10, 12, 11, 15}
	low := []float64{8, 9, 10, 11}
	close := []float64{9, 11, 10, 14}

	got := trueRangeSeries(high, low, close)

	require.Len(t, got, 4)
	assert.True(t, math.IsNaN(got[0]), "first row has no previous close")
	assert.InDelta(t, 3, got[1], 1e-9) // max(12-9, |12-9|, |9-9|)
	assert.InDelta(t, 1, got[2], 1e-9) // max(11-10, |11-11|, |10-11|)
	assert.InDelta(t, 5, got[3], 1e-9) // max(15-11, |15-10|, |11-10|)
}

func TestStochasticKZeroSpread(t *testing.T) {
	close := constant(10, 5)
	low := constant(10, 5)
	high := constant(10, 5)

	got := stochasticK(close, low, high)
	for i, v := range got {
		assert.True(t, math.IsNaN(v), "position %d should be missing on zero spread", i)
	}
}

func TestStochasticKBounds(t *testing.T) {
	close := []float64{5, 10, 7.5}
	low := constant(5, 3)
	high := constant(10, 3)

	got := stochasticK(close, low, high)
	assert.InDelta(t, 0, got[0], 1e-9)
	assert.InDelta(t, 100, got[1], 1e-9)
	assert.InDelta(t, 50, got[2], 1e-9)
}

func TestWilliamsRBounds(t *testing.T) {
	close := []float64{5, 10, 7.5}
	low := constant(5, 3)
	high := constant(10, 3)

	got := williamsR(close, low, high)
	assert.InDelta(t, -100, got[0], 1e-9)
	assert.InDelta(t, 0, got[1], 1e-9)
	assert.InDelta(t, -50, got[2], 1e-9)
}
