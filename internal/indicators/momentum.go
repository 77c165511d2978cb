package indicators

import "math"

// momDescriptor declares momentum: close minus close window rows back.
func momDescriptor() Descriptor {
	return Descriptor{
		Kind:   "mom",
		Params: []ParamSpec{requiredInt("window", 1)},
		Inputs: []string{ColumnClose},
		Compute: func(in ComputeInput) ([]float64, error) {
			close := in.Base(ColumnClose)
			window := int(in.Params[0])
			result := nanSeries(in.Rows)
			for i := window; i < in.Rows; i++ {
				result[i] = close[i] - close[i-window]
			}
			return result, nil
		},
	}
}

// rocDescriptor declares rate of change as a percentage of the value
// window rows back. A zero base yields a missing value.
func rocDescriptor() Descriptor {
	return Descriptor{
		Kind:   "roc",
		Params: []ParamSpec{requiredInt("window", 1)},
		Inputs: []string{ColumnClose},
		Compute: func(in ComputeInput) ([]float64, error) {
			close := in.Base(ColumnClose)
			window := int(in.Params[0])
			result := nanSeries(in.Rows)
			for i := window; i < in.Rows; i++ {
				base := close[i-window]
				if base == 0 || math.IsNaN(base) {
					continue
				}
				result[i] = 100 * (close[i] - base) / base
			}
			return result, nil
		},
	}
}

// rsiDescriptor declares the relative strength index with Wilder
// smoothing of average gain and loss. A zero average loss yields 100.
func rsiDescriptor() Descriptor {
	return Descriptor{
		Kind:   "rsi",
		Params: []ParamSpec{requiredInt("window", 1)},
		Inputs: []string{ColumnClose},
		Compute: func(in ComputeInput) ([]float64, error) {
			close := in.Base(ColumnClose)
			window := int(in.Params[0])
			gains := nanSeries(in.Rows)
			losses := nanSeries(in.Rows)
			for i := 1; i < in.Rows; i++ {
				change := close[i] - close[i-1]
				switch {
				case math.IsNaN(change):
					continue
				case change > 0:
					gains[i] = change
					losses[i] = 0
				default:
					gains[i] = 0
					losses[i] = -change
				}
			}

			avgGain := wilderSmooth(gains, window)
			avgLoss := wilderSmooth(losses, window)
			result := nanSeries(in.Rows)
			for i := 0; i < in.Rows; i++ {
				if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
					continue
				}
				if avgLoss[i] == 0 {
					result[i] = 100
					continue
				}
				rs := avgGain[i] / avgLoss[i]
				result[i] = 100 - 100/(1+rs)
			}
			return result, nil
		},
	}
}

// stochKDescriptor declares stochastic %K over the shared rolling
// low/high bands. A zero band spread yields a missing value.
func stochKDescriptor() Descriptor {
	return Descriptor{
		Kind:   "stochk",
		Params: []ParamSpec{requiredInt("window", 1)},
		Inputs: []string{ColumnClose},
		SubDeps: func(params []float64) []Specifier {
			return []Specifier{
				{Kind: "llv", Params: []float64{params[0]}},
				{Kind: "hhv", Params: []float64{params[0]}},
			}
		},
		Compute: func(in ComputeInput) ([]float64, error) {
			window := in.Params[0]
			return stochasticK(in.Base(ColumnClose), in.Sub("llv", window), in.Sub("hhv", window)), nil
		},
	}
}

// stochDDescriptor declares stochastic %D: a moving average of %K over
// the smooth parameter.
func stochDDescriptor() Descriptor {
	return Descriptor{
		Kind: "stochd",
		Params: []ParamSpec{
			requiredInt("window", 1),
			optionalInt("smooth", 3, 1),
		},
		SubDeps: func(params []float64) []Specifier {
			return []Specifier{
				{Kind: "stochk", Params: []float64{params[0]}},
			}
		},
		Compute: func(in ComputeInput) ([]float64, error) {
			return rollingMean(in.Sub("stochk", in.Params[0]), int(in.Params[1])), nil
		},
	}
}

// willRDescriptor declares Williams %R over the shared rolling low/high
// bands, on the -100..0 scale.
func willRDescriptor() Descriptor {
	return Descriptor{
		Kind:   "willr",
		Params: []ParamSpec{requiredInt("window", 1)},
		Inputs: []string{ColumnClose},
		SubDeps: func(params []float64) []Specifier {
			return []Specifier{
				{Kind: "llv", Params: []float64{params[0]}},
				{Kind: "hhv", Params: []float64{params[0]}},
			}
		},
		Compute: func(in ComputeInput) ([]float64, error) {
			window := in.Params[0]
			return williamsR(in.Base(ColumnClose), in.Sub("llv", window), in.Sub("hhv", window)), nil
		},
	}
}
