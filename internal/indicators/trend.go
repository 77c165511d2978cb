package indicators

// smaDescriptor declares the simple moving average of close.
func smaDescriptor() Descriptor {
	return Descriptor{
		Kind:   "sma",
		Params: []ParamSpec{requiredInt("window", 1)},
		Inputs: []string{ColumnClose},
		Compute: func(in ComputeInput) ([]float64, error) {
			return rollingMean(in.Base(ColumnClose), int(in.Params[0])), nil
		},
	}
}

// emaDescriptor declares the exponential moving average of close.
func emaDescriptor() Descriptor {
	return Descriptor{
		Kind:   "ema",
		Params: []ParamSpec{requiredInt("window", 1)},
		Inputs: []string{ColumnClose},
		Compute: func(in ComputeInput) ([]float64, error) {
			return emaSeries(in.Base(ColumnClose), int(in.Params[0])), nil
		},
	}
}

// trendDescriptor declares the average per-row slope of close over the
// window: (close[i] - close[i-window+1]) / (window-1).
func trendDescriptor() Descriptor {
	return Descriptor{
		Kind:   "trend",
		Params: []ParamSpec{requiredInt("window", 2)},
		Inputs: []string{ColumnClose},
		Compute: func(in ComputeInput) ([]float64, error) {
			close := in.Base(ColumnClose)
			window := int(in.Params[0])
			result := nanSeries(in.Rows)
			span := float64(window - 1)
			for i := window - 1; i < in.Rows; i++ {
				result[i] = (close[i] - close[i-window+1]) / span
			}
			return result, nil
		},
	}
}
