package indicators

import "math"

// hhvDescriptor declares the highest high value: rolling max of high.
func hhvDescriptor() Descriptor {
	return Descriptor{
		Kind:   "hhv",
		Params: []ParamSpec{requiredInt("window", 1)},
		Inputs: []string{ColumnHigh},
		Compute: func(in ComputeInput) ([]float64, error) {
			return rollingMax(in.Base(ColumnHigh), int(in.Params[0])), nil
		},
	}
}

// llvDescriptor declares the lowest low value: rolling min of low.
func llvDescriptor() Descriptor {
	return Descriptor{
		Kind:   "llv",
		Params: []ParamSpec{requiredInt("window", 1)},
		Inputs: []string{ColumnLow},
		Compute: func(in ComputeInput) ([]float64, error) {
			return rollingMin(in.Base(ColumnLow), int(in.Params[0])), nil
		},
	}
}

// hiloDescriptor declares the high/low price ratio: the rolling lowest
// low divided by the rolling highest high, built from the shared
// extrema. A zero or missing highest high yields a missing value.
func hiloDescriptor() Descriptor {
	return Descriptor{
		Kind:   "hilo",
		Params: []ParamSpec{requiredInt("window", 1)},
		SubDeps: func(params []float64) []Specifier {
			return []Specifier{
				{Kind: "llv", Params: []float64{params[0]}},
				{Kind: "hhv", Params: []float64{params[0]}},
			}
		},
		Compute: func(in ComputeInput) ([]float64, error) {
			window := in.Params[0]
			low := in.Sub("llv", window)
			high := in.Sub("hhv", window)
			result := nanSeries(in.Rows)
			for i := 0; i < in.Rows; i++ {
				if math.IsNaN(high[i]) || high[i] == 0 || math.IsNaN(low[i]) {
					continue
				}
				result[i] = low[i] / high[i]
			}
			return result, nil
		},
	}
}
