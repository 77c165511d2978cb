package indicators

// trDescriptor declares the true range. The first row is missing
// because it has no previous close.
func trDescriptor() Descriptor {
	return Descriptor{
		Kind:   "tr",
		Inputs: []string{ColumnHigh, ColumnLow, ColumnClose},
		Compute: func(in ComputeInput) ([]float64, error) {
			return trueRangeSeries(in.Base(ColumnHigh), in.Base(ColumnLow), in.Base(ColumnClose)), nil
		},
	}
}

// atrDescriptor declares the average true range: Wilder smoothing of
// the shared true range series.
func atrDescriptor() Descriptor {
	return Descriptor{
		Kind:   "atr",
		Params: []ParamSpec{requiredInt("window", 1)},
		SubDeps: func(params []float64) []Specifier {
			return []Specifier{{Kind: "tr"}}
		},
		Compute: func(in ComputeInput) ([]float64, error) {
			return wilderSmooth(in.Sub("tr"), int(in.Params[0])), nil
		},
	}
}

// stdDevDescriptor declares the rolling population standard deviation
// of close.
func stdDevDescriptor() Descriptor {
	return Descriptor{
		Kind:   "stddev",
		Params: []ParamSpec{requiredInt("window", 1)},
		Inputs: []string{ColumnClose},
		Compute: func(in ComputeInput) ([]float64, error) {
			return rollingStdDev(in.Base(ColumnClose), int(in.Params[0])), nil
		},
	}
}

// bollDescriptor declares Bollinger bands: the shared moving average
// plus and minus width standard deviations.
func bollDescriptor() Descriptor {
	return Descriptor{
		Kind: "boll",
		Params: []ParamSpec{
			requiredInt("window", 2),
			optionalFloat("width", 2, 0),
		},
		SubDeps: func(params []float64) []Specifier {
			return []Specifier{
				{Kind: "sma", Params: []float64{params[0]}},
				{Kind: "stddev", Params: []float64{params[0]}},
			}
		},
		Outputs: []string{"lower", "mid", "upper"},
		ComputeMulti: func(in ComputeInput) (map[string][]float64, error) {
			window := in.Params[0]
			width := in.Params[1]
			sma := in.Sub("sma", window)
			sd := in.Sub("stddev", window)

			lower := make([]float64, in.Rows)
			mid := make([]float64, in.Rows)
			upper := make([]float64, in.Rows)
			copy(mid, sma)
			for i := 0; i < in.Rows; i++ {
				lower[i] = sma[i] - width*sd[i]
				upper[i] = sma[i] + width*sd[i]
			}
			return map[string][]float64{
				"lower": lower,
				"mid":   mid,
				"upper": upper,
			}, nil
		},
	}
}
