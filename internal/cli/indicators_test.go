package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taframe/internal/indicators"
)

// The indicators listing surfaces each kind's sub-dependencies so a
// user can see which series a request pulls in transitively.
func TestSubDepKindsCoversDerivedIndicators(t *testing.T) {
	registry := indicators.NewDefaultRegistry()

	cases := map[string][]string{
		"stochk": {"llv", "hhv"},
		"stochd": {"stochk"},
		"willr":  {"llv", "hhv"},
		"atr":    {"tr"},
		"boll":   {"sma", "stddev"},
		"hilo":   {"llv", "hhv"},
	}
	for kind, want := range cases {
		desc, err := registry.Lookup(kind)
		require.NoError(t, err)
		assert.Equal(t, want, subDepKinds(desc), "sub-deps for %s", kind)
		assert.NotEqual(t, "-", describeSubDeps(desc), "listing cell for %s", kind)
	}
}

func TestSubDepKindsEmptyForBaseIndicators(t *testing.T) {
	registry := indicators.NewDefaultRegistry()

	for _, kind := range []string{"sma", "ema", "rsi", "tr", "hhv", "llv"} {
		desc, err := registry.Lookup(kind)
		require.NoError(t, err)
		assert.Empty(t, subDepKinds(desc), "sub-deps for %s", kind)
		assert.Equal(t, "-", describeSubDeps(desc), "listing cell for %s", kind)
	}
}
