package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passThrough(in ComputeInput) ([]float64, error) {
	return nanSeries(in.Rows), nil
}

func mustParse(t *testing.T, reg *Registry, text string) Specifier {
	t.Helper()
	spec, err := reg.Parse(text)
	require.NoError(t, err)
	return spec
}

func planKeys(p *Plan) []string {
	keys := make([]string, len(p.Nodes))
	for i, node := range p.Nodes {
		keys[i] = node.Spec.String()
	}
	return keys
}

func TestBuildPlanOrdersDependenciesFirst(t *testing.T) {
	reg := NewDefaultRegistry()

	plan, err := BuildPlan(reg, []Specifier{mustParse(t, reg, "stochd_14")})
	require.NoError(t, err)

	// Every dependency index points at an earlier node
	for i, node := range plan.Nodes {
		for _, dep := range node.Deps {
			assert.Less(t, dep, i, "node %s depends on a later node", node.Spec)
		}
	}
	assert.Equal(t, []string{"llv_14", "hhv_14", "stochk_14", "stochd_14_3"}, planKeys(plan))
}

func TestBuildPlanDeduplicatesSharedSubDependencies(t *testing.T) {
	reg := NewDefaultRegistry()

	// stochk and willr share llv/hhv; hilo shares them again
	plan, err := BuildPlan(reg, []Specifier{
		mustParse(t, reg, "stochk_14"),
		mustParse(t, reg, "willr_14"),
		mustParse(t, reg, "hilo_14"),
	})
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, node := range plan.Nodes {
		seen[node.Spec.String()]++
	}
	for key, count := range seen {
		assert.Equal(t, 1, count, "specifier %s planned %d times", key, count)
	}
	assert.Len(t, plan.Nodes, 5)
}

func TestBuildPlanDuplicateRequestsShareANode(t *testing.T) {
	reg := NewDefaultRegistry()

	plan, err := BuildPlan(reg, []Specifier{
		mustParse(t, reg, "sma_14"),
		mustParse(t, reg, "sma_14"),
	})
	require.NoError(t, err)

	assert.Len(t, plan.Nodes, 1)
	require.Len(t, plan.Requests, 2)
	assert.Equal(t, plan.Requests[0], plan.Requests[1])
}

func TestBuildPlanPreservesRequestOrder(t *testing.T) {
	reg := NewDefaultRegistry()

	requests := []Specifier{
		mustParse(t, reg, "rsi_14"),
		mustParse(t, reg, "sma_5"),
		mustParse(t, reg, "stochk_3"),
	}
	plan, err := BuildPlan(reg, requests)
	require.NoError(t, err)

	require.Len(t, plan.Requests, 3)
	for i, idx := range plan.Requests {
		assert.True(t, plan.Nodes[idx].Spec.Equal(requests[i]))
		assert.True(t, plan.Nodes[idx].Requested)
	}
}

func TestBuildPlanMarksOnlyRequestedNodes(t *testing.T) {
	reg := NewDefaultRegistry()

	plan, err := BuildPlan(reg, []Specifier{mustParse(t, reg, "atr_14")})
	require.NoError(t, err)

	require.Len(t, plan.Nodes, 2)
	assert.Equal(t, "tr", plan.Nodes[0].Spec.String())
	assert.False(t, plan.Nodes[0].Requested)
	assert.True(t, plan.Nodes[1].Requested)
}

func TestBuildPlanIsDeterministic(t *testing.T) {
	reg := NewDefaultRegistry()

	requests := []Specifier{
		mustParse(t, reg, "boll_20"),
		mustParse(t, reg, "stochd_14_5"),
		mustParse(t, reg, "sma_20"),
	}

	first, err := BuildPlan(reg, requests)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := BuildPlan(reg, requests)
		require.NoError(t, err)
		assert.Equal(t, planKeys(first), planKeys(again))
		assert.Equal(t, first.Requests, again.Requests)
	}
}

func TestBuildPlanDetectsCycle(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Descriptor{
		Kind: "alpha",
		SubDeps: func(params []float64) []Specifier {
			return []Specifier{{Kind: "beta"}}
		},
		Compute: passThrough,
	}))
	require.NoError(t, r.Register(Descriptor{
		Kind: "beta",
		SubDeps: func(params []float64) []Specifier {
			return []Specifier{{Kind: "alpha"}}
		},
		Compute: passThrough,
	}))

	_, err := BuildPlan(r, []Specifier{{Kind: "alpha"}})
	assert.ErrorIs(t, err, ErrCyclicDependency)
}

func TestBuildPlanDetectsSelfCycle(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Descriptor{
		Kind: "selfref",
		SubDeps: func(params []float64) []Specifier {
			return []Specifier{{Kind: "selfref"}}
		},
		Compute: passThrough,
	}))

	_, err := BuildPlan(r, []Specifier{{Kind: "selfref"}})
	assert.ErrorIs(t, err, ErrCyclicDependency)
}

func TestBuildPlanRejectsUnknownSubDependency(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Descriptor{
		Kind: "broken",
		SubDeps: func(params []float64) []Specifier {
			return []Specifier{{Kind: "ghost"}}
		},
		Compute: passThrough,
	}))

	_, err := BuildPlan(r, []Specifier{{Kind: "broken"}})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestBuildPlanCanonicalizesSubDependencies(t *testing.T) {
	reg := NewDefaultRegistry()

	// boll depends on sma_20; requesting both must share the node even
	// though boll declares the dependency programmatically.
	plan, err := BuildPlan(reg, []Specifier{
		mustParse(t, reg, "sma_20"),
		mustParse(t, reg, "boll_20_2.5"),
	})
	require.NoError(t, err)

	count := 0
	for _, node := range plan.Nodes {
		if node.Spec.String() == "sma_20" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, plan.Nodes, 3)
}
