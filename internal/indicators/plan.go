package indicators

import (
	"fmt"
	"strings"
)

// PlanNode is one scheduled computation. Deps holds indexes of earlier
// nodes in the same plan.
type PlanNode struct {
	Spec      Specifier
	Desc      *Descriptor
	Deps      []int
	Requested bool
}

// Plan is a deduplicated, topologically ordered computation schedule.
// Requests maps each original request position to its node index;
// duplicate requests share a node.
type Plan struct {
	Nodes    []PlanNode
	Requests []int
}

// BuildPlan expands the requested specifiers depth-first into a plan.
// Every node is placed after all of its dependencies, equal specifiers
// are planned exactly once, and the node order is deterministic for a
// given registry and request list.
func BuildPlan(reg *Registry, requests []Specifier) (*Plan, error) {
	p := &Plan{Requests: make([]int, 0, len(requests))}
	index := make(map[string]int)
	visiting := make(map[string]bool)
	var path []string

	var visit func(spec Specifier) (int, error)
	visit = func(spec Specifier) (int, error) {
		key := spec.String()
		if node, ok := index[key]; ok {
			return node, nil
		}
		if visiting[key] {
			cycle := append(append([]string{}, path...), key)
			return 0, fmt.Errorf("%w: %s", ErrCyclicDependency, strings.Join(cycle, " -> "))
		}

		desc, err := reg.Lookup(spec.Kind)
		if err != nil {
			return 0, err
		}

		visiting[key] = true
		path = append(path, key)

		var deps []int
		if desc.SubDeps != nil {
			for _, dep := range desc.SubDeps(spec.Params) {
				resolved, err := resolveSub(reg, dep)
				if err != nil {
					return 0, err
				}
				node, err := visit(resolved)
				if err != nil {
					return 0, err
				}
				deps = append(deps, node)
			}
		}

		delete(visiting, key)
		path = path[:len(path)-1]

		node := len(p.Nodes)
		p.Nodes = append(p.Nodes, PlanNode{Spec: spec, Desc: desc, Deps: deps})
		index[key] = node
		return node, nil
	}

	for _, req := range requests {
		node, err := visit(req)
		if err != nil {
			return nil, err
		}
		p.Nodes[node].Requested = true
		p.Requests = append(p.Requests, node)
	}
	return p, nil
}

// resolveSub canonicalizes a declared sub-dependency: lowercases the
// kind and fills omitted trailing optionals against the dependency's
// own schema.
func resolveSub(reg *Registry, spec Specifier) (Specifier, error) {
	desc, err := reg.Lookup(spec.Kind)
	if err != nil {
		return Specifier{}, fmt.Errorf("sub-dependency %s: %w", spec, err)
	}
	params, err := desc.fillParams(spec.Params)
	if err != nil {
		return Specifier{}, fmt.Errorf("sub-dependency %s: %w", spec, err)
	}
	return Specifier{Kind: desc.Kind, Params: params}, nil
}
