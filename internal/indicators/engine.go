// Package indicators provides technical analysis indicator computation:
// a registry of indicator kinds, a specifier parser, a dependency-aware
// planner, and the engine that executes plans over columnar series.
package indicators

import (
	"context"
	"fmt"
	"sync"

	"taframe/internal/logging"
)

// ColumnSource is the read surface the engine consumes. Column returns
// the full series for a base column or an error wrapping
// ErrMissingColumn. Returned slices are read-only to the engine.
type ColumnSource interface {
	Column(name string) ([]float64, error)
	RowCount() int
	ColumnNames() []string
}

// Result holds one output series per requested column, in request
// order with multi-output kinds expanded and duplicates collapsed.
type Result struct {
	names  []string
	series map[string][]float64
}

// Columns returns the output column names in order.
func (r *Result) Columns() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Series returns the series stored under the given column name.
func (r *Result) Series(name string) ([]float64, bool) {
	s, ok := r.series[name]
	return s, ok
}

// Engine computes indicator columns over a column source. An engine is
// stateless between calls and safe for concurrent use.
type Engine struct {
	registry *Registry
	workers  int
}

// NewEngine creates an engine backed by the given registry. workers
// caps concurrent node execution; values below 2 mean sequential.
func NewEngine(registry *Registry, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{registry: registry, workers: workers}
}

// Registry returns the registry the engine computes from.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// computed is one plan node's output: primary for single-output kinds,
// named for multi-output kinds.
type computed struct {
	primary []float64
	named   map[string][]float64
}

// Compute parses the requested specifier texts, plans the work, and
// executes the plan against source. Parsing, planning, and input
// validation all complete before the first kernel runs, so a returned
// error means no partial results were produced.
func (e *Engine) Compute(ctx context.Context, source ColumnSource, texts []string) (*Result, error) {
	requests := make([]Specifier, len(texts))
	for i, text := range texts {
		spec, err := e.registry.Parse(text)
		if err != nil {
			return nil, err
		}
		requests[i] = spec
	}

	plan, err := BuildPlan(e.registry, requests)
	if err != nil {
		return nil, err
	}
	if err := validateInputs(plan, source); err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	logger.Debug().
		Int("requested", len(texts)).
		Int("planned", len(plan.Nodes)).
		Int("rows", source.RowCount()).
		Msg("executing indicator plan")

	out := make([]*computed, len(plan.Nodes))
	if e.workers > 1 && len(plan.Nodes) > 1 {
		err = e.runParallel(ctx, plan, source, out)
	} else {
		err = runSequential(ctx, plan, source, out)
	}
	if err != nil {
		return nil, err
	}

	result, err := materialize(plan, out)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("columns", len(result.names)).Msg("indicator plan complete")
	return result, nil
}

// validateInputs checks every plan node's required base columns against
// the source before any computation starts.
func validateInputs(plan *Plan, source ColumnSource) error {
	available := make(map[string]bool)
	for _, name := range source.ColumnNames() {
		available[name] = true
	}
	for i := range plan.Nodes {
		node := &plan.Nodes[i]
		for _, input := range node.Desc.Inputs {
			if !available[input] {
				return fmt.Errorf("%s: %w %q", node.Spec, ErrMissingColumn, input)
			}
		}
	}
	return nil
}

func runSequential(ctx context.Context, plan *Plan, source ColumnSource, out []*computed) error {
	for i := range plan.Nodes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		res, err := executeNode(plan, i, source, out)
		if err != nil {
			return err
		}
		out[i] = res
	}
	return nil
}

// runParallel executes independent nodes concurrently. Each out slot is
// written by exactly one worker; the done channel orders that write
// before any dependent's read, so no locking is needed.
func (e *Engine) runParallel(ctx context.Context, plan *Plan, source ColumnSource, out []*computed) error {
	n := len(plan.Nodes)
	workers := e.workers
	if workers > n {
		workers = n
	}

	remaining := make([]int, n)
	dependents := make([][]int, n)
	for i := range plan.Nodes {
		remaining[i] = len(plan.Nodes[i].Deps)
		for _, dep := range plan.Nodes[i].Deps {
			dependents[dep] = append(dependents[dep], i)
		}
	}

	type nodeResult struct {
		idx int
		err error
	}
	ready := make(chan int, n)
	done := make(chan nodeResult, n)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range ready {
				select {
				case <-ctx.Done():
					done <- nodeResult{idx: idx, err: ctx.Err()}
					continue
				default:
				}
				res, err := executeNode(plan, idx, source, out)
				if err == nil {
					out[idx] = res
				}
				done <- nodeResult{idx: idx, err: err}
			}
		}()
	}

	// Seed nodes with no dependencies, then release dependents as their
	// dependencies complete. running counts results still outstanding.
	running := 0
	for i := range plan.Nodes {
		if remaining[i] == 0 {
			ready <- i
			running++
		}
	}

	var firstErr error
	for running > 0 {
		res := <-done
		running--
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		if firstErr != nil {
			continue
		}
		for _, dependent := range dependents[res.idx] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				ready <- dependent
				running++
			}
		}
	}
	close(ready)
	wg.Wait()
	return firstErr
}

// executeNode runs one node's kernel. Dependency outputs must already
// be present in out; their absence is a planner bug, not caller error.
func executeNode(plan *Plan, idx int, source ColumnSource, out []*computed) (*computed, error) {
	node := &plan.Nodes[idx]
	rows := source.RowCount()

	in := ComputeInput{
		Rows:   rows,
		Params: node.Spec.Params,
		Bases:  make(map[string][]float64, len(node.Desc.Inputs)),
		Subs:   make(map[string][]float64, len(node.Deps)),
	}
	for _, name := range node.Desc.Inputs {
		col, err := source.Column(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Spec, err)
		}
		if len(col) != rows {
			return nil, fmt.Errorf("%s: column %q has %d rows, want %d: %w",
				node.Spec, name, len(col), rows, ErrRowCountMismatch)
		}
		in.Bases[name] = col
	}
	for _, dep := range node.Deps {
		depNode := &plan.Nodes[dep]
		depOut := out[dep]
		if depOut == nil {
			return nil, fmt.Errorf("%s: dependency %s not computed: %w",
				node.Spec, depNode.Spec, ErrInternalPlan)
		}
		key := depNode.Spec.String()
		if depNode.Desc.ComputeMulti != nil {
			for _, suffix := range depNode.Desc.Outputs {
				in.Subs[key+"_"+suffix] = depOut.named[suffix]
			}
		} else {
			in.Subs[key] = depOut.primary
		}
	}

	if node.Desc.Compute != nil {
		series, err := node.Desc.Compute(in)
		if err != nil {
			return nil, fmt.Errorf("computing %s: %w", node.Spec, err)
		}
		if len(series) != rows {
			return nil, fmt.Errorf("computing %s: got %d rows, want %d: %w",
				node.Spec, len(series), rows, ErrRowCountMismatch)
		}
		return &computed{primary: series}, nil
	}

	named, err := node.Desc.ComputeMulti(in)
	if err != nil {
		return nil, fmt.Errorf("computing %s: %w", node.Spec, err)
	}
	for _, suffix := range node.Desc.Outputs {
		series, ok := named[suffix]
		if !ok {
			return nil, fmt.Errorf("computing %s: missing %q output: %w",
				node.Spec, suffix, ErrInternalPlan)
		}
		if len(series) != rows {
			return nil, fmt.Errorf("computing %s: output %q has %d rows, want %d: %w",
				node.Spec, suffix, len(series), rows, ErrRowCountMismatch)
		}
	}
	return &computed{named: named}, nil
}

// materialize names the requested nodes' outputs in request order.
// Duplicate requests collapse to the first occurrence; multi-output
// kinds expand one column per declared suffix.
func materialize(plan *Plan, out []*computed) (*Result, error) {
	result := &Result{series: make(map[string][]float64)}
	seen := make(map[string]bool)
	for _, idx := range plan.Requests {
		node := &plan.Nodes[idx]
		res := out[idx]
		if res == nil {
			return nil, fmt.Errorf("%s: not computed: %w", node.Spec, ErrInternalPlan)
		}
		key := node.Spec.String()
		if node.Desc.ComputeMulti != nil {
			for _, suffix := range node.Desc.Outputs {
				name := key + "_" + suffix
				if seen[name] {
					continue
				}
				seen[name] = true
				result.names = append(result.names, name)
				result.series[name] = res.named[suffix]
			}
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		result.names = append(result.names, key)
		result.series[key] = res.primary
	}
	return result, nil
}
