package indicators

import (
	"fmt"
	"sort"
	"strings"
)

// Column names data sources are expected to provide.
const (
	ColumnOpen   = "open"
	ColumnHigh   = "high"
	ColumnLow    = "low"
	ColumnClose  = "close"
	ColumnVolume = "volume"
)

// ComputeInput carries everything one kernel invocation needs. Bases is
// keyed by column name, Subs by the canonical text of the dependency
// specifier (with an output suffix appended for multi-output deps). All
// series have exactly Rows elements and must not be mutated.
type ComputeInput struct {
	Rows   int
	Params []float64
	Bases  map[string][]float64
	Subs   map[string][]float64
}

// Base returns the input column series registered under name.
func (in ComputeInput) Base(name string) []float64 {
	return in.Bases[name]
}

// Sub returns the series of a declared sub-dependency.
func (in ComputeInput) Sub(kind string, params ...float64) []float64 {
	return in.Subs[Specifier{Kind: kind, Params: params}.String()]
}

// Descriptor declares one indicator kind: its parameters, the raw
// columns and sub-indicators it reads, and the kernel that computes it.
// Exactly one of Compute and ComputeMulti must be set; Outputs names the
// suffixes of a ComputeMulti kernel and must be empty otherwise.
type Descriptor struct {
	Kind         string
	Params       []ParamSpec
	Inputs       []string
	SubDeps      func(params []float64) []Specifier
	Outputs      []string
	Compute      func(in ComputeInput) ([]float64, error)
	ComputeMulti func(in ComputeInput) (map[string][]float64, error)
}

// Registry maps indicator kinds to their descriptors. A registry is
// immutable once handed to an engine; register everything up front.
type Registry struct {
	kinds map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]*Descriptor)}
}

// NewDefaultRegistry creates a registry with all builtin kinds.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	mustRegister(r,
		smaDescriptor(),
		emaDescriptor(),
		trendDescriptor(),
		momDescriptor(),
		rocDescriptor(),
		rsiDescriptor(),
		stochKDescriptor(),
		stochDDescriptor(),
		willRDescriptor(),
		trDescriptor(),
		atrDescriptor(),
		stdDevDescriptor(),
		bollDescriptor(),
		hhvDescriptor(),
		llvDescriptor(),
		hiloDescriptor(),
	)
	return r
}

// Register adds a descriptor under its lowercased kind.
func (r *Registry) Register(desc Descriptor) error {
	kind := strings.ToLower(desc.Kind)
	if kind == "" {
		return fmt.Errorf("register: empty kind")
	}
	if strings.Contains(kind, "_") {
		return fmt.Errorf("register %q: kind must not contain underscores", kind)
	}
	if (desc.Compute == nil) == (desc.ComputeMulti == nil) {
		return fmt.Errorf("register %q: exactly one of Compute and ComputeMulti must be set", kind)
	}
	if desc.ComputeMulti != nil && len(desc.Outputs) == 0 {
		return fmt.Errorf("register %q: multi-output kind must declare Outputs", kind)
	}
	if desc.Compute != nil && len(desc.Outputs) != 0 {
		return fmt.Errorf("register %q: single-output kind must not declare Outputs", kind)
	}
	seenOptional := false
	for _, p := range desc.Params {
		if p.Required() && seenOptional {
			return fmt.Errorf("register %q: required parameter %s after optional", kind, p.Name)
		}
		if !p.Required() {
			seenOptional = true
		}
	}
	if _, exists := r.kinds[kind]; exists {
		return fmt.Errorf("register: %w %q", ErrDuplicateKind, kind)
	}

	desc.Kind = kind
	r.kinds[kind] = &desc
	return nil
}

// Lookup returns the descriptor registered under kind.
func (r *Registry) Lookup(kind string) (*Descriptor, error) {
	desc, ok := r.kinds[strings.ToLower(kind)]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	return desc, nil
}

// Kinds returns all registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.kinds))
	for kind := range r.kinds {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func mustRegister(r *Registry, descs ...Descriptor) {
	for _, desc := range descs {
		if err := r.Register(desc); err != nil {
			panic(err)
		}
	}
}
