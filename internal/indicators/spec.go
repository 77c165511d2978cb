package indicators

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Specifier identifies one indicator computation: a registered kind plus
// its full parameter list. Two specifiers with equal kind and parameters
// describe the same series.
type Specifier struct {
	Kind   string
	Params []float64
}

// String renders the canonical text form, kind_param[_param...], with
// parameters in shortest round-trip notation. Parsing the result yields
// an equal specifier.
func (s Specifier) String() string {
	if len(s.Params) == 0 {
		return s.Kind
	}
	var b strings.Builder
	b.WriteString(s.Kind)
	for _, p := range s.Params {
		b.WriteByte('_')
		b.WriteString(formatParam(p))
	}
	return b.String()
}

// Equal reports whether two specifiers have the same kind and parameters.
func (s Specifier) Equal(other Specifier) bool {
	if s.Kind != other.Kind || len(s.Params) != len(other.Params) {
		return false
	}
	for i, p := range s.Params {
		if p != other.Params[i] {
			return false
		}
	}
	return true
}

func formatParam(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParamSpec declares one parameter a kind accepts. A NaN Default marks
// the parameter required; NaN Min or Max leaves that bound open.
// Optional parameters must trail all required ones.
type ParamSpec struct {
	Name    string
	Integer bool
	Default float64
	Min     float64
	Max     float64
}

// Required reports whether the parameter has no default.
func (p ParamSpec) Required() bool {
	return math.IsNaN(p.Default)
}

func requiredInt(name string, min float64) ParamSpec {
	return ParamSpec{Name: name, Integer: true, Default: math.NaN(), Min: min, Max: math.NaN()}
}

func optionalInt(name string, def, min float64) ParamSpec {
	return ParamSpec{Name: name, Integer: true, Default: def, Min: min, Max: math.NaN()}
}

func optionalFloat(name string, def, min float64) ParamSpec {
	return ParamSpec{Name: name, Integer: false, Default: def, Min: min, Max: math.NaN()}
}

// Parse converts specifier text into a validated Specifier. The kind is
// matched case-insensitively; omitted trailing optional parameters are
// filled from their defaults, so the result always carries the full
// parameter list.
func (r *Registry) Parse(text string) (Specifier, error) {
	if text == "" {
		return Specifier{}, fmt.Errorf("parse %q: %w: empty specifier", text, ErrMalformedSpecifier)
	}
	tokens := strings.Split(text, "_")
	for _, tok := range tokens {
		if tok == "" {
			return Specifier{}, fmt.Errorf("parse %q: %w: empty token", text, ErrMalformedSpecifier)
		}
	}

	kind := strings.ToLower(tokens[0])
	desc, ok := r.kinds[kind]
	if !ok {
		return Specifier{}, fmt.Errorf("parse %q: %w %q", text, ErrUnknownKind, kind)
	}

	given := make([]float64, 0, len(tokens)-1)
	for _, tok := range tokens[1:] {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Specifier{}, fmt.Errorf("parse %q: %w: parameter %q is not numeric", text, ErrMalformedSpecifier, tok)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Specifier{}, fmt.Errorf("parse %q: %w: parameter %q is not finite", text, ErrMalformedSpecifier, tok)
		}
		given = append(given, v)
	}

	params, err := desc.fillParams(given)
	if err != nil {
		return Specifier{}, fmt.Errorf("parse %q: %w", text, err)
	}
	return Specifier{Kind: kind, Params: params}, nil
}

// fillParams validates the supplied parameters against the descriptor and
// appends defaults for omitted trailing optionals.
func (d *Descriptor) fillParams(given []float64) ([]float64, error) {
	required := 0
	for _, p := range d.Params {
		if p.Required() {
			required++
		}
	}
	if len(given) < required {
		return nil, fmt.Errorf("%w: %s requires at least %d parameters, got %d",
			ErrInvalidParameter, d.Kind, required, len(given))
	}
	if len(given) > len(d.Params) {
		return nil, fmt.Errorf("%w: %s accepts at most %d parameters, got %d",
			ErrInvalidParameter, d.Kind, len(d.Params), len(given))
	}

	params := make([]float64, len(d.Params))
	for i, p := range d.Params {
		if i >= len(given) {
			params[i] = p.Default
			continue
		}
		v := given[i]
		if p.Integer && v != math.Trunc(v) {
			return nil, fmt.Errorf("%w: %s %s must be an integer, got %s",
				ErrInvalidParameter, d.Kind, p.Name, formatParam(v))
		}
		if !math.IsNaN(p.Min) && v < p.Min {
			return nil, fmt.Errorf("%w: %s %s must be >= %s, got %s",
				ErrInvalidParameter, d.Kind, p.Name, formatParam(p.Min), formatParam(v))
		}
		if !math.IsNaN(p.Max) && v > p.Max {
			return nil, fmt.Errorf("%w: %s %s must be <= %s, got %s",
				ErrInvalidParameter, d.Kind, p.Name, formatParam(p.Max), formatParam(v))
		}
		params[i] = v
	}
	return params, nil
}
