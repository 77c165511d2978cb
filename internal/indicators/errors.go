package indicators

import "errors"

var (
	// ErrMalformedSpecifier indicates specifier text that does not match
	// the kind_param[_param...] shape.
	ErrMalformedSpecifier = errors.New("malformed indicator specifier")

	// ErrUnknownKind indicates a specifier whose kind is not registered.
	ErrUnknownKind = errors.New("unknown indicator kind")

	// ErrInvalidParameter indicates a parameter with the wrong arity,
	// the wrong type, or a value outside the kind's accepted range.
	ErrInvalidParameter = errors.New("invalid indicator parameter")

	// ErrDuplicateKind indicates an attempt to register a kind twice.
	ErrDuplicateKind = errors.New("duplicate indicator kind")

	// ErrMissingColumn indicates a required input column the data source
	// cannot provide.
	ErrMissingColumn = errors.New("missing input column")

	// ErrCyclicDependency indicates an indicator whose dependency chain
	// reaches back to itself.
	ErrCyclicDependency = errors.New("cyclic indicator dependency")

	// ErrInternalPlan indicates a broken execution invariant: a
	// dependency absent when its dependent runs, or a kernel violating
	// its declared output contract. Always a bug, never caller error.
	ErrInternalPlan = errors.New("internal plan invariant violation")

	// ErrRowCountMismatch indicates a series whose length differs from
	// the source row count.
	ErrRowCountMismatch = errors.New("row count mismatch")
)
