package evaluator

import "github.com/hydrokit/flowexpr/pkg/functions"

// MissingVariablePolicy controls what happens when an expression references
// a variable that is absent from the bindings. The zero value is the default.
type MissingVariablePolicy uint8

const (
	// MissingVariableFail stops evaluation with ErrVariableNotFound.
	MissingVariableFail MissingVariablePolicy = iota
	// MissingVariableSubstitute evaluates the reference as the substitute
	// value (0 unless changed via WithMissingVariableDefault).
	MissingVariableSubstitute
	// MissingVariableNaN evaluates the reference as NaN, which then
	// propagates through arithmetic per IEEE 754.
	MissingVariableNaN
)

// String returns the policy name.
func (p MissingVariablePolicy) String() string {
	switch p {
	case MissingVariableFail:
		return "fail"
	case MissingVariableSubstitute:
		return "substitute"
	case MissingVariableNaN:
		return "nan"
	default:
		return "(unknown)"
	}
}

// DivisionByZeroPolicy controls the result of x/0 and x%0.
// The zero value is the default.
type DivisionByZeroPolicy uint8

const (
	// DivisionByZeroInfinity yields the IEEE 754 result: a signed infinity
	// for x/0 with nonzero x, NaN for 0/0 and x%0.
	DivisionByZeroInfinity DivisionByZeroPolicy = iota
	// DivisionByZeroFail stops evaluation with ErrDivisionByZero.
	DivisionByZeroFail
	// DivisionByZeroNaN yields NaN.
	DivisionByZeroNaN
)

// String returns the policy name.
func (p DivisionByZeroPolicy) String() string {
	switch p {
	case DivisionByZeroInfinity:
		return "infinity"
	case DivisionByZeroFail:
		return "fail"
	case DivisionByZeroNaN:
		return "nan"
	default:
		return "(unknown)"
	}
}

// MathErrorPolicy controls what happens when a function call produces a
// non-finite result from finite arguments, e.g. sqrt(-1) or ln(0).
// The zero value is the default.
type MathErrorPolicy uint8

const (
	// MathErrorNaN lets the IEEE 754 result (NaN or an infinity) propagate.
	MathErrorNaN MathErrorPolicy = iota
	// MathErrorFail stops evaluation with ErrMathDomain.
	MathErrorFail
)

// String returns the policy name.
func (p MathErrorPolicy) String() string {
	switch p {
	case MathErrorNaN:
		return "nan"
	case MathErrorFail:
		return "fail"
	default:
		return "(unknown)"
	}
}

// DefaultMaxDepth is the evaluation recursion limit applied when no
// WithMaxDepth option is given. It matches the parser's default, so any
// expression the parser accepts can also be evaluated.
const DefaultMaxDepth = 256

// EvalOptions configures evaluator behavior.
// The zero value selects all default policies.
type EvalOptions struct {
	// MissingVariable selects the policy for unresolved variable references.
	MissingVariable MissingVariablePolicy
	// MissingDefault is the value substituted under MissingVariableSubstitute.
	MissingDefault float64
	// DivisionByZero selects the policy for division and modulo by zero.
	DivisionByZero DivisionByZeroPolicy
	// MathError selects the policy for non-finite function results.
	MathError MathErrorPolicy
	// MaxDepth limits recursion depth; 0 means DefaultMaxDepth.
	MaxDepth int
	// Functions resolves call nodes; nil means functions.Default().
	Functions *functions.Registry
}

// EvalOption configures an Evaluator.
type EvalOption func(*EvalOptions)

// WithMissingVariablePolicy sets the missing variable policy.
func WithMissingVariablePolicy(p MissingVariablePolicy) EvalOption {
	return func(opts *EvalOptions) {
		opts.MissingVariable = p
	}
}

// WithMissingVariableDefault sets the substitute value used under
// MissingVariableSubstitute and implies that policy.
func WithMissingVariableDefault(v float64) EvalOption {
	return func(opts *EvalOptions) {
		opts.MissingVariable = MissingVariableSubstitute
		opts.MissingDefault = v
	}
}

// WithDivisionByZeroPolicy sets the division by zero policy.
func WithDivisionByZeroPolicy(p DivisionByZeroPolicy) EvalOption {
	return func(opts *EvalOptions) {
		opts.DivisionByZero = p
	}
}

// WithMathErrorPolicy sets the math error policy.
func WithMathErrorPolicy(p MathErrorPolicy) EvalOption {
	return func(opts *EvalOptions) {
		opts.MathError = p
	}
}

// WithMaxDepth sets the maximum evaluation depth.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithFunctions sets the function registry used to resolve call nodes.
// It must match the registry the expression was parsed with, otherwise
// calls may fail to resolve at evaluation time.
func WithFunctions(registry *functions.Registry) EvalOption {
	return func(opts *EvalOptions) {
		opts.Functions = registry
	}
}
