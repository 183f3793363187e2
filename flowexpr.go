// Package flowexpr implements an arithmetic expression language for
// hydrological model definitions.
//
// Expressions operate on float64 values and reference model variables by
// plain or dotted name (rain, data.evap.mm). The language supports the
// usual arithmetic, comparison, and logical operators plus a registry of
// mathematical functions; comparisons and logical operators return 1 or 0.
//
// # Quick Start
//
//	// Compile once, evaluate many times
//	expr, err := flowexpr.Compile("max(rain - evap, 0)")
//	result, err := flowexpr.NewEvaluator().Eval(expr, map[string]float64{
//	    "rain": 4.2,
//	    "evap": 1.1,
//	})
//
//	// One-shot evaluation
//	result, err := flowexpr.Eval("2 + 3 * 4", nil) // 14
//
//	// Editor-style validation with caching
//	v := flowexpr.NewValidator()
//	res := v.Validate("maximum(a, b)")
//	// res.Err.Suggestion == "max"
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/hydrokit/flowexpr/pkg/parser
//   - Evaluator: github.com/hydrokit/flowexpr/pkg/evaluator
//   - Functions: github.com/hydrokit/flowexpr/pkg/functions
//   - Types: github.com/hydrokit/flowexpr/pkg/types
package flowexpr

import (
	"fmt"

	"github.com/hydrokit/flowexpr/pkg/evaluator"
	"github.com/hydrokit/flowexpr/pkg/parser"
	"github.com/hydrokit/flowexpr/pkg/types"
)

// Version returns the current version of flowexpr.
func Version() string {
	return "v0.1.0-dev"
}

// Compile parses an expression for repeated evaluation.
//
// The compiled expression can be evaluated any number of times against
// different variable bindings. It is safe for concurrent use.
func Compile(source string, opts ...parser.CompileOption) (*types.Expression, error) {
	return parser.Parse(source, opts...)
}

// MustCompile is like Compile but panics if the expression cannot be
// compiled. It simplifies safe initialization of global variables.
func MustCompile(source string) *types.Expression {
	expr, err := Compile(source)
	if err != nil {
		panic(fmt.Sprintf("flowexpr: Compile(%q): %v", source, err))
	}
	return expr
}

// NewEvaluator creates an evaluator with the given options.
// It is a convenience re-export of [evaluator.New].
func NewEvaluator(opts ...evaluator.EvalOption) *evaluator.Evaluator {
	return evaluator.New(opts...)
}

// Eval is a convenience function that compiles and evaluates an expression
// in a single call.
//
// For repeated evaluations of the same expression, use Compile plus an
// [evaluator.Evaluator] instead.
func Eval(source string, vars map[string]float64, opts ...evaluator.EvalOption) (float64, error) {
	expr, err := Compile(source)
	if err != nil {
		return 0, err
	}
	return evaluator.New(opts...).Eval(expr, vars)
}
