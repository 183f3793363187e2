// Package functions provides the registry of callable functions available
// inside expressions.
//
// All functions operate on float64 values. Arity is declared per function
// and validated by the parser at compile time, so implementations may index
// their argument slice without checking its length.
//
// # Example
//
//	spec, ok := functions.Default().Lookup("max")
//	if ok {
//	    v := spec.Fn([]float64{2, 7, 5}) // 7
//	}
package functions

import (
	"math"
	"sort"

	"github.com/agext/levenshtein"
)

// Func is the signature of a callable function. Arity has already been
// validated against the owning Spec when the expression was parsed.
type Func func(args []float64) float64

// Variadic marks a Spec with no upper bound on argument count.
const Variadic = -1

// Spec describes one registered function.
type Spec struct {
	// Name is the function name as it appears inside expressions.
	// Names are matched case-sensitively and registered in lowercase.
	Name string
	// MinArgs is the minimum number of arguments.
	MinArgs int
	// MaxArgs is the maximum number of arguments, or Variadic for no limit.
	MaxArgs int
	// Fn is the implementation.
	Fn Func
}

// Registry holds an immutable set of function specs.
// It is safe for concurrent use once built.
type Registry struct {
	specs map[string]*Spec
	names []string // sorted
}

// New builds a registry from the given specs.
// Later specs with a duplicate name replace earlier ones.
func New(specs ...Spec) *Registry {
	r := &Registry{specs: make(map[string]*Spec, len(specs))}
	for i := range specs {
		s := specs[i]
		r.specs[s.Name] = &s
	}
	r.names = make([]string, 0, len(r.specs))
	for name := range r.specs {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r
}

// Lookup returns the spec for name, if registered.
func (r *Registry) Lookup(name string) (*Spec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// Names returns all registered function names, sorted. The slice is a copy.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// aliases maps common long-hand names to their registered short form.
// Checked before edit distance so that e.g. "average" suggests "mean"
// rather than a coincidentally closer name.
var aliases = map[string]string{
	"maximum":     "max",
	"minimum":     "min",
	"average":     "mean",
	"avg":         "mean",
	"square_root": "sqrt",
	"logarithm":   "log",
	"power":       "pow",
	"absolute":    "abs",
}

// nearestMaxDistance is the largest edit distance still offered as a
// suggestion. Catches case slips and one-or-two character typos.
const nearestMaxDistance = 2

// Nearest returns the registered name most plausibly meant by the unknown
// name, or "" when nothing is close enough. Alias matches win over edit
// distance; ties on distance resolve to the lexicographically smallest name.
func (r *Registry) Nearest(name string) string {
	if alias, ok := aliases[name]; ok {
		if _, registered := r.specs[alias]; registered {
			return alias
		}
	}

	best := ""
	bestDist := nearestMaxDistance + 1
	for _, candidate := range r.names {
		d := levenshtein.Distance(name, candidate, nil)
		if d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best
}

// defaultRegistry holds the built-in function set. Built once at package
// init and never mutated afterwards.
var defaultRegistry = New(builtins()...)

// Default returns the registry of built-in functions.
func Default() *Registry {
	return defaultRegistry
}

// builtins returns the specs for every built-in function.
//
// Domain violations (sqrt of a negative, ln of zero, asin outside [-1,1])
// follow IEEE 754 and yield NaN or an infinity; the evaluator decides
// whether that becomes an error based on its math error policy.
func builtins() []Spec {
	unary := func(name string, fn func(float64) float64) Spec {
		return Spec{Name: name, MinArgs: 1, MaxArgs: 1, Fn: func(args []float64) float64 {
			return fn(args[0])
		}}
	}
	binary := func(name string, fn func(float64, float64) float64) Spec {
		return Spec{Name: name, MinArgs: 2, MaxArgs: 2, Fn: func(args []float64) float64 {
			return fn(args[0], args[1])
		}}
	}

	return []Spec{
		unary("abs", math.Abs),
		unary("sqrt", math.Sqrt),
		unary("exp", math.Exp),
		unary("ln", math.Log),
		unary("log", math.Log), // alias of ln
		unary("log10", math.Log10),
		unary("sin", math.Sin),
		unary("cos", math.Cos),
		unary("tan", math.Tan),
		unary("asin", math.Asin),
		unary("acos", math.Acos),
		unary("atan", math.Atan),
		unary("sinh", math.Sinh),
		unary("cosh", math.Cosh),
		unary("tanh", math.Tanh),
		unary("ceil", math.Ceil),
		unary("floor", math.Floor),
		unary("round", math.Round),
		unary("sign", sign),

		binary("pow", math.Pow),
		binary("atan2", math.Atan2),

		{Name: "max", MinArgs: 2, MaxArgs: Variadic, Fn: maxOf},
		{Name: "min", MinArgs: 2, MaxArgs: Variadic, Fn: minOf},
		{Name: "sum", MinArgs: 2, MaxArgs: Variadic, Fn: sum},
		{Name: "mean", MinArgs: 2, MaxArgs: Variadic, Fn: mean},

		{Name: "if", MinArgs: 3, MaxArgs: 3, Fn: ifThenElse},
	}
}

func sign(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return x
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func maxOf(args []float64) float64 {
	m := args[0]
	for _, v := range args[1:] {
		m = math.Max(m, v)
	}
	return m
}

func minOf(args []float64) float64 {
	m := args[0]
	for _, v := range args[1:] {
		m = math.Min(m, v)
	}
	return m
}

func sum(args []float64) float64 {
	var s float64
	for _, v := range args {
		s += v
	}
	return s
}

func mean(args []float64) float64 {
	return sum(args) / float64(len(args))
}

// ifThenElse selects between two already-evaluated branches.
// The condition is truthy when nonzero; NaN compares unequal to zero and
// therefore selects the first branch.
func ifThenElse(args []float64) float64 {
	if args[0] != 0 {
		return args[1]
	}
	return args[2]
}
