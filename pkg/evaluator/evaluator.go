// Package evaluator implements the expression evaluation engine.
//
// The evaluator receives a parsed Abstract Syntax Tree (AST) from the parser
// and evaluates it against a set of variable bindings. All values are
// float64; comparisons and logical operators return 1 for true and 0 for
// false, and NaN propagates through arithmetic per IEEE 754.
//
// # Example
//
//	ev := evaluator.New()
//	result, err := ev.Eval(expr, map[string]float64{"rain": 4.2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// An Evaluator is stateless apart from its options and safe for concurrent
// use; a single compiled expression may be evaluated from many goroutines
// at once with different bindings.
package evaluator

import (
	"fmt"
	"math"

	"github.com/hydrokit/flowexpr/pkg/functions"
	"github.com/hydrokit/flowexpr/pkg/types"
)

// float64Epsilon is the tolerance used by the equality operators.
// Two values compare equal when they differ by less than 2^-52.
const float64Epsilon = 0x1p-52

// Evaluator evaluates compiled expressions against variable bindings.
type Evaluator struct {
	opts EvalOptions
}

// New creates a new Evaluator with the given options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxDepth <= 0 {
		options.MaxDepth = DefaultMaxDepth
	}
	if options.Functions == nil {
		options.Functions = functions.Default()
	}
	return &Evaluator{opts: options}
}

// Eval evaluates a compiled expression against the given bindings.
// vars may be nil when the expression references no variables.
func (e *Evaluator) Eval(expr *types.Expression, vars map[string]float64) (float64, error) {
	if expr == nil || expr.AST() == nil {
		return 0, fmt.Errorf("invalid expression")
	}
	return e.evalNode(expr.AST(), vars, 0)
}

// EvalAST evaluates a bare AST node against the given bindings.
// Useful for callers that assemble or transform trees directly.
func (e *Evaluator) EvalAST(node *types.ASTNode, vars map[string]float64) (float64, error) {
	if node == nil {
		return 0, fmt.Errorf("invalid expression")
	}
	return e.evalNode(node, vars, 0)
}

func (e *Evaluator) evalNode(n *types.ASTNode, vars map[string]float64, depth int) (float64, error) {
	if depth >= e.opts.MaxDepth {
		return 0, types.NewError(types.ErrEvaluationTooDeep,
			fmt.Sprintf("Evaluation exceeds maximum depth of %d", e.opts.MaxDepth), n.Position)
	}

	switch n.Type {
	case types.NodeConstant:
		return n.NumValue, nil

	case types.NodeVariable:
		return e.resolveVariable(n, vars)

	case types.NodeUnary:
		v, err := e.evalNode(n.Operand, vars, depth+1)
		if err != nil {
			return 0, err
		}
		switch n.UnaryOp {
		case types.OpNegate:
			return -v, nil
		case types.OpPlus:
			return v, nil
		case types.OpNot:
			if v == 0 {
				return 1, nil
			}
			return 0, nil
		}
		return 0, types.NewError(types.ErrUnexpectedToken,
			fmt.Sprintf("Unknown unary operator %d", n.UnaryOp), n.Position)

	case types.NodeBinary:
		l, err := e.evalNode(n.LHS, vars, depth+1)
		if err != nil {
			return 0, err
		}
		r, err := e.evalNode(n.RHS, vars, depth+1)
		if err != nil {
			return 0, err
		}
		return e.applyBinary(n, l, r)

	case types.NodeCall:
		return e.evalCall(n, vars, depth)
	}

	return 0, types.NewError(types.ErrUnexpectedToken,
		fmt.Sprintf("Unknown node type %s", n.Type), n.Position)
}

// resolveVariable looks up a variable reference, applying the missing
// variable policy when the name is not bound.
func (e *Evaluator) resolveVariable(n *types.ASTNode, vars map[string]float64) (float64, error) {
	if v, ok := vars[n.Name]; ok {
		return v, nil
	}
	switch e.opts.MissingVariable {
	case MissingVariableSubstitute:
		return e.opts.MissingDefault, nil
	case MissingVariableNaN:
		return math.NaN(), nil
	default:
		return 0, types.NewError(types.ErrVariableNotFound,
			fmt.Sprintf("Variable '%s' is not defined", n.Name), n.Position).WithToken(n.Name)
	}
}

// applyBinary applies a binary operator to already-evaluated operands.
func (e *Evaluator) applyBinary(n *types.ASTNode, l, r float64) (float64, error) {
	switch n.BinaryOp {
	case types.OpAdd:
		return l + r, nil
	case types.OpSub:
		return l - r, nil
	case types.OpMul:
		return l * r, nil
	case types.OpDiv:
		if r == 0 {
			switch e.opts.DivisionByZero {
			case DivisionByZeroFail:
				return 0, types.NewError(types.ErrDivisionByZero, "Division by zero", n.Position)
			case DivisionByZeroNaN:
				return math.NaN(), nil
			}
		}
		return l / r, nil
	case types.OpMod:
		if r == 0 {
			switch e.opts.DivisionByZero {
			case DivisionByZeroFail:
				return 0, types.NewError(types.ErrDivisionByZero, "Modulo by zero", n.Position)
			case DivisionByZeroNaN:
				return math.NaN(), nil
			}
		}
		return math.Mod(l, r), nil
	case types.OpPow:
		return math.Pow(l, r), nil

	case types.OpEqual:
		return boolValue(almostEqual(l, r)), nil
	case types.OpNotEqual:
		return boolValue(!almostEqual(l, r)), nil
	case types.OpLess:
		return boolValue(l < r), nil
	case types.OpLessEqual:
		return boolValue(l <= r), nil
	case types.OpGreater:
		return boolValue(l > r), nil
	case types.OpGreaterEqual:
		return boolValue(l >= r), nil

	case types.OpAnd:
		return boolValue(l != 0 && r != 0), nil
	case types.OpOr:
		return boolValue(l != 0 || r != 0), nil
	}

	return 0, types.NewError(types.ErrUnexpectedToken,
		fmt.Sprintf("Unknown binary operator %d", n.BinaryOp), n.Position)
}

// evalCall evaluates a function call node, applying the math error policy
// to the result.
func (e *Evaluator) evalCall(n *types.ASTNode, vars map[string]float64, depth int) (float64, error) {
	spec, ok := e.opts.Functions.Lookup(n.Name)
	if !ok {
		return 0, types.NewError(types.ErrUndefinedFunction,
			fmt.Sprintf("Unknown function '%s'", n.Name), n.Position).WithToken(n.Name)
	}

	// Expressions built by the parser have already been arity-checked;
	// hand-assembled ASTs have not.
	got := len(n.Arguments)
	if got < spec.MinArgs || (spec.MaxArgs != functions.Variadic && got > spec.MaxArgs) {
		return 0, types.NewError(types.ErrInvalidArguments,
			fmt.Sprintf("Wrong number of arguments for '%s': got %d", n.Name, got), n.Position)
	}

	args := make([]float64, got)
	argsFinite := true
	for i, arg := range n.Arguments {
		v, err := e.evalNode(arg, vars, depth+1)
		if err != nil {
			return 0, err
		}
		args[i] = v
		if math.IsNaN(v) || math.IsInf(v, 0) {
			argsFinite = false
		}
	}

	result := spec.Fn(args)

	if e.opts.MathError == MathErrorFail && argsFinite &&
		(math.IsNaN(result) || math.IsInf(result, 0)) {
		return 0, types.NewError(types.ErrMathDomain,
			fmt.Sprintf("Math error in call to '%s'", n.Name), n.Position).WithToken(n.Name)
	}

	return result, nil
}

// almostEqual compares two values with an absolute epsilon tolerance.
// NaN never compares equal to anything, including itself.
func almostEqual(l, r float64) bool {
	return math.Abs(l-r) < float64Epsilon
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
