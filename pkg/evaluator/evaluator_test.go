package evaluator

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/hydrokit/flowexpr/pkg/functions"
	"github.com/hydrokit/flowexpr/pkg/parser"
	"github.com/hydrokit/flowexpr/pkg/types"
)

func mustParse(t testing.TB, input string) *types.Expression {
	t.Helper()
	expr, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return expr
}

func evalString(t *testing.T, input string, vars map[string]float64, opts ...EvalOption) (float64, error) {
	t.Helper()
	return New(opts...).Eval(mustParse(t, input), vars)
}

func expectValue(t *testing.T, input string, vars map[string]float64, want float64, opts ...EvalOption) {
	t.Helper()
	got, err := evalString(t, input, vars, opts...)
	if err != nil {
		t.Fatalf("Eval(%q): %v", input, err)
	}
	if math.IsNaN(want) {
		if !math.IsNaN(got) {
			t.Fatalf("Eval(%q) = %v, want NaN", input, got)
		}
		return
	}
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Eval(%q) = %v, want %v", input, got, want)
	}
}

func expectErrCode(t *testing.T, input string, vars map[string]float64, code types.ErrorCode, opts ...EvalOption) *types.Error {
	t.Helper()
	_, err := evalString(t, input, vars, opts...)
	if err == nil {
		t.Fatalf("Eval(%q): expected error %s, got none", input, code)
	}
	var terr *types.Error
	if !errors.As(err, &terr) {
		t.Fatalf("Eval(%q): expected *types.Error, got %T", input, err)
	}
	if terr.Code != code {
		t.Fatalf("Eval(%q): expected code %s, got %s (%s)", input, code, terr.Code, terr.Message)
	}
	return terr
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 - 4 - 3", 3},
		{"2^3^2", 512},
		{"2**10", 1024},
		{"-x^2", 9}, // unary minus binds above the power operator
		{"10 % 3", 1},
		{"7 / 2", 3.5},
		{"-(-5)", 5},
		{"+x", 3},
		{"1.5e2 + .5", 150.5},
	}
	vars := map[string]float64{"x": 3}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			expectValue(t, tc.input, vars, tc.want)
		})
	}
}

func TestEvalComparisons(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1 < 2", 1},
		{"2 < 1", 0},
		{"2 <= 2", 1},
		{"3 > 2", 1},
		{"2 >= 3", 0},
		{"1 == 1", 1},
		{"1 == 2", 0},
		{"1 != 2", 1},
		{"0.1 + 0.2 == 0.3", 1}, // epsilon comparison
		{"!1", 0},
		{"!0", 1},
		{"1 & 1", 1},
		{"1 & 0", 0},
		{"0 | 0", 0},
		{"0 | 2", 1},
		{"-1 & 0.5", 1}, // any nonzero value is true
		{"a > 0 & a < 10", 1},
	}
	vars := map[string]float64{"a": 5}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			expectValue(t, tc.input, vars, tc.want)
		})
	}
}

func TestEvalFunctions(t *testing.T) {
	vars := map[string]float64{"rain": 4.2, "evap": 1.1, "temp": -3}
	expectValue(t, "max(rain - evap, 0)", vars, 3.1)
	expectValue(t, "if(temp > 0, rain, 0)", vars, 0)
	expectValue(t, "if(temp < 0, rain, 0)", vars, 4.2)
	expectValue(t, "mean(2, 4, 6, 8)", vars, 5)
	expectValue(t, "sqrt(pow(3, 2) + pow(4, 2))", vars, 5)
}

func TestEvalMissingVariablePolicies(t *testing.T) {
	terr := expectErrCode(t, "rain + 1", nil, types.ErrVariableNotFound)
	if terr.Token != "rain" {
		t.Fatalf("expected token 'rain', got %q", terr.Token)
	}

	expectValue(t, "rain + 1", nil, 1,
		WithMissingVariablePolicy(MissingVariableSubstitute))
	expectValue(t, "rain + 1", nil, 43,
		WithMissingVariableDefault(42))
	expectValue(t, "rain + 1", nil, math.NaN(),
		WithMissingVariablePolicy(MissingVariableNaN))

	// Bound variables are unaffected by the policy.
	expectValue(t, "rain + 1", map[string]float64{"rain": 2}, 3,
		WithMissingVariablePolicy(MissingVariableNaN))
}

func TestEvalDivisionByZeroPolicies(t *testing.T) {
	// Default: IEEE result.
	got, err := evalString(t, "1 / 0", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(got, 1) {
		t.Fatalf("1/0 = %v, want +Inf", got)
	}
	got, err = evalString(t, "-1 / 0", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(got, -1) {
		t.Fatalf("-1/0 = %v, want -Inf", got)
	}
	expectValue(t, "0 / 0", nil, math.NaN())

	expectErrCode(t, "1 / 0", nil, types.ErrDivisionByZero,
		WithDivisionByZeroPolicy(DivisionByZeroFail))
	expectErrCode(t, "1 % 0", nil, types.ErrDivisionByZero,
		WithDivisionByZeroPolicy(DivisionByZeroFail))
	expectValue(t, "1 / 0", nil, math.NaN(),
		WithDivisionByZeroPolicy(DivisionByZeroNaN))

	// A nonzero denominator never triggers the policy.
	expectValue(t, "1 / 4", nil, 0.25,
		WithDivisionByZeroPolicy(DivisionByZeroFail))
}

func TestEvalMathErrorPolicies(t *testing.T) {
	// Default: NaN propagates silently.
	expectValue(t, "sqrt(-1)", nil, math.NaN())
	expectValue(t, "sqrt(-1) + 5", nil, math.NaN())

	expectErrCode(t, "sqrt(-1)", nil, types.ErrMathDomain,
		WithMathErrorPolicy(MathErrorFail))
	expectErrCode(t, "ln(0)", nil, types.ErrMathDomain,
		WithMathErrorPolicy(MathErrorFail))

	// A NaN argument is not a fresh domain violation; it propagates even
	// under the failing policy.
	expectValue(t, "sqrt(x)", map[string]float64{"x": math.NaN()}, math.NaN(),
		WithMathErrorPolicy(MathErrorFail))

	expectValue(t, "sqrt(4)", nil, 2, WithMathErrorPolicy(MathErrorFail))
}

func TestEvalNaNComparisons(t *testing.T) {
	vars := map[string]float64{"x": math.NaN()}
	expectValue(t, "x == x", vars, 0)
	expectValue(t, "x != x", vars, 1)
	expectValue(t, "x < 1", vars, 0)
	expectValue(t, "x > 1", vars, 0)
	// NaN is nonzero, so it is truthy.
	expectValue(t, "x & 1", vars, 1)
}

func TestEvalDepthLimit(t *testing.T) {
	deep := strings.Repeat("(", 100) + "1" + strings.Repeat(")", 100)
	expr, err := parser.Parse(deep)
	if err != nil {
		t.Fatal(err)
	}
	// Grouping parens collapse during parsing, so this evaluates fine.
	if _, err := New().Eval(expr, nil); err != nil {
		t.Fatal(err)
	}

	// A deep operator chain evaluates within the default limit but fails
	// under a reduced one.
	chain := "x" + strings.Repeat(" + x", 50)
	vars := map[string]float64{"x": 1}
	expectValue(t, chain, vars, 51)
	expectErrCode(t, chain, vars, types.ErrEvaluationTooDeep, WithMaxDepth(10))
}

func TestEvalHandAssembledAST(t *testing.T) {
	ev := New()

	// call with wrong arity bypasses the parser's check
	call := types.NewASTNode(types.NodeCall, 0)
	call.Name = "sqrt"
	_, err := ev.EvalAST(call, nil)
	var terr *types.Error
	if !errors.As(err, &terr) || terr.Code != types.ErrInvalidArguments {
		t.Fatalf("expected %s, got %v", types.ErrInvalidArguments, err)
	}

	call.Name = "nope"
	_, err = ev.EvalAST(call, nil)
	if !errors.As(err, &terr) || terr.Code != types.ErrUndefinedFunction {
		t.Fatalf("expected %s, got %v", types.ErrUndefinedFunction, err)
	}
}

func TestEvalCustomRegistry(t *testing.T) {
	reg := functions.New(functions.Spec{
		Name:    "clamp01",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []float64) float64 {
			return math.Min(math.Max(args[0], 0), 1)
		},
	})

	expr, err := parser.Parse("clamp01(x)", parser.WithFunctions(reg))
	if err != nil {
		t.Fatal(err)
	}
	ev := New(WithFunctions(reg))
	got, err := ev.Eval(expr, map[string]float64{"x": 3.7})
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Fatalf("clamp01(3.7) = %v, want 1", got)
	}
}

func TestEvalConcurrent(t *testing.T) {
	expr := mustParse(t, "max(rain - evap, 0) * k")
	ev := New()

	done := make(chan error, 8)
	for g := 0; g < 8; g++ {
		g := g
		go func() {
			vars := map[string]float64{"rain": float64(g) + 2, "evap": 1, "k": 2}
			for i := 0; i < 1000; i++ {
				got, err := ev.Eval(expr, vars)
				if err != nil {
					done <- err
					return
				}
				if want := (float64(g) + 1) * 2; got != want {
					done <- errors.New("wrong result under concurrency")
					return
				}
			}
			done <- nil
		}()
	}
	for g := 0; g < 8; g++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
}

func BenchmarkEval(b *testing.B) {
	expr := mustParse(b, "if(temp > 0, max(rain - evap, 0) * k, 0)")
	ev := New()
	vars := map[string]float64{"temp": 5, "rain": 4.2, "evap": 1.1, "k": 0.9}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ev.Eval(expr, vars); err != nil {
			b.Fatal(err)
		}
	}
}
