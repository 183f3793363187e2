package flowexpr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrokit/flowexpr"
	"github.com/hydrokit/flowexpr/pkg/evaluator"
	"github.com/hydrokit/flowexpr/pkg/types"
)

func TestEvalOneShot(t *testing.T) {
	got, err := flowexpr.Eval("2 + 3 * 4", nil)
	require.NoError(t, err)
	assert.Equal(t, 14.0, got)

	got, err = flowexpr.Eval("max(rain - evap, 0)", map[string]float64{
		"rain": 4.2,
		"evap": 1.1,
	})
	require.NoError(t, err)
	assert.InDelta(t, 3.1, got, 1e-9)
}

func TestEvalOneShotWithOptions(t *testing.T) {
	got, err := flowexpr.Eval("snow + 1", nil,
		evaluator.WithMissingVariablePolicy(evaluator.MissingVariableSubstitute))
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	_, err = flowexpr.Eval("1 / 0", nil,
		evaluator.WithDivisionByZeroPolicy(evaluator.DivisionByZeroFail))
	var terr *types.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, types.ErrDivisionByZero, terr.Code)
}

func TestEvalParseErrorPassthrough(t *testing.T) {
	_, err := flowexpr.Eval("a && b", nil)
	var terr *types.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, types.ErrInvalidOperator, terr.Code)
}

func TestCompileReuse(t *testing.T) {
	expr, err := flowexpr.Compile("if(temp > 0, melt * temp, 0)")
	require.NoError(t, err)
	assert.Equal(t, []string{"melt", "temp"}, expr.Variables())

	ev := flowexpr.NewEvaluator()

	got, err := ev.Eval(expr, map[string]float64{"temp": 2, "melt": 3})
	require.NoError(t, err)
	assert.Equal(t, 6.0, got)

	got, err = ev.Eval(expr, map[string]float64{"temp": -2, "melt": 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestMustCompile(t *testing.T) {
	assert.NotNil(t, flowexpr.MustCompile("a + b"))
	assert.Panics(t, func() {
		flowexpr.MustCompile("a ++")
	})
}

func TestDefaultPolicySurface(t *testing.T) {
	// sqrt of a negative propagates as NaN by default.
	got, err := flowexpr.Eval("sqrt(-1)", nil)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))

	// Division by zero yields a signed infinity by default.
	got, err = flowexpr.Eval("-3 / 0", nil)
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, -1))

	// A missing variable fails by default.
	_, err = flowexpr.Eval("missing + 1", nil)
	var terr *types.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, types.ErrVariableNotFound, terr.Code)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, flowexpr.Version())
}
