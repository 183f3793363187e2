package functions

import (
	"math"
	"testing"
)

func call(t *testing.T, name string, args ...float64) float64 {
	t.Helper()
	spec, ok := Default().Lookup(name)
	if !ok {
		t.Fatalf("function %q not registered", name)
	}
	if len(args) < spec.MinArgs || (spec.MaxArgs != Variadic && len(args) > spec.MaxArgs) {
		t.Fatalf("function %q called with %d args outside [%d, %d]", name, len(args), spec.MinArgs, spec.MaxArgs)
	}
	return spec.Fn(args)
}

func TestBuiltinValues(t *testing.T) {
	tests := []struct {
		name string
		args []float64
		want float64
	}{
		{"abs", []float64{-3.5}, 3.5},
		{"sqrt", []float64{16}, 4},
		{"exp", []float64{0}, 1},
		{"ln", []float64{math.E}, 1},
		{"log", []float64{math.E}, 1},
		{"log10", []float64{1000}, 3},
		{"sin", []float64{0}, 0},
		{"cos", []float64{0}, 1},
		{"atan2", []float64{1, 1}, math.Pi / 4},
		{"pow", []float64{2, 10}, 1024},
		{"ceil", []float64{1.2}, 2},
		{"floor", []float64{1.8}, 1},
		{"round", []float64{2.5}, 3},
		{"round", []float64{-2.5}, -3},
		{"sign", []float64{-7}, -1},
		{"sign", []float64{7}, 1},
		{"sign", []float64{0}, 0},
		{"max", []float64{2, 7, 5}, 7},
		{"min", []float64{2, 7, 5}, 2},
		{"sum", []float64{1, 2, 3, 4}, 10},
		{"mean", []float64{2, 4, 6}, 4},
		{"if", []float64{1, 10, 20}, 10},
		{"if", []float64{0, 10, 20}, 20},
		{"if", []float64{-0.5, 10, 20}, 10},
	}
	for _, tc := range tests {
		got := call(t, tc.name, tc.args...)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("%s(%v) = %v, want %v", tc.name, tc.args, got, tc.want)
		}
	}
}

func TestBuiltinDomainViolationsYieldNaN(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []float64
	}{
		{"sqrt", []float64{-1}},
		{"ln", []float64{-1}},
		{"asin", []float64{2}},
		{"acos", []float64{-2}},
	} {
		if got := call(t, tc.name, tc.args...); !math.IsNaN(got) {
			t.Errorf("%s(%v) = %v, want NaN", tc.name, tc.args, got)
		}
	}

	// ln(0) is a pole, not a NaN.
	if got := call(t, "ln", 0); !math.IsInf(got, -1) {
		t.Errorf("ln(0) = %v, want -Inf", got)
	}
}

func TestBuiltinNaNPropagation(t *testing.T) {
	nan := math.NaN()
	for _, tc := range []struct {
		name string
		args []float64
	}{
		{"max", []float64{1, nan}},
		{"min", []float64{nan, 2}},
		{"sum", []float64{1, nan}},
		{"mean", []float64{nan, 2}},
		{"abs", []float64{nan}},
		{"sign", []float64{nan}},
	} {
		if got := call(t, tc.name, tc.args...); !math.IsNaN(got) {
			t.Errorf("%s(%v) = %v, want NaN", tc.name, tc.args, got)
		}
	}

	// NaN condition is nonzero and selects the first branch.
	if got := call(t, "if", nan, 10, 20); got != 10 {
		t.Errorf("if(NaN, 10, 20) = %v, want 10", got)
	}
}

func TestRegistryArities(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
	}{
		{"sqrt", 1, 1},
		{"pow", 2, 2},
		{"atan2", 2, 2},
		{"max", 2, Variadic},
		{"min", 2, Variadic},
		{"sum", 2, Variadic},
		{"mean", 2, Variadic},
		{"if", 3, 3},
	}
	for _, tc := range tests {
		spec, ok := Default().Lookup(tc.name)
		if !ok {
			t.Fatalf("function %q not registered", tc.name)
		}
		if spec.MinArgs != tc.min || spec.MaxArgs != tc.max {
			t.Errorf("%s arity = [%d, %d], want [%d, %d]", tc.name, spec.MinArgs, spec.MaxArgs, tc.min, tc.max)
		}
	}
}

func TestNearest(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"maximum", "max"},   // alias
		{"minimum", "min"},   // alias
		{"average", "mean"},  // alias
		{"power", "pow"},     // alias
		{"square_root", "sqrt"},
		{"sqtr", "sqrt"},     // transposition
		{"Sin", "sin"},       // case slip
		{"floot", "floor"},   // one edit
		{"frobnicate", ""},   // nothing close
		{"zzzzzz", ""},
	}
	reg := Default()
	for _, tc := range tests {
		if got := reg.Nearest(tc.input); got != tc.want {
			t.Errorf("Nearest(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNamesSorted(t *testing.T) {
	names := Default().Names()
	if len(names) == 0 {
		t.Fatal("no builtins registered")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted or not unique at %d: %v", i, names)
		}
	}
	names[0] = "mutated"
	if Default().Names()[0] == "mutated" {
		t.Fatal("Names() exposes internal slice")
	}
}
