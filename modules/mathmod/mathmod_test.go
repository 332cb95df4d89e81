package mathmod

import (
	"math"
	"testing"

	"github.com/hazel-lang/hazel"
)

func call(t *testing.T, m *hazel.Module, name string, args ...hazel.Value) hazel.Value {
	t.Helper()
	v, fail := m.Call(name, args)
	if fail != nil {
		t.Fatalf("%s(%v) failed: %v", name, args, fail)
	}
	return v
}

func TestMathFunctions(t *testing.T) {
	m := Module()
	cases := map[string]struct {
		name string
		args []hazel.Value
		want hazel.Value
	}{
		"sqrt":        {"sqrt", []hazel.Value{hazel.Int(16)}, hazel.Float(4)},
		"pow":         {"pow", []hazel.Value{hazel.Int(2), hazel.Int(10)}, hazel.Float(1024)},
		"sin":         {"sin", []hazel.Value{hazel.Int(0)}, hazel.Float(0)},
		"log":         {"log", []hazel.Value{hazel.Float(math.E)}, hazel.Float(1)},
		"logBase":     {"log", []hazel.Value{hazel.Int(8), hazel.Int(2)}, hazel.Float(3)},
		"log10":       {"log10", []hazel.Value{hazel.Int(1000)}, hazel.Float(3)},
		"floor":       {"floor", []hazel.Value{hazel.Float(2.7)}, hazel.Int(2)},
		"floorNeg":    {"floor", []hazel.Value{hazel.Float(-2.1)}, hazel.Int(-3)},
		"ceil":        {"ceil", []hazel.Value{hazel.Float(2.1)}, hazel.Int(3)},
		"round":       {"round", []hazel.Value{hazel.Float(2.4)}, hazel.Int(2)},
		"roundEven":   {"round", []hazel.Value{hazel.Float(2.5)}, hazel.Int(2)},
		"roundDigits": {"round", []hazel.Value{hazel.Float(2.345), hazel.Int(2)}, hazel.Float(2.34)},
		"roundDigitsRepr": {"round", []hazel.Value{hazel.Float(2.675), hazel.Int(2)}, hazel.Float(2.67)},
		"roundDigitsTie":  {"round", []hazel.Value{hazel.Float(0.125), hazel.Int(2)}, hazel.Float(0.12)},
		"roundDigitsUp":   {"round", []hazel.Value{hazel.Float(1.005), hazel.Int(1)}, hazel.Float(1)},
		"roundNegDigits":  {"round", []hazel.Value{hazel.Int(1250), hazel.Int(-2)}, hazel.Float(1200)},
		"trunc":       {"trunc", []hazel.Value{hazel.Float(-2.9)}, hazel.Int(-2)},
		"factorial":   {"factorial", []hazel.Value{hazel.Int(5)}, hazel.Int(120)},
		"gcd":         {"gcd", []hazel.Value{hazel.Int(12), hazel.Int(18)}, hazel.Int(6)},
		"gcdNeg":      {"gcd", []hazel.Value{hazel.Int(-4), hazel.Int(6)}, hazel.Int(2)},
		"degrees":     {"degrees", []hazel.Value{hazel.Float(math.Pi)}, hazel.Float(180)},
		"radians":     {"radians", []hazel.Value{hazel.Int(180)}, hazel.Float(math.Pi)},
		"isNanNo":     {"is_nan", []hazel.Value{hazel.Int(1)}, hazel.Bool(false)},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			got := call(t, m, c.name, c.args...)
			if !hazel.Equal(got, c.want) {
				t.Errorf("%s(%v) = %v, want %v", c.name, c.args, got, c.want)
			}
		})
	}
}

func TestMathFailures(t *testing.T) {
	m := Module()
	cases := map[string]struct {
		name string
		args []hazel.Value
		kind hazel.FailKind
	}{
		"logNonPositive":    {"log", []hazel.Value{hazel.Int(0)}, hazel.ValueFailure},
		"logBadBase":        {"log", []hazel.Value{hazel.Int(8), hazel.Int(1)}, hazel.ValueFailure},
		"factorialNegative": {"factorial", []hazel.Value{hazel.Int(-1)}, hazel.ValueFailure},
		"factorialTooBig":   {"factorial", []hazel.Value{hazel.Int(21)}, hazel.ValueFailure},
		"sqrtString":        {"sqrt", []hazel.Value{hazel.Str("x")}, hazel.TypeFailure},
		"badArity":          {"sqrt", []hazel.Value{hazel.Int(1), hazel.Int(2)}, hazel.ValueFailure},
		"unknown":           {"cbrt", []hazel.Value{hazel.Int(8)}, hazel.NameFailure},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, fail := m.Call(c.name, c.args)
			if fail == nil || fail.Kind != c.kind {
				t.Errorf("%s(%v) failure = %v, want kind %v", c.name, c.args, fail, c.kind)
			}
		})
	}
}

func TestMathConstants(t *testing.T) {
	m := Module()
	pi, fail := m.Constant("PI")
	if fail != nil || !hazel.Equal(pi, hazel.Float(math.Pi)) {
		t.Errorf("PI = %v, %v", pi, fail)
	}
	if !m.HasConstant("E") || !m.HasConstant("TAU") || !m.HasConstant("INF") {
		t.Error("expected constants missing")
	}
	if v := call(t, m, "is_nan", mustConstant(t, m, "NAN")); !hazel.Equal(v, hazel.Bool(true)) {
		t.Error("NAN constant is not NaN")
	}
	if v := call(t, m, "is_inf", mustConstant(t, m, "INF")); !hazel.Equal(v, hazel.Bool(true)) {
		t.Error("INF constant is not infinite")
	}
}

func mustConstant(t *testing.T, m *hazel.Module, name string) hazel.Value {
	t.Helper()
	v, fail := m.Constant(name)
	if fail != nil {
		t.Fatalf("Constant(%s) failed: %v", name, fail)
	}
	return v
}
