// Package mathmod provides the math standard library module.
package mathmod

import (
	"math"
	"strconv"

	"github.com/hazel-lang/hazel"
)

func number(name string, v hazel.Value) (float64, *hazel.Failure) {
	switch v := v.(type) {
	case hazel.Int:
		return float64(v), nil
	case hazel.Float:
		return float64(v), nil
	}
	return 0, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires number, got %s", name, v.TypeName())
}

func integer(name string, v hazel.Value) (int64, *hazel.Failure) {
	if n, ok := v.(hazel.Int); ok {
		return int64(n), nil
	}
	return 0, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires int, got %s", name, v.TypeName())
}

// unary registers a one-argument float function.
func unary(m *hazel.Module, name, doc string, fn func(float64) float64) {
	m.RegisterFunc(name, 1, doc, func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		x, fail := number(name, args[0])
		if fail != nil {
			return nil, fail
		}
		return hazel.Float(fn(x)), nil
	})
}

// Module builds the math module.
func Module() *hazel.Module {
	m := hazel.NewModule("math")

	m.RegisterFunc("sqrt", 1, "square root", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		x, fail := number("sqrt", args[0])
		if fail != nil {
			return nil, fail
		}
		if x < 0 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "sqrt() requires non-negative number")
		}
		return hazel.Float(math.Sqrt(x)), nil
	})
	m.RegisterFunc("pow", 2, "power", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		base, fail := number("pow", args[0])
		if fail != nil {
			return nil, fail
		}
		exp, fail := number("pow", args[1])
		if fail != nil {
			return nil, fail
		}
		return hazel.Float(math.Pow(base, exp)), nil
	})
	unary(m, "sin", "sine in radians", math.Sin)
	unary(m, "cos", "cosine in radians", math.Cos)
	unary(m, "tan", "tangent in radians", math.Tan)
	m.RegisterFunc("asin", 1, "arc sine", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		x, fail := number("asin", args[0])
		if fail != nil {
			return nil, fail
		}
		if x < -1 || x > 1 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "asin() requires value between -1 and 1")
		}
		return hazel.Float(math.Asin(x)), nil
	})
	m.RegisterFunc("acos", 1, "arc cosine", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		x, fail := number("acos", args[0])
		if fail != nil {
			return nil, fail
		}
		if x < -1 || x > 1 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "acos() requires value between -1 and 1")
		}
		return hazel.Float(math.Acos(x)), nil
	})
	unary(m, "atan", "arc tangent", math.Atan)
	m.RegisterFunc("atan2", 2, "arc tangent of y/x", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		y, fail := number("atan2", args[0])
		if fail != nil {
			return nil, fail
		}
		x, fail := number("atan2", args[1])
		if fail != nil {
			return nil, fail
		}
		return hazel.Float(math.Atan2(y, x)), nil
	})
	m.RegisterFunc("log", -1, "logarithm with optional base", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 1 || len(args) > 2 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "log() expects 1 or 2 arguments, got %d", len(args))
		}
		x, fail := number("log", args[0])
		if fail != nil {
			return nil, fail
		}
		if x <= 0 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "log() requires positive number")
		}
		if len(args) == 1 {
			return hazel.Float(math.Log(x)), nil
		}
		base, fail := number("log", args[1])
		if fail != nil {
			return nil, fail
		}
		if base <= 0 || base == 1 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "log() requires positive base not equal to 1")
		}
		return hazel.Float(math.Log(x) / math.Log(base)), nil
	})
	m.RegisterFunc("log10", 1, "base 10 logarithm", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		x, fail := number("log10", args[0])
		if fail != nil {
			return nil, fail
		}
		if x <= 0 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "log10() requires positive number")
		}
		return hazel.Float(math.Log10(x)), nil
	})
	m.RegisterFunc("log2", 1, "base 2 logarithm", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		x, fail := number("log2", args[0])
		if fail != nil {
			return nil, fail
		}
		if x <= 0 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "log2() requires positive number")
		}
		return hazel.Float(math.Log2(x)), nil
	})
	unary(m, "exp", "e raised to x", math.Exp)
	m.RegisterFunc("floor", 1, "round down", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		x, fail := number("floor", args[0])
		if fail != nil {
			return nil, fail
		}
		return hazel.Int(math.Floor(x)), nil
	})
	m.RegisterFunc("ceil", 1, "round up", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		x, fail := number("ceil", args[0])
		if fail != nil {
			return nil, fail
		}
		return hazel.Int(math.Ceil(x)), nil
	})
	m.RegisterFunc("round", -1, "round to nearest with optional digits", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 1 || len(args) > 2 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "round() expects 1 or 2 arguments, got %d", len(args))
		}
		x, fail := number("round", args[0])
		if fail != nil {
			return nil, fail
		}
		if len(args) == 1 {
			return hazel.Int(math.RoundToEven(x)), nil
		}
		digits, fail := integer("round", args[1])
		if fail != nil {
			return nil, fail
		}
		return hazel.Float(roundDigits(x, int(digits))), nil
	})
	m.RegisterFunc("trunc", 1, "truncate toward zero", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		x, fail := number("trunc", args[0])
		if fail != nil {
			return nil, fail
		}
		return hazel.Int(math.Trunc(x)), nil
	})
	m.RegisterFunc("factorial", 1, "factorial", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		n, fail := integer("factorial", args[0])
		if fail != nil {
			return nil, fail
		}
		if n < 0 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "factorial() requires non-negative integer")
		}
		if n > 20 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "factorial() argument too large: %d", n)
		}
		r := int64(1)
		for i := int64(2); i <= n; i++ {
			r *= i
		}
		return hazel.Int(r), nil
	})
	m.RegisterFunc("gcd", 2, "greatest common divisor", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		a, fail := integer("gcd", args[0])
		if fail != nil {
			return nil, fail
		}
		b, fail := integer("gcd", args[1])
		if fail != nil {
			return nil, fail
		}
		if a < 0 {
			a = -a
		}
		if b < 0 {
			b = -b
		}
		for b != 0 {
			a, b = b, a%b
		}
		return hazel.Int(a), nil
	})
	unary(m, "degrees", "radians to degrees", func(x float64) float64 { return x * 180 / math.Pi })
	unary(m, "radians", "degrees to radians", func(x float64) float64 { return x * math.Pi / 180 })
	m.RegisterFunc("is_nan", 1, "reports NaN", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		x, fail := number("is_nan", args[0])
		if fail != nil {
			return nil, fail
		}
		return hazel.Bool(math.IsNaN(x)), nil
	})
	m.RegisterFunc("is_inf", 1, "reports infinity", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		x, fail := number("is_inf", args[0])
		if fail != nil {
			return nil, fail
		}
		return hazel.Bool(math.IsInf(x, 0)), nil
	})

	m.RegisterConst("PI", hazel.Float(math.Pi), "pi")
	m.RegisterConst("E", hazel.Float(math.E), "Euler's number")
	m.RegisterConst("TAU", hazel.Float(2*math.Pi), "2 pi")
	m.RegisterConst("INF", hazel.Float(math.Inf(1)), "positive infinity")
	m.RegisterConst("NAN", hazel.Float(math.NaN()), "not a number")
	return m
}

// roundDigits rounds half to even against the value's true decimal
// expansion, not a scaled binary approximation: 2.345 at two digits
// goes down because it is really 2.34499..., while exact ties such as
// 0.125 break to even.
func roundDigits(x float64, digits int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	if digits >= 0 {
		out, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', digits, 64), 64)
		if err != nil {
			return x
		}
		return out
	}
	scale := math.Pow(10, float64(-digits))
	return math.RoundToEven(x/scale) * scale
}
