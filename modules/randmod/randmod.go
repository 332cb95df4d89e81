// Package randmod provides the random standard library module. The
// generator is module local so seeding scripts get reproducible runs.
package randmod

import (
	crand "crypto/rand"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/hazel-lang/hazel"
)

// Module builds the random module.
func Module() *hazel.Module {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	m := hazel.NewModule("random")

	m.RegisterFunc("random", 0, "random float in [0, 1)", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		return hazel.Float(rng.Float64()), nil
	})
	m.RegisterFunc("random_int", 2, "random integer in [min, max]", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		min, ok1 := args[0].(hazel.Int)
		max, ok2 := args[1].(hazel.Int)
		if !ok1 || !ok2 {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "random_int() requires int bounds")
		}
		if min > max {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "random_int() min (%d) must be <= max (%d)", min, max)
		}
		return min + hazel.Int(rng.Int63n(int64(max-min)+1)), nil
	})
	m.RegisterFunc("random_float", 2, "random float in [min, max)", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		min, fail := number("random_float", args[0])
		if fail != nil {
			return nil, fail
		}
		max, fail := number("random_float", args[1])
		if fail != nil {
			return nil, fail
		}
		if min > max {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "random_float() min (%v) must be <= max (%v)", min, max)
		}
		return hazel.Float(min + rng.Float64()*(max-min)), nil
	})
	m.RegisterFunc("choice", 1, "random element of an array", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		a, ok := args[0].(*hazel.Array)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "choice() requires array, got %s", args[0].TypeName())
		}
		if len(a.Elems) == 0 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "choice() requires non-empty array")
		}
		return a.Elems[rng.Intn(len(a.Elems))], nil
	})
	m.RegisterFunc("shuffle", 1, "shuffle an array in place", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		a, ok := args[0].(*hazel.Array)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "shuffle() requires array, got %s", args[0].TypeName())
		}
		rng.Shuffle(len(a.Elems), func(i, j int) {
			a.Elems[i], a.Elems[j] = a.Elems[j], a.Elems[i]
		})
		return a, nil
	})
	m.RegisterFunc("sample", 2, "sample elements without replacement", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		a, ok := args[0].(*hazel.Array)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "sample() requires array, got %s", args[0].TypeName())
		}
		count, ok := args[1].(hazel.Int)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "sample() requires int count, got %s", args[1].TypeName())
		}
		if count < 0 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "sample() requires non-negative count")
		}
		if int(count) > len(a.Elems) {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "sample() count (%d) cannot be greater than array length (%d)", count, len(a.Elems))
		}
		idx := rng.Perm(len(a.Elems))[:count]
		out := make([]hazel.Value, len(idx))
		for i, j := range idx {
			out[i] = a.Elems[j]
		}
		return hazel.NewArray(out...), nil
	})
	m.RegisterFunc("seed", 1, "seed the generator for reproducible runs", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		var seed int64
		switch v := args[0].(type) {
		case hazel.Int:
			seed = int64(v)
		case hazel.Float:
			seed = int64(v)
		case hazel.Str:
			h := fnv.New64a()
			h.Write([]byte(v))
			seed = int64(h.Sum64())
		default:
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "seed() requires number or string, got %s", v.TypeName())
		}
		rng.Seed(seed)
		return hazel.Bool(true), nil
	})
	m.RegisterFunc("uuid", 0, "random UUID v4", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		var b [16]byte
		if _, err := crand.Read(b[:]); err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "uuid() failed to gather entropy: %s", err)
		}
		b[6] = b[6]&0x0f | 0x40
		b[8] = b[8]&0x3f | 0x80
		return hazel.Str(fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])), nil
	})
	m.RegisterFunc("random_bool", 0, "random boolean", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		return hazel.Bool(rng.Intn(2) == 1), nil
	})
	m.RegisterFunc("random_hex", 1, "random hex string of n bytes", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		n, ok := args[0].(hazel.Int)
		if !ok || n < 0 {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "random_hex() requires non-negative int")
		}
		b := make([]byte, n)
		rng.Read(b)
		return hazel.Str(fmt.Sprintf("%x", b)), nil
	})
	m.RegisterFunc("gauss", -1, "normally distributed random with optional mu and sigma", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		mu, sigma := 0.0, 1.0
		if len(args) > 2 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "gauss() expects at most 2 arguments, got %d", len(args))
		}
		var fail *hazel.Failure
		if len(args) >= 1 {
			if mu, fail = number("gauss", args[0]); fail != nil {
				return nil, fail
			}
		}
		if len(args) == 2 {
			if sigma, fail = number("gauss", args[1]); fail != nil {
				return nil, fail
			}
		}
		return hazel.Float(rng.NormFloat64()*sigma + mu), nil
	})
	return m
}

func number(name string, v hazel.Value) (float64, *hazel.Failure) {
	switch v := v.(type) {
	case hazel.Int:
		return float64(v), nil
	case hazel.Float:
		return float64(v), nil
	}
	return 0, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires number, got %s", name, v.TypeName())
}
