package hazel

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// builtinFunc is the signature of interpreter builtins. Arguments are
// already evaluated.
type builtinFunc func(ev *Evaluator, args []Value, at pos) (Value, Stop)

var builtins map[string]builtinFunc

func init() {
	builtins = map[string]builtinFunc{
		"echo":  builtinEcho,
		"len":   builtinLen,
		"int":   builtinInt,
		"float": builtinFloat,
		"str":   builtinStr,
		"type":  builtinType,
		"abs":   builtinAbs,
		"max":   builtinMax,
		"min":   builtinMin,
		"range": builtinRange,
		"input": builtinInput,
	}
}

func builtinEcho(ev *Evaluator, args []Value, at pos) (Value, Stop) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = AsString(a)
	}
	fmt.Fprintln(ev.echo, strings.Join(parts, " "))
	return Nil, NoStop
}

func builtinLen(ev *Evaluator, args []Value, at pos) (Value, Stop) {
	if len(args) != 1 {
		return ev.raise(ValueFailure, at, "len() expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case Str:
		return Int(utf8.RuneCountInString(string(v))), NoStop
	case *Array:
		return Int(len(v.Elems)), NoStop
	case *Dict:
		return Int(v.Len()), NoStop
	}
	return ev.raise(TypeFailure, at, "len() requires list, dict or string, got %s", args[0].TypeName())
}

func builtinInt(ev *Evaluator, args []Value, at pos) (Value, Stop) {
	if len(args) != 1 {
		return ev.raise(ValueFailure, at, "int() expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case Int:
		return v, NoStop
	case Float:
		return Int(math.Trunc(float64(v))), NoStop
	case Bool:
		if v {
			return Int(1), NoStop
		}
		return Int(0), NoStop
	case Str:
		s := strings.TrimSpace(string(v))
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(n), NoStop
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Int(math.Trunc(f)), NoStop
		}
	}
	return ev.raise(TypeFailure, at, "Cannot convert %s (value: %s) to int", args[0].TypeName(), AsString(args[0]))
}

func builtinFloat(ev *Evaluator, args []Value, at pos) (Value, Stop) {
	if len(args) != 1 {
		return ev.raise(ValueFailure, at, "float() expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case Int:
		return Float(v), NoStop
	case Float:
		return v, NoStop
	case Bool:
		if v {
			return Float(1), NoStop
		}
		return Float(0), NoStop
	case Str:
		if f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64); err == nil {
			return Float(f), NoStop
		}
	}
	return ev.raise(TypeFailure, at, "Cannot convert %s (value: %s) to float", args[0].TypeName(), AsString(args[0]))
}

func builtinStr(ev *Evaluator, args []Value, at pos) (Value, Stop) {
	if len(args) != 1 {
		return ev.raise(ValueFailure, at, "str() expects 1 argument, got %d", len(args))
	}
	return Str(AsString(args[0])), NoStop
}

func builtinType(ev *Evaluator, args []Value, at pos) (Value, Stop) {
	if len(args) != 1 {
		return ev.raise(ValueFailure, at, "type() expects 1 argument, got %d", len(args))
	}
	if obj, ok := args[0].(*Object); ok {
		return Str(obj.Class.Name), NoStop
	}
	return Str(args[0].TypeName()), NoStop
}

func builtinAbs(ev *Evaluator, args []Value, at pos) (Value, Stop) {
	if len(args) != 1 {
		return ev.raise(ValueFailure, at, "abs() expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case Int:
		if v < 0 {
			return -v, NoStop
		}
		return v, NoStop
	case Float:
		return Float(math.Abs(float64(v))), NoStop
	}
	return ev.raise(TypeFailure, at, "abs() requires numeric argument, got %s", args[0].TypeName())
}

func builtinMax(ev *Evaluator, args []Value, at pos) (Value, Stop) {
	return extremum(ev, "max", args, at, func(a, b float64) bool { return a > b }, func(a, b Str) bool { return a > b })
}

func builtinMin(ev *Evaluator, args []Value, at pos) (Value, Stop) {
	return extremum(ev, "min", args, at, func(a, b float64) bool { return a < b }, func(a, b Str) bool { return a < b })
}

// extremum picks the winner of an argument list. A single array
// argument is compared elementwise; all values must be numeric or all
// strings.
func extremum(ev *Evaluator, name string, args []Value, at pos, numWins func(a, b float64) bool, strWins func(a, b Str) bool) (Value, Stop) {
	if len(args) == 1 {
		if a, ok := args[0].(*Array); ok {
			args = a.Elems
		}
	}
	if len(args) == 0 {
		return ev.raise(ValueFailure, at, "%s() expects at least 1 argument", name)
	}
	if _, _, ok := numeric(args[0]); ok {
		best := args[0]
		bestF, _, _ := numeric(best)
		for _, a := range args[1:] {
			f, _, ok := numeric(a)
			if !ok {
				return ev.raise(TypeFailure, at, "%s() requires all-numeric or all-string arguments", name)
			}
			if numWins(f, bestF) {
				best, bestF = a, f
			}
		}
		return best, NoStop
	}
	if best, ok := args[0].(Str); ok {
		for _, a := range args[1:] {
			s, ok := a.(Str)
			if !ok {
				return ev.raise(TypeFailure, at, "%s() requires all-numeric or all-string arguments", name)
			}
			if strWins(s, best) {
				best = s
			}
		}
		return best, NoStop
	}
	return ev.raise(TypeFailure, at, "%s() requires numeric or string arguments, got %s", name, args[0].TypeName())
}

func builtinRange(ev *Evaluator, args []Value, at pos) (Value, Stop) {
	if len(args) < 1 || len(args) > 3 {
		return ev.raise(ValueFailure, at, "range() expects 1 to 3 arguments, got %d", len(args))
	}
	ints := make([]int64, len(args))
	for i, a := range args {
		n, ok := a.(Int)
		if !ok {
			return ev.raise(TypeFailure, at, "range() requires integer arguments, got %s", a.TypeName())
		}
		ints[i] = int64(n)
	}
	var start, stop, step int64 = 0, 0, 1
	switch len(ints) {
	case 1:
		stop = ints[0]
	case 2:
		start, stop = ints[0], ints[1]
	case 3:
		start, stop, step = ints[0], ints[1], ints[2]
	}
	if step == 0 {
		return ev.raise(ValueFailure, at, "range() step must not be zero")
	}
	var elems []Value
	if step > 0 {
		for i := start; i < stop; i += step {
			elems = append(elems, Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			elems = append(elems, Int(i))
		}
	}
	return &Array{Elems: elems}, NoStop
}

func builtinInput(ev *Evaluator, args []Value, at pos) (Value, Stop) {
	if len(args) > 1 {
		return ev.raise(ValueFailure, at, "input() expects at most 1 argument, got %d", len(args))
	}
	if len(args) == 1 {
		prompt, ok := args[0].(Str)
		if !ok {
			return ev.raise(TypeFailure, at, "input() prompt must be string, got %s", args[0].TypeName())
		}
		fmt.Fprint(ev.echo, string(prompt))
	}
	line, err := ev.stdin.ReadString('\n')
	if err != nil && err != io.EOF {
		return ev.raise(IOFailure, at, "Failed to read input: %s", err)
	}
	if line == "" && err == io.EOF {
		return ev.raise(IOFailure, at, "End of file reached while waiting for input")
	}
	line = strings.TrimRight(line, "\r\n")
	return Str(line), NoStop
}
