package hazel

import (
	"strconv"
	"strings"
)

// Value is a hazel runtime value. The implementations form a closed
// union: Int, Float, Str, Bool, Null, *Array, *Dict, *Object, *Class,
// *Function, *Closure, *Module and *Failure.
type Value interface {
	// TypeName returns the language-level name of the value's type.
	TypeName() string
}

// Int is an integer value.
type Int int64

// Float is a floating point value.
type Float float64

// Str is a string value.
type Str string

// Bool is a boolean value.
type Bool bool

// Null is the null value.
type Null struct{}

// Nil is the canonical null.
var Nil = Null{}

// Array is a mutable sequence of values.
type Array struct {
	Elems []Value
}

func (Int) TypeName() string      { return "int" }
func (Float) TypeName() string    { return "float" }
func (Str) TypeName() string      { return "string" }
func (Bool) TypeName() string     { return "boolean" }
func (Null) TypeName() string     { return "null" }
func (*Array) TypeName() string   { return "array" }
func (*Failure) TypeName() string { return "error" }

// NewArray creates an array value holding the given elements.
func NewArray(elems ...Value) *Array {
	return &Array{Elems: elems}
}

// AsBool reports the truthiness of a value. Null, false, zero of either
// numeric type, the empty string and empty containers are false;
// everything else is true.
func AsBool(v Value) bool {
	switch v := v.(type) {
	case Null:
		return false
	case Bool:
		return bool(v)
	case Int:
		return v != 0
	case Float:
		return v != 0
	case Str:
		return v != ""
	case *Array:
		return len(v.Elems) > 0
	case *Dict:
		return v.Len() > 0
	case nil:
		return false
	}
	return true
}

// AsString renders a value for display. Strings render bare at top
// level but quoted inside containers.
func AsString(v Value) string {
	return render(v, false)
}

func render(v Value, quoted bool) string {
	switch v := v.(type) {
	case nil, Null:
		return "null"
	case Bool:
		if v {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(int64(v), 10)
	case Float:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case Str:
		if quoted {
			return strconv.Quote(string(v))
		}
		return string(v)
	case *Array:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(render(e, true))
		}
		b.WriteByte(']')
		return b.String()
	case *Dict:
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			e, _ := v.Get(k)
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			b.WriteString(render(e, true))
		}
		b.WriteByte('}')
		return b.String()
	case *Object:
		return "<" + v.Class.Name + " object>"
	case *Class:
		return "<class " + v.Name + ">"
	case *Function:
		return "<function>"
	case *Closure:
		return "<function>"
	case *Module:
		return "<module " + v.Name + ">"
	case *Failure:
		return v.Message
	}
	return "<unknown>"
}

// numeric extracts a value as float64 along with whether it is numeric
// and whether it is an Int.
func numeric(v Value) (f float64, isInt bool, ok bool) {
	switch v := v.(type) {
	case Int:
		return float64(v), true, true
	case Float:
		return float64(v), false, true
	}
	return 0, false, false
}

// Equal reports language-level equality of two values: structural for
// containers, numeric across Int and Float, identity for everything
// else.
func Equal(a, b Value) bool { return deepEqual(a, b) }

// deepEqual implements the language == operator: structural equality
// with ints and floats comparing numerically and no other coercion.
func deepEqual(a, b Value) bool {
	if af, _, aok := numeric(a); aok {
		bf, _, bok := numeric(b)
		return bok && af == bf
	}
	switch a := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		b, ok := b.(Bool)
		return ok && a == b
	case Str:
		b, ok := b.(Str)
		return ok && a == b
	case *Array:
		b, ok := b.(*Array)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !deepEqual(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case *Dict:
		b, ok := b.(*Dict)
		if !ok || a.Len() != b.Len() {
			return false
		}
		for _, k := range a.Keys() {
			av, _ := a.Get(k)
			bv, ok := b.Get(k)
			if !ok || !deepEqual(av, bv) {
				return false
			}
		}
		return true
	}
	// Objects, classes, functions and modules compare by identity.
	return a == b
}
