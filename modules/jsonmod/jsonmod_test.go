package jsonmod

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hazel-lang/hazel"
)

func TestParse(t *testing.T) {
	m := Module()
	v, fail := m.Call("parse", []hazel.Value{hazel.Str(`[1, 2.5, "x", true, null]`)})
	if fail != nil {
		t.Fatalf("parse failed: %v", fail)
	}
	a, ok := v.(*hazel.Array)
	if !ok || len(a.Elems) != 5 {
		t.Fatalf("parse = %v, want 5-element array", v)
	}
	want := []hazel.Value{hazel.Int(1), hazel.Float(2.5), hazel.Str("x"), hazel.Bool(true), hazel.Nil}
	for i, w := range want {
		if !hazel.Equal(a.Elems[i], w) {
			t.Errorf("element %d = %v (%T), want %v", i, a.Elems[i], a.Elems[i], w)
		}
	}
}

func TestParseObject(t *testing.T) {
	m := Module()
	v, fail := m.Call("parse", []hazel.Value{hazel.Str(`{"n": 3, "nested": {"ok": true}}`)})
	if fail != nil {
		t.Fatalf("parse failed: %v", fail)
	}
	d, ok := v.(*hazel.Dict)
	if !ok {
		t.Fatalf("parse = %T, want dict", v)
	}
	n, ok := d.Get("n")
	if !ok || !hazel.Equal(n, hazel.Int(3)) {
		t.Errorf("n = %v, want 3", n)
	}
	nested, ok := d.Get("nested")
	if !ok {
		t.Fatal("nested key missing")
	}
	inner, ok := nested.(*hazel.Dict)
	if !ok {
		t.Fatalf("nested = %T, want dict", nested)
	}
	if v, _ := inner.Get("ok"); !hazel.Equal(v, hazel.Bool(true)) {
		t.Errorf("nested.ok = %v, want true", v)
	}
}

// TestParseKeyOrder checks that object keys keep their source order.
func TestParseKeyOrder(t *testing.T) {
	m := Module()
	v, fail := m.Call("parse", []hazel.Value{hazel.Str(`{"z": 1, "a": 2, "m": 3}`)})
	if fail != nil {
		t.Fatalf("parse failed: %v", fail)
	}
	d, ok := v.(*hazel.Dict)
	if !ok {
		t.Fatalf("parse = %T, want dict", v)
	}
	keys := d.Keys()
	if len(keys) != 3 || keys[0] != "z" || keys[1] != "a" || keys[2] != "m" {
		t.Errorf("keys = %v, want [z a m]", keys)
	}
}

func TestParseInvalid(t *testing.T) {
	m := Module()
	if _, fail := m.Call("parse", []hazel.Value{hazel.Str("{nope")}); fail == nil || fail.Kind != hazel.ValueFailure {
		t.Errorf("parse of invalid input = %v, want value failure", fail)
	}
	if _, fail := m.Call("parse", []hazel.Value{hazel.Int(1)}); fail == nil || fail.Kind != hazel.TypeFailure {
		t.Errorf("parse of non-string = %v, want type failure", fail)
	}
}

func TestStringify(t *testing.T) {
	m := Module()
	arr := hazel.NewArray(hazel.Int(1), hazel.Str("a"), hazel.Bool(false), hazel.Nil)
	v, fail := m.Call("stringify", []hazel.Value{arr})
	if fail != nil {
		t.Fatalf("stringify failed: %v", fail)
	}
	if !hazel.Equal(v, hazel.Str(`[1,"a",false,null]`)) {
		t.Errorf("stringify = %v", v)
	}
	v, fail = m.Call("stringify", []hazel.Value{hazel.NewArray(hazel.Int(1)), hazel.Int(2)})
	if fail != nil {
		t.Fatalf("indented stringify failed: %v", fail)
	}
	if !hazel.Equal(v, hazel.Str("[\n  1\n]")) {
		t.Errorf("indented stringify = %q", v)
	}
	if _, fail := m.Call("stringify", []hazel.Value{arr, hazel.Str("x")}); fail == nil || fail.Kind != hazel.TypeFailure {
		t.Errorf("stringify with bad indent = %v, want type failure", fail)
	}
}

func TestIsValid(t *testing.T) {
	m := Module()
	cases := map[string]struct {
		in   string
		want bool
	}{
		"object":  {`{"a": 1}`, true},
		"scalar":  {"42", true},
		"invalid": {"{", false},
		"empty":   {"", false},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			v, fail := m.Call("is_valid", []hazel.Value{hazel.Str(c.in)})
			if fail != nil {
				t.Fatalf("is_valid failed: %v", fail)
			}
			if !hazel.Equal(v, hazel.Bool(c.want)) {
				t.Errorf("is_valid(%q) = %v, want %v", c.in, v, c.want)
			}
		})
	}
}

func TestReadWrite(t *testing.T) {
	m := Module()
	path := filepath.Join(t.TempDir(), "out", "data.json")
	val := hazel.NewArray(hazel.Int(1), hazel.Int(2))
	if _, fail := m.Call("write", []hazel.Value{hazel.Str(path), val}); fail != nil {
		t.Fatalf("write failed: %v", fail)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "[1,2]" {
		t.Errorf("written file = %q, want [1,2]", raw)
	}
	v, fail := m.Call("read", []hazel.Value{hazel.Str(path)})
	if fail != nil {
		t.Fatalf("read failed: %v", fail)
	}
	a, ok := v.(*hazel.Array)
	if !ok || len(a.Elems) != 2 || !hazel.Equal(a.Elems[0], hazel.Int(1)) {
		t.Errorf("read = %v, want [1, 2]", v)
	}
}

func TestReadMissing(t *testing.T) {
	m := Module()
	path := filepath.Join(t.TempDir(), "absent.json")
	if _, fail := m.Call("read", []hazel.Value{hazel.Str(path)}); fail == nil || fail.Kind != hazel.IOFailure {
		t.Errorf("read of missing file = %v, want io failure", fail)
	}
}
