package randmod

import (
	"regexp"
	"sort"
	"testing"

	"github.com/hazel-lang/hazel"
)

func TestSeededReproducibility(t *testing.T) {
	a, b := Module(), Module()
	for _, m := range []*hazel.Module{a, b} {
		if _, fail := m.Call("seed", []hazel.Value{hazel.Int(42)}); fail != nil {
			t.Fatalf("seed failed: %v", fail)
		}
	}
	for i := 0; i < 5; i++ {
		va, fail := a.Call("random", nil)
		if fail != nil {
			t.Fatalf("random failed: %v", fail)
		}
		vb, _ := b.Call("random", nil)
		if !hazel.Equal(va, vb) {
			t.Fatalf("same seed diverged at draw %d: %v vs %v", i, va, vb)
		}
	}
	// String seeds hash to the same stream too.
	for _, m := range []*hazel.Module{a, b} {
		if _, fail := m.Call("seed", []hazel.Value{hazel.Str("pepper")}); fail != nil {
			t.Fatalf("string seed failed: %v", fail)
		}
	}
	va, _ := a.Call("random_int", []hazel.Value{hazel.Int(0), hazel.Int(1000)})
	vb, _ := b.Call("random_int", []hazel.Value{hazel.Int(0), hazel.Int(1000)})
	if !hazel.Equal(va, vb) {
		t.Errorf("string-seeded draws diverged: %v vs %v", va, vb)
	}
}

func TestRanges(t *testing.T) {
	m := Module()
	for i := 0; i < 100; i++ {
		v, fail := m.Call("random", nil)
		if fail != nil {
			t.Fatalf("random failed: %v", fail)
		}
		f, ok := v.(hazel.Float)
		if !ok || f < 0 || f >= 1 {
			t.Fatalf("random = %v, want float in [0, 1)", v)
		}
		v, fail = m.Call("random_int", []hazel.Value{hazel.Int(-3), hazel.Int(3)})
		if fail != nil {
			t.Fatalf("random_int failed: %v", fail)
		}
		n, ok := v.(hazel.Int)
		if !ok || n < -3 || n > 3 {
			t.Fatalf("random_int = %v, want int in [-3, 3]", v)
		}
	}
	v, fail := m.Call("random_int", []hazel.Value{hazel.Int(7), hazel.Int(7)})
	if fail != nil || !hazel.Equal(v, hazel.Int(7)) {
		t.Errorf("degenerate random_int = %v, %v, want 7", v, fail)
	}
	if _, fail := m.Call("random_int", []hazel.Value{hazel.Int(3), hazel.Int(1)}); fail == nil || fail.Kind != hazel.ValueFailure {
		t.Errorf("inverted bounds = %v, want value failure", fail)
	}
}

func TestChoiceShuffleSample(t *testing.T) {
	m := Module()
	only := hazel.NewArray(hazel.Int(9))
	v, fail := m.Call("choice", []hazel.Value{only})
	if fail != nil || !hazel.Equal(v, hazel.Int(9)) {
		t.Errorf("choice of singleton = %v, %v, want 9", v, fail)
	}
	if _, fail := m.Call("choice", []hazel.Value{hazel.NewArray()}); fail == nil || fail.Kind != hazel.ValueFailure {
		t.Errorf("choice of empty array = %v, want value failure", fail)
	}

	a := hazel.NewArray(hazel.Int(1), hazel.Int(2), hazel.Int(3), hazel.Int(4))
	v, fail = m.Call("shuffle", []hazel.Value{a})
	if fail != nil {
		t.Fatalf("shuffle failed: %v", fail)
	}
	if v != hazel.Value(a) {
		t.Error("shuffle did not return the array it was given")
	}
	got := make([]int, len(a.Elems))
	for i, e := range a.Elems {
		got[i] = int(e.(hazel.Int))
	}
	sort.Ints(got)
	for i, want := range []int{1, 2, 3, 4} {
		if got[i] != want {
			t.Fatalf("shuffle changed contents: %v", got)
		}
	}

	v, fail = m.Call("sample", []hazel.Value{a, hazel.Int(2)})
	if fail != nil {
		t.Fatalf("sample failed: %v", fail)
	}
	s := v.(*hazel.Array)
	if len(s.Elems) != 2 || hazel.Equal(s.Elems[0], s.Elems[1]) {
		t.Errorf("sample = %v, want 2 distinct elements", v)
	}
	if _, fail := m.Call("sample", []hazel.Value{a, hazel.Int(5)}); fail == nil || fail.Kind != hazel.ValueFailure {
		t.Errorf("oversized sample = %v, want value failure", fail)
	}
}

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestUUID(t *testing.T) {
	m := Module()
	a, fail := m.Call("uuid", nil)
	if fail != nil {
		t.Fatalf("uuid failed: %v", fail)
	}
	if !uuidPattern.MatchString(string(a.(hazel.Str))) {
		t.Errorf("uuid = %v, not a v4 UUID", a)
	}
	b, _ := m.Call("uuid", nil)
	if hazel.Equal(a, b) {
		t.Error("two uuids were identical")
	}
}

func TestRandomHex(t *testing.T) {
	m := Module()
	v, fail := m.Call("random_hex", []hazel.Value{hazel.Int(8)})
	if fail != nil {
		t.Fatalf("random_hex failed: %v", fail)
	}
	s, ok := v.(hazel.Str)
	if !ok || len(s) != 16 {
		t.Errorf("random_hex(8) = %v, want 16 hex characters", v)
	}
	if _, fail := m.Call("random_hex", []hazel.Value{hazel.Int(-1)}); fail == nil || fail.Kind != hazel.TypeFailure {
		t.Errorf("negative random_hex = %v, want type failure", fail)
	}
}
