package hazel

import (
	"testing"
)

func kinds(tokens []token) []tokenKind {
	out := make([]tokenKind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func sameKinds(a []tokenKind, b []tokenKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestTokenizeKinds tests the token kind stream for representative
// source lines.
func TestTokenizeKinds(t *testing.T) {
	cases := map[string]struct {
		src  string
		want []tokenKind
	}{
		"assign":    {"x = 1", []tokenKind{identToken, assignToken, numberToken, eofToken}},
		"float":     {"y = 2.5", []tokenKind{identToken, assignToken, numberToken, eofToken}},
		"arith":     {"1 + 2 * 3", []tokenKind{numberToken, plusToken, numberToken, starToken, numberToken, eofToken}},
		"compare":   {"a <= b >= c", []tokenKind{identToken, leToken, identToken, geToken, identToken, eofToken}},
		"equality":  {"a == b != c", []tokenKind{identToken, eqToken, identToken, neToken, identToken, eofToken}},
		"logic":     {"a && b || !c", []tokenKind{identToken, andToken, identToken, orToken, notToken, identToken, eofToken}},
		"arrow":     {"(a) => b", []tokenKind{lparenToken, identToken, rparenToken, arrowToken, identToken, eofToken}},
		"increment": {"i++", []tokenKind{identToken, incrementToken, eofToken}},
		"keyword":   {"return x", []tokenKind{keywordToken, identToken, eofToken}},
		"boolean":   {"true false", []tokenKind{booleanToken, booleanToken, eofToken}},
		"null":      {"null", []tokenKind{nullToken, eofToken}},
		"index":     {"a[0]", []tokenKind{identToken, lbracketToken, numberToken, rbracketToken, eofToken}},
		"dict":      {`{"k": 1}`, []tokenKind{lbraceToken, stringToken, colonToken, numberToken, rbraceToken, eofToken}},
		"member":    {"a.b(c, d)", []tokenKind{identToken, dotToken, identToken, lparenToken, identToken, commaToken, identToken, rparenToken, eofToken}},
		"comment":   {"a # rest is ignored\nb", []tokenKind{identToken, identToken, eofToken}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			tokens, fail := tokenize(c.src, 1, 1)
			if fail != nil {
				t.Fatalf("tokenize %q failed: %v", c.src, fail)
			}
			if got := kinds(tokens); !sameKinds(got, c.want) {
				t.Errorf("tokenize %q: got %v, want %v", c.src, got, c.want)
			}
		})
	}
}

// TestTokenizeIndent tests INDENT and DEDENT emission.
func TestTokenizeIndent(t *testing.T) {
	cases := map[string]struct {
		src  string
		want []tokenKind
	}{
		"block":     {"a\n  b\nc", []tokenKind{identToken, indentToken, identToken, dedentToken, identToken, eofToken}},
		"nested":    {"a\n  b\n    c\nd", []tokenKind{identToken, indentToken, identToken, indentToken, identToken, dedentToken, dedentToken, identToken, eofToken}},
		"twoLevels": {"a\n    b\n  c", []tokenKind{identToken, indentToken, identToken, dedentToken, identToken, eofToken}},
		"blankLine": {"a\n  b\n\n  c", []tokenKind{identToken, indentToken, identToken, identToken, dedentToken, eofToken}},
		"closesAtEOF": {"a\n  b", []tokenKind{identToken, indentToken, identToken, dedentToken, eofToken}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			tokens, fail := tokenize(c.src, 1, 1)
			if fail != nil {
				t.Fatalf("tokenize %q failed: %v", c.src, fail)
			}
			if got := kinds(tokens); !sameKinds(got, c.want) {
				t.Errorf("tokenize %q: got %v, want %v", c.src, got, c.want)
			}
		})
	}
}

// TestTokenizeStrings tests string literal scanning and escapes.
func TestTokenizeStrings(t *testing.T) {
	cases := map[string]struct {
		src  string
		want string
	}{
		"plain":         {`"hello"`, "hello"},
		"escapes":       {`"a\nb\tc"`, "a\nb\tc"},
		"quote":         {`"say \"hi\""`, `say "hi"`},
		"backslash":     {`"a\\b"`, `a\b`},
		"unknownEscape": {`"a\qb"`, `a\qb`},
		"empty":         {`""`, ""},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			tokens, fail := tokenize(c.src, 1, 1)
			if fail != nil {
				t.Fatalf("tokenize %q failed: %v", c.src, fail)
			}
			if tokens[0].Kind != stringToken || tokens[0].Text != c.want {
				t.Errorf("tokenize %q: got %v %q, want string %q", c.src, tokens[0].Kind, tokens[0].Text, c.want)
			}
		})
	}
}

// TestTokenizePositions tests that positions respect the seed line and
// column.
func TestTokenizePositions(t *testing.T) {
	tokens, fail := tokenize("x = 1\ny", 7, 3)
	if fail != nil {
		t.Fatalf("tokenize failed: %v", fail)
	}
	if tokens[0].Line != 7 {
		t.Errorf("first token on line %d, want 7", tokens[0].Line)
	}
	if tokens[1].Col <= tokens[0].Col || tokens[2].Col <= tokens[1].Col {
		t.Errorf("columns not increasing across a line: %d, %d, %d", tokens[0].Col, tokens[1].Col, tokens[2].Col)
	}
	y := tokens[3]
	if y.Kind != identToken || y.Line != 8 {
		t.Errorf("second line token %v on line %d, want ident on line 8", y.Kind, y.Line)
	}
}

// TestTokenizeErrors tests invalid characters.
func TestTokenizeErrors(t *testing.T) {
	for name, src := range map[string]string{
		"at":       "x @ y",
		"loneAmp":  "a & b",
		"lonePipe": "a | b",
	} {
		t.Run(name, func(t *testing.T) {
			if _, fail := tokenize(src, 1, 1); fail == nil {
				t.Errorf("tokenize %q succeeded, want syntax failure", src)
			} else if fail.Kind != SyntaxFailure {
				t.Errorf("tokenize %q: failure kind %v, want %v", src, fail.Kind, SyntaxFailure)
			}
		})
	}
}
