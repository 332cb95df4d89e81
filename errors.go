package hazel

import (
	"fmt"
	"strings"
)

// FailKind classifies a Failure.
type FailKind int

// Failure kinds. RuntimeFailure is the family head for errors raised by
// running code; SyntaxFailure and ImportFailure sit outside that family.
const (
	SyntaxFailure FailKind = iota
	RuntimeFailure
	TypeFailure
	NameFailure
	AttributeFailure
	IndexFailure
	KeyFailure
	ImportFailure
	DivisionFailure
	ValueFailure
	IOFailure
	RecursionFailure
)

var failKindNames = [...]string{
	SyntaxFailure:    "SyntaxError",
	RuntimeFailure:   "RuntimeError",
	TypeFailure:      "TypeError",
	NameFailure:      "NameError",
	AttributeFailure: "AttributeError",
	IndexFailure:     "IndexError",
	KeyFailure:       "KeyError",
	ImportFailure:    "ImportError",
	DivisionFailure:  "DivisionError",
	ValueFailure:     "ValueError",
	IOFailure:        "IOError",
	RecursionFailure: "RecursionError",
}

func (k FailKind) String() string {
	if k < SyntaxFailure || int(k) >= len(failKindNames) {
		return fmt.Sprintf("FailKind(%d)", int(k))
	}
	return failKindNames[k]
}

// runtimeFamily holds the kinds a catch clause naming RuntimeError also
// matches.
var runtimeFamily = map[FailKind]bool{
	RuntimeFailure:   true,
	TypeFailure:      true,
	NameFailure:      true,
	AttributeFailure: true,
	IndexFailure:     true,
	KeyFailure:       true,
	DivisionFailure:  true,
	ValueFailure:     true,
	IOFailure:        true,
	RecursionFailure: true,
}

// A Failure is a raised error travelling with ExceptionStop. It is both
// a language value, so catch clauses can bind and scripts can inspect
// it, and a Go error for the embedding API.
type Failure struct {
	Kind    FailKind
	Message string
	Line    int
	Col     int
	File    string
	// Stack is a snapshot of call frames, innermost last, as
	// "name()" or "Class.method()" strings.
	Stack []string
}

// NewFailuref creates a Failure with a formatted message.
func NewFailuref(kind FailKind, line, col int, format string, args ...interface{}) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...), Line: line, Col: col}
}

// Error makes Failure a Go error.
func (f *Failure) Error() string {
	if f.Line > 0 {
		return fmt.Sprintf("%v: %s (line %d, column %d)", f.Kind, f.Message, f.Line, f.Col)
	}
	return fmt.Sprintf("%v: %s", f.Kind, f.Message)
}

// Matches reports whether a catch clause naming name catches this
// failure. An empty name is a catch-all. A kind matches its own name
// with or without the Error suffix; RuntimeError additionally matches
// the whole runtime family, and Error matches everything.
func (f *Failure) Matches(name string) bool {
	if name == "" || name == "Error" {
		return true
	}
	kindName := f.Kind.String()
	if name == kindName || name == strings.TrimSuffix(kindName, "Error") {
		return true
	}
	if (name == "RuntimeError" || name == "Runtime") && runtimeFamily[f.Kind] {
		return true
	}
	return false
}

// withStack attaches a call stack snapshot if the failure does not
// already carry one. Failures pick up the stack at raise time.
func (f *Failure) withStack(stack []string) *Failure {
	if f.Stack == nil && len(stack) > 0 {
		f.Stack = append([]string(nil), stack...)
	}
	return f
}
