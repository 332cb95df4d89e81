// Package testutils provides utilities for testing hazel documents in
// Go.
package testutils

import (
	"strings"
	"testing"

	"github.com/hazel-lang/hazel"
	"github.com/hazel-lang/hazel/modules"
)

// Result holds everything running a document produces: the value of the
// call target, the failure if one escaped, and the collected echo
// output.
type Result struct {
	Value   hazel.Value
	Failure *hazel.Failure
	Output  string
}

// Run loads a document from source, installs the standard modules and
// executes it.
func Run(source string) Result {
	prog, err := hazel.LoadString(source, "test.hzl")
	if err != nil {
		if fail, ok := err.(*hazel.Failure); ok {
			return Result{Failure: fail}
		}
		return Result{Failure: &hazel.Failure{Kind: hazel.SyntaxFailure, Message: err.Error()}}
	}
	ev := hazel.NewEvaluator(prog)
	modules.Install(ev.Resolver())
	var out strings.Builder
	ev.SetEcho(&out)
	v, err := ev.Run()
	if err != nil {
		return Result{Failure: err.(*hazel.Failure), Output: out.String()}
	}
	return Result{Value: v, Output: out.String()}
}

// Main wraps a statement body in a document whose main function holds
// it, for tests that exercise single statements or expressions.
func Main(body string) string {
	var b strings.Builder
	b.WriteString("main: () => {\n")
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.String()
}

// A SourceTestCase is a test case containing hazel document source and
// a predicate to check the result.
type SourceTestCase struct {
	// Source is the document source to execute.
	Source string
	// Pass is a predicate taking the result of executing Source. If
	// Pass returns false, then the test fails.
	Pass func(r Result) bool
}

// TestFunc returns a test function for the test case.
func (c SourceTestCase) TestFunc() func(*testing.T) {
	return func(t *testing.T) {
		r := Run(c.Source)
		if !c.Pass(r) {
			if r.Failure != nil {
				t.Errorf("%q produced wrong result; a failure occurred:\n\t%v", c.Source, r.Failure)
				for i := len(r.Failure.Stack) - 1; i >= 0; i-- {
					t.Logf("\t%s", r.Failure.Stack[i])
				}
			} else {
				t.Errorf("%q produced wrong result; got %s (output %q)", c.Source, hazel.AsString(r.Value), r.Output)
			}
		}
	}
}

// PassEqual returns a Pass function for a SourceTestCase that
// predicates on language-level equality of the call target's result. A
// failure makes the predicate false.
func PassEqual(want hazel.Value) func(Result) bool {
	return func(r Result) bool {
		if r.Failure != nil {
			return false
		}
		return hazel.Equal(want, r.Value)
	}
}

// PassOutput returns a Pass function for a SourceTestCase that
// predicates on the exact echo output. A failure makes the predicate
// false.
func PassOutput(want string) func(Result) bool {
	return func(r Result) bool {
		return r.Failure == nil && r.Output == want
	}
}

// PassFailure returns a Pass function for a SourceTestCase that is true
// iff the run raised a failure of the given kind.
func PassFailure(kind hazel.FailKind) func(Result) bool {
	return func(r Result) bool {
		return r.Failure != nil && r.Failure.Kind == kind
	}
}

// PassAnyFailure returns a Pass function for a SourceTestCase that is
// true iff the run raised any failure.
func PassAnyFailure() func(Result) bool {
	// This doesn't need to be a function returning a function, but it's
	// nice to stay consistent with the other predicate generators.
	return func(r Result) bool {
		return r.Failure != nil
	}
}

// PassSuccess returns a Pass function for a SourceTestCase that is true
// iff the run completed without a failure.
func PassSuccess() func(Result) bool {
	return func(r Result) bool {
		return r.Failure == nil
	}
}
