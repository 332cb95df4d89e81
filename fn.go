package hazel

// Function is a named function or method from a document: a parameter
// list and a parsed body. The body's positions are document relative.
type Function struct {
	Name   string
	Params []string
	Body   *BlockStmt
}

func (*Function) TypeName() string { return "function" }

// Closure is an arrow function value. It captures a copy of the scope
// in which it was created; calls run against a fresh copy of that
// capture, so one call's locals never leak into the next.
type Closure struct {
	Params []string
	Body   *BlockStmt
	// Scope is the captured defining scope.
	Scope map[string]Value
	// SelfName, when set, is rebound to the closure itself in each
	// call's scope so named closures can recurse.
	SelfName string
}

func (*Closure) TypeName() string { return "function" }

// callScope builds the local scope for one invocation: a copy of the
// capture with arguments bound positionally, missing arguments bound
// to null, and the closure's own name rebound for recursion.
func (c *Closure) callScope(args []Value) map[string]Value {
	scope := make(map[string]Value, len(c.Scope)+len(c.Params)+1)
	for k, v := range c.Scope {
		scope[k] = v
	}
	for i, param := range c.Params {
		if i < len(args) {
			scope[param] = args[i]
		} else {
			scope[param] = Nil
		}
	}
	if c.SelfName != "" {
		scope[c.SelfName] = c
	}
	return scope
}
