package hazel

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Evaluation limits. Call depth is bounded well below the point where
// the Go stack would give out; expression nesting has its own, tighter
// bound because deeply nested expressions recurse several Go frames per
// level.
const (
	maxCallDepth = 500
	maxExprDepth = 200
)

// Evaluator executes a loaded Program. Each evaluator owns its global
// scope, its class table and its module resolver; nothing is shared
// between evaluators except modules explicitly passed through a shared
// resolver.
type Evaluator struct {
	classes    map[string]*Class
	functions  map[string]*Function
	objectDecl []ObjectDecl
	imports    []ImportDecl
	callTarget string
	callArgs   []Value

	global       map[string]Value
	currentObj   *Object
	currentClass *Class
	callStack    []string
	imported     map[string]*Module
	exprDepth    int
	instances    int

	resolver *Resolver
	echo     io.Writer
	stdin    *bufio.Reader
	file     string
}

// NewEvaluator creates an evaluator for a loaded program. Echo output
// defaults to stdout; SetEcho redirects it.
func NewEvaluator(prog *Program) *Evaluator {
	ev := &Evaluator{
		classes:    prog.Classes,
		functions:  prog.Functions,
		objectDecl: prog.Objects,
		imports:    prog.Imports,
		callTarget: prog.CallTarget,
		callArgs:   prog.CallArgs,
		global:     make(map[string]Value),
		imported:   make(map[string]*Module),
		echo:       os.Stdout,
		stdin:      bufio.NewReader(os.Stdin),
		file:       prog.File,
	}
	if ev.classes == nil {
		ev.classes = make(map[string]*Class)
	}
	if ev.functions == nil {
		ev.functions = make(map[string]*Function)
	}
	for k, v := range prog.Data {
		ev.global[k] = v
	}
	ev.resolver = NewResolver(prog.Dir)
	return ev
}

// Resolver returns the evaluator's module resolver, so callers can
// install native modules before Run.
func (ev *Evaluator) Resolver() *Resolver { return ev.resolver }

// SetResolver replaces the module resolver. Script modules loaded by a
// resolver share it with their nested evaluators.
func (ev *Evaluator) SetResolver(r *Resolver) { ev.resolver = r }

// SetEcho redirects echo output.
func (ev *Evaluator) SetEcho(w io.Writer) { ev.echo = w }

// SetInput redirects the input builtin.
func (ev *Evaluator) SetInput(r io.Reader) { ev.stdin = bufio.NewReader(r) }

// failAt builds a failure carrying the evaluator's file and call stack.
func (ev *Evaluator) failAt(kind FailKind, at pos, format string, args ...interface{}) *Failure {
	f := NewFailuref(kind, at.Line, at.Col, format, args...)
	f.File = ev.file
	return f.withStack(ev.callStack)
}

// raise is failAt returning the (Value, Stop) pair most call sites
// need.
func (ev *Evaluator) raise(kind FailKind, at pos, format string, args ...interface{}) (Value, Stop) {
	return ev.failAt(kind, at, format, args...), ExceptionStop
}

// Run executes the program: top-level imports first, then declared
// object construction, then the call target (main by default). The
// returned error, if any, is a *Failure.
func (ev *Evaluator) Run() (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Failure{
				Kind:    RuntimeFailure,
				Message: fmt.Sprintf("internal fault: %v", r),
				File:    ev.file,
				Stack:   append([]string(nil), ev.callStack...),
			}
		}
	}()
	if fail := ev.runPreamble(); fail != nil {
		return nil, fail
	}
	target := ev.callTarget
	if target == "" {
		target = "main"
	}
	fn, ok := ev.functions[target]
	if !ok {
		return nil, ev.failAt(NameFailure, pos{}, "Unknown call target: '%s'", target)
	}
	scope := make(map[string]Value, len(fn.Params))
	for i, param := range fn.Params {
		if i < len(ev.callArgs) {
			scope[param] = ev.callArgs[i]
		} else {
			scope[param] = Nil
		}
	}
	v, stop := ev.executeFunction(fn, scope, target)
	switch stop {
	case NoStop:
		return v, nil
	case ExceptionStop:
		return nil, v.(*Failure)
	}
	return nil, ev.failAt(RuntimeFailure, pos{}, "'%v' outside of loop", stop)
}

// runPreamble processes top-level imports and instantiates declared
// objects. Imports run first so constructors can use them.
func (ev *Evaluator) runPreamble() *Failure {
	for _, imp := range ev.imports {
		v, stop := ev.execImport(&ImportStmt{Module: imp.Module, Alias: imp.Alias}, ev.global)
		if stop == ExceptionStop {
			return v.(*Failure)
		}
	}
	for _, decl := range ev.objectDecl {
		obj, stop := ev.instantiate(decl.ClassName, decl.Name, decl.Args, pos{})
		if stop == ExceptionStop {
			return obj.(*Failure)
		}
		ev.global[decl.Name] = obj
	}
	return nil
}

// CallFunction invokes a document function by name with already
// evaluated arguments. The module resolver uses this to expose script
// module functions.
func (ev *Evaluator) CallFunction(name string, args []Value) (Value, *Failure) {
	fn, ok := ev.functions[name]
	if !ok {
		return nil, ev.failAt(NameFailure, pos{}, "Unknown function '%s'", name)
	}
	scope := make(map[string]Value, len(fn.Params))
	for i, param := range fn.Params {
		if i < len(args) {
			scope[param] = args[i]
		} else {
			scope[param] = Nil
		}
	}
	v, stop := ev.executeFunction(fn, scope, name)
	if stop == ExceptionStop {
		return nil, v.(*Failure)
	}
	return v, nil
}

// Instantiate constructs an instance of a document class with already
// evaluated constructor arguments.
func (ev *Evaluator) Instantiate(className, objName string, args []Value) (Value, *Failure) {
	v, stop := ev.instantiate(className, objName, args, pos{})
	if stop == ExceptionStop {
		return nil, v.(*Failure)
	}
	return v, nil
}

// Function reports the named document function, if declared.
func (ev *Evaluator) Function(name string) (*Function, bool) {
	fn, ok := ev.functions[name]
	return fn, ok
}

// Class reports the named document class, if declared.
func (ev *Evaluator) Class(name string) (*Class, bool) {
	c, ok := ev.classes[name]
	return c, ok
}

// Global reads a global, used by tests and the module resolver.
func (ev *Evaluator) Global(name string) (Value, bool) {
	v, ok := ev.global[name]
	return v, ok
}

// executeFunction runs a function body in the given scope. A non-empty
// name is pushed as a call stack frame. ReturnStop is consumed here;
// break and continue have no business crossing a call boundary and are
// surfaced as failures.
func (ev *Evaluator) executeFunction(fn *Function, scope map[string]Value, name string) (Value, Stop) {
	if len(ev.callStack) >= maxCallDepth {
		return ev.raise(RecursionFailure, pos{},
			"Maximum recursion depth exceeded (%d). Hint: Check for infinite recursion in function calls.", maxCallDepth)
	}
	if name != "" {
		ev.callStack = append(ev.callStack, name+"()")
		defer func() { ev.callStack = ev.callStack[:len(ev.callStack)-1] }()
	}
	v, stop := ev.execBlock(fn.Body, scope)
	switch stop {
	case NoStop:
		return v, NoStop
	case ReturnStop:
		return v, NoStop
	case ExceptionStop:
		return v, stop
	}
	return ev.raise(RuntimeFailure, pos{}, "'%v' outside of loop", stop)
}

func (ev *Evaluator) execBlock(block *BlockStmt, scope map[string]Value) (Value, Stop) {
	for _, stmt := range block.Stmts {
		v, stop := ev.execStatement(stmt, scope)
		if stop != NoStop {
			return v, stop
		}
	}
	return Nil, NoStop
}

func (ev *Evaluator) execStatement(stmt Stmt, scope map[string]Value) (Value, Stop) {
	switch stmt := stmt.(type) {
	case *AssignStmt:
		return ev.execAssign(stmt, scope)
	case *IndexAssignStmt:
		return ev.execIndexAssign(stmt, scope)
	case *EchoStmt:
		v, stop := ev.evalExpression(stmt.Value, scope)
		if stop != NoStop {
			return v, stop
		}
		fmt.Fprintln(ev.echo, AsString(v))
		return Nil, NoStop
	case *ReturnStmt:
		if stmt.Value == nil {
			return Nil, ReturnStop
		}
		v, stop := ev.evalExpression(stmt.Value, scope)
		if stop != NoStop {
			return v, stop
		}
		return v, ReturnStop
	case *IfStmt:
		cond, stop := ev.evalExpression(stmt.Cond, scope)
		if stop != NoStop {
			return cond, stop
		}
		if AsBool(cond) {
			return ev.execBlock(stmt.Then, scope)
		}
		if stmt.Else != nil {
			return ev.execBlock(stmt.Else, scope)
		}
		return Nil, NoStop
	case *WhileStmt:
		return ev.execWhile(stmt, scope)
	case *ForInStmt:
		return ev.execForIn(stmt, scope)
	case *BreakStmt:
		return Nil, BreakStop
	case *ContinueStmt:
		return Nil, ContinueStop
	case *ThrowStmt:
		message := "Exception thrown"
		if stmt.Value != nil {
			v, stop := ev.evalExpression(stmt.Value, scope)
			if stop != NoStop {
				return v, stop
			}
			message = AsString(v)
		}
		return ev.raise(RuntimeFailure, stmt.pos, "%s", message)
	case *TryStmt:
		return ev.execTry(stmt, scope)
	case *ImportStmt:
		return ev.execImport(stmt, scope)
	case *IncrementStmt:
		return ev.execIncrement(stmt, scope)
	case *BlockStmt:
		return ev.execBlock(stmt, scope)
	case *ExprStmt:
		v, stop := ev.evalExpression(stmt.X, scope)
		if stop != NoStop {
			return v, stop
		}
		return Nil, NoStop
	}
	return ev.raise(RuntimeFailure, pos{}, "Unknown statement type: %T", stmt)
}

func (ev *Evaluator) execAssign(stmt *AssignStmt, scope map[string]Value) (Value, Stop) {
	v, stop := ev.evalExpression(stmt.Value, scope)
	if stop != NoStop {
		return v, stop
	}
	objName, propName, dotted := strings.Cut(stmt.Target, ".")
	if !dotted {
		if c, ok := v.(*Closure); ok && c.SelfName == "" {
			c.SelfName = stmt.Target
		}
		// Plain assignment always lands in the local scope.
		scope[stmt.Target] = v
		return Nil, NoStop
	}
	obj, stop := ev.resolvePrefix(objName, scope, stmt.pos)
	if stop != NoStop {
		return obj, stop
	}
	switch obj := obj.(type) {
	case *Object:
		obj.Attrs[propName] = v
	case *Dict:
		obj.Set(propName, v)
	default:
		return ev.raise(TypeFailure, stmt.pos, "Cannot set property on non-object value: %s", obj.TypeName())
	}
	return Nil, NoStop
}

// resolvePrefix resolves the part of a dotted target before the first
// dot. this resolves through the local scope and then the active
// method receiver.
func (ev *Evaluator) resolvePrefix(name string, scope map[string]Value, at pos) (Value, Stop) {
	if name == "this" {
		if v, ok := scope["this"]; ok && AsBool(v) {
			return v, NoStop
		}
		if ev.currentObj != nil {
			return ev.currentObj, NoStop
		}
		return ev.raise(NameFailure, at, "'this' is not defined outside of method context")
	}
	v, fail := ev.lookupVariable(name, scope, at)
	if fail != nil {
		return fail, ExceptionStop
	}
	return v, NoStop
}

func (ev *Evaluator) execIndexAssign(stmt *IndexAssignStmt, scope map[string]Value) (Value, Stop) {
	objName, propName, dotted := strings.Cut(stmt.Target, ".")
	var container Value
	if dotted {
		obj, stop := ev.resolvePrefix(objName, scope, stmt.pos)
		if stop != NoStop {
			return obj, stop
		}
		o, ok := obj.(*Object)
		if !ok {
			return ev.raise(TypeFailure, stmt.pos, "Cannot access property on non-object value: %s", obj.TypeName())
		}
		if _, ok := o.Attrs[propName]; !ok {
			o.Attrs[propName] = NewDict()
		}
		container = o.Attrs[propName]
	} else {
		v, fail := ev.lookupVariable(stmt.Target, scope, stmt.pos)
		if fail != nil {
			return fail, ExceptionStop
		}
		container = v
	}
	index, stop := ev.evalExpression(stmt.Index, scope)
	if stop != NoStop {
		return index, stop
	}
	value, stop := ev.evalExpression(stmt.Value, scope)
	if stop != NoStop {
		return value, stop
	}
	switch container := container.(type) {
	case *Dict:
		key, fail := dictKey(index, ev, stmt.pos)
		if fail != nil {
			return fail, ExceptionStop
		}
		container.Set(key, value)
		return Nil, NoStop
	case *Array:
		i, ok := index.(Int)
		if !ok {
			return ev.raise(TypeFailure, stmt.pos, "Array index must be integer, got %s", index.TypeName())
		}
		if i < 0 || int(i) >= len(container.Elems) {
			return ev.raise(IndexFailure, stmt.pos, "Array index %d out of bounds (length: %d)", i, len(container.Elems))
		}
		container.Elems[i] = value
		return Nil, NoStop
	}
	return ev.raise(TypeFailure, stmt.pos, "Cannot index non-array and non-dict value: %s", container.TypeName())
}

// dictKey converts an index value to a dict key. Keys are strings;
// integer indices use their decimal form so d[1] and d["1"] agree.
func dictKey(index Value, ev *Evaluator, at pos) (string, *Failure) {
	switch index := index.(type) {
	case Str:
		return string(index), nil
	case Int:
		return AsString(index), nil
	}
	return "", ev.failAt(TypeFailure, at, "Dict key must be string, got %s", index.TypeName())
}

func (ev *Evaluator) execWhile(stmt *WhileStmt, scope map[string]Value) (Value, Stop) {
	for {
		cond, stop := ev.evalExpression(stmt.Cond, scope)
		if stop != NoStop {
			return cond, stop
		}
		if !AsBool(cond) {
			return Nil, NoStop
		}
		v, stop := ev.execBlock(stmt.Body, scope)
		switch stop {
		case NoStop, ContinueStop: // do nothing
		case BreakStop:
			return Nil, NoStop
		case ReturnStop, ExceptionStop:
			return v, stop
		}
	}
}

func (ev *Evaluator) execForIn(stmt *ForInStmt, scope map[string]Value) (Value, Stop) {
	iterable, stop := ev.evalExpression(stmt.Iterable, scope)
	if stop != NoStop {
		return iterable, stop
	}
	var items []Value
	switch iterable := iterable.(type) {
	case *Array:
		items = iterable.Elems
	case *Dict:
		// Snapshot the keys so the body can mutate the dict.
		for _, k := range append([]string(nil), iterable.Keys()...) {
			items = append(items, Str(k))
		}
	case Str:
		for _, c := range string(iterable) {
			items = append(items, Str(string(c)))
		}
	default:
		return ev.raise(TypeFailure, stmt.pos, "'%s' object is not iterable", iterable.TypeName())
	}
	for _, item := range items {
		scope[stmt.Var] = item
		v, stop := ev.execBlock(stmt.Body, scope)
		switch stop {
		case NoStop, ContinueStop: // do nothing
		case BreakStop:
			return Nil, NoStop
		case ReturnStop, ExceptionStop:
			return v, stop
		}
	}
	return Nil, NoStop
}

func (ev *Evaluator) execTry(stmt *TryStmt, scope map[string]Value) (Value, Stop) {
	v, stop := ev.execBlock(stmt.Try, scope)
	if stop == ExceptionStop {
		failure := v.(*Failure)
		for _, catch := range stmt.Catches {
			if !failure.Matches(catch.Kind) {
				continue
			}
			scope[catch.Var] = failure
			v, stop = ev.execBlock(catch.Body, scope)
			break
		}
	}
	// Break, continue and return pass through the catch clauses
	// untouched; finally always runs and its own control flow wins.
	if stmt.Finally != nil {
		fv, fstop := ev.execBlock(stmt.Finally, scope)
		if fstop != NoStop {
			return fv, fstop
		}
	}
	return v, stop
}

func (ev *Evaluator) execImport(stmt *ImportStmt, scope map[string]Value) (Value, Stop) {
	module, fail := ev.resolver.Load(stmt.Module)
	if fail != nil {
		f := ev.failAt(ImportFailure, stmt.pos, "Cannot import module '%s': %s", stmt.Module, fail.Message)
		return f, ExceptionStop
	}
	alias := stmt.Alias
	if alias == "" {
		alias = moduleBaseName(stmt.Module)
	}
	ev.imported[alias] = module
	scope[alias] = module
	return Nil, NoStop
}

func (ev *Evaluator) execIncrement(stmt *IncrementStmt, scope map[string]Value) (Value, Stop) {
	v, fail := ev.lookupVariable(stmt.Name, scope, stmt.pos)
	if fail != nil {
		return fail, ExceptionStop
	}
	next, ok := incremented(v)
	if !ok {
		return ev.raise(TypeFailure, stmt.pos, "Cannot increment non-numeric value: %s", v.TypeName())
	}
	ev.updateVariable(stmt.Name, next, scope)
	return Nil, NoStop
}

func incremented(v Value) (Value, bool) {
	switch v := v.(type) {
	case Int:
		return v + 1, true
	case Float:
		return v + 1, true
	}
	return nil, false
}

// lookupVariable resolves a possibly dotted name: local scope first,
// then globals. A dotted name splits at the first dot; everything after
// it is one literal attribute key.
func (ev *Evaluator) lookupVariable(name string, scope map[string]Value, at pos) (Value, *Failure) {
	objName, propName, dotted := strings.Cut(name, ".")
	if dotted {
		if objName == "this" {
			obj, ok := scope["this"]
			if !ok || !AsBool(obj) {
				if ev.currentObj == nil {
					return nil, ev.failAt(NameFailure, at, "'this' is not defined outside of method context")
				}
				obj = ev.currentObj
			}
			o, isObj := obj.(*Object)
			if !isObj {
				return nil, ev.failAt(TypeFailure, at, "'this' is not an object")
			}
			if v, ok := o.Attrs[propName]; ok {
				return v, nil
			}
			return nil, ev.failAt(AttributeFailure, at, "Property '%s' not found in object", propName)
		}
		obj, fail := ev.lookupVariable(objName, scope, at)
		if fail != nil {
			return nil, fail
		}
		switch obj := obj.(type) {
		case *Object:
			if v, ok := obj.Attrs[propName]; ok {
				return v, nil
			}
			return nil, ev.failAt(AttributeFailure, at, "Property '%s' not found in object '%s'", propName, objName)
		case *Dict:
			if v, ok := obj.Get(propName); ok {
				return v, nil
			}
			return nil, ev.failAt(KeyFailure, at, "Key '%s' not found in '%s'. %s", propName, objName, keyHint(obj))
		}
		return nil, ev.failAt(TypeFailure, at, "Cannot access property '%s' on '%s' of type %s", propName, objName, obj.TypeName())
	}
	if v, ok := scope[name]; ok {
		return v, nil
	}
	if v, ok := ev.global[name]; ok {
		return v, nil
	}
	return nil, ev.failAt(NameFailure, at, "Undefined variable: '%s'", name)
}

// updateVariable writes to an existing local, then an existing global,
// and otherwise creates a local.
func (ev *Evaluator) updateVariable(name string, v Value, scope map[string]Value) {
	if _, ok := scope[name]; ok {
		scope[name] = v
		return
	}
	if _, ok := ev.global[name]; ok {
		ev.global[name] = v
		return
	}
	scope[name] = v
}

// keyHint lists a few dict keys for key-miss failure messages.
func keyHint(d *Dict) string {
	keys := d.Keys()
	if len(keys) == 0 {
		return "Dictionary is empty"
	}
	if len(keys) > 5 {
		keys = keys[:5]
	}
	return "Available keys: [" + strings.Join(keys, ", ") + "]"
}
