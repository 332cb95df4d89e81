package hazel

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// evalExpression evaluates one expression, guarding against runaway
// nesting. Every recursive evaluation path funnels through here, so the
// depth counter tracks true expression nesting including closure calls.
func (ev *Evaluator) evalExpression(expr Expr, scope map[string]Value) (Value, Stop) {
	if ev.exprDepth >= maxExprDepth {
		return ev.raise(RecursionFailure, expr.Pos(),
			"Maximum expression depth exceeded (%d). Hint: Check for infinite recursion.", maxExprDepth)
	}
	ev.exprDepth++
	defer func() { ev.exprDepth-- }()
	switch expr := expr.(type) {
	case *IntLit:
		return Int(expr.Value), NoStop
	case *FloatLit:
		return Float(expr.Value), NoStop
	case *StringLit:
		return Str(expr.Value), NoStop
	case *BoolLit:
		return Bool(expr.Value), NoStop
	case *NullLit:
		return Nil, NoStop
	case *VariableExpr:
		return ev.evalVariable(expr, scope)
	case *BinaryExpr:
		return ev.evalBinary(expr, scope)
	case *UnaryExpr:
		return ev.evalUnary(expr, scope)
	case *ArrayLit:
		elems := make([]Value, len(expr.Elems))
		for i, e := range expr.Elems {
			v, stop := ev.evalExpression(e, scope)
			if stop != NoStop {
				return v, stop
			}
			elems[i] = v
		}
		return &Array{Elems: elems}, NoStop
	case *DictLit:
		d := NewDict()
		for i, k := range expr.DictKeys {
			v, stop := ev.evalExpression(expr.Values[i], scope)
			if stop != NoStop {
				return v, stop
			}
			d.Set(k, v)
		}
		return d, NoStop
	case *IndexExpr:
		return ev.evalIndex(expr, scope)
	case *ArrowFuncExpr:
		capture := make(map[string]Value, len(scope))
		for k, v := range scope {
			capture[k] = v
		}
		return &Closure{Params: expr.Params, Body: expr.Body, Scope: capture}, NoStop
	case *CallExpr:
		return ev.evalCall(expr, scope)
	case *MethodCallExpr:
		return ev.evalMethodCall(expr, scope)
	case *PrefixIncExpr:
		return ev.evalIncExpr(expr.Operand, expr.Pos(), true, scope)
	case *PostfixIncExpr:
		return ev.evalIncExpr(expr.Operand, expr.Pos(), false, scope)
	}
	return ev.raise(RuntimeFailure, expr.Pos(), "Unknown expression type: %T", expr)
}

func (ev *Evaluator) evalVariable(expr *VariableExpr, scope map[string]Value) (Value, Stop) {
	if expr.Name == "this" {
		if v, ok := scope["this"]; ok {
			return v, NoStop
		}
		if ev.currentObj != nil {
			return ev.currentObj, NoStop
		}
		return ev.raise(NameFailure, expr.Pos(), "'this' is not defined outside of method context")
	}
	v, fail := ev.lookupVariable(expr.Name, scope, expr.Pos())
	if fail != nil {
		return fail, ExceptionStop
	}
	return v, NoStop
}

func (ev *Evaluator) evalBinary(expr *BinaryExpr, scope map[string]Value) (Value, Stop) {
	left, stop := ev.evalExpression(expr.Left, scope)
	if stop != NoStop {
		return left, stop
	}
	// Logical operators short-circuit and yield the deciding operand.
	switch expr.Op {
	case "&&":
		if !AsBool(left) {
			return left, NoStop
		}
		return ev.evalExpression(expr.Right, scope)
	case "||":
		if AsBool(left) {
			return left, NoStop
		}
		return ev.evalExpression(expr.Right, scope)
	}
	right, stop := ev.evalExpression(expr.Right, scope)
	if stop != NoStop {
		return right, stop
	}
	return ev.applyBinary(expr.Op, left, right, expr.Pos())
}

func (ev *Evaluator) applyBinary(op string, left, right Value, at pos) (Value, Stop) {
	switch op {
	case "==":
		return Bool(deepEqual(left, right)), NoStop
	case "!=":
		return Bool(!deepEqual(left, right)), NoStop
	case "+":
		if la, ok := left.(*Array); ok {
			if ra, ok := right.(*Array); ok {
				elems := make([]Value, 0, len(la.Elems)+len(ra.Elems))
				elems = append(elems, la.Elems...)
				elems = append(elems, ra.Elems...)
				return &Array{Elems: elems}, NoStop
			}
		}
		lf, lInt, lok := numeric(left)
		rf, rInt, rok := numeric(right)
		if lok && rok {
			if lInt && rInt {
				return left.(Int) + right.(Int), NoStop
			}
			return Float(lf + rf), NoStop
		}
		// Any other mix concatenates renderings.
		return Str(AsString(left) + AsString(right)), NoStop
	}
	lf, lInt, lok := numeric(left)
	rf, rInt, rok := numeric(right)
	if !lok || !rok {
		return ev.raise(TypeFailure, at, "Binary operator '%s' requires numeric operands, got %s and %s",
			op, left.TypeName(), right.TypeName())
	}
	bothInt := lInt && rInt
	switch op {
	case "-":
		if bothInt {
			return left.(Int) - right.(Int), NoStop
		}
		return Float(lf - rf), NoStop
	case "*":
		if bothInt {
			return left.(Int) * right.(Int), NoStop
		}
		return Float(lf * rf), NoStop
	case "/":
		if rf == 0 {
			return ev.raise(DivisionFailure, at,
				"Division by zero. Hint: Add a check like if (divisor != 0) before dividing.")
		}
		return Float(lf / rf), NoStop
	case "%":
		if rf == 0 {
			return ev.raise(DivisionFailure, at,
				"Modulo by zero. Hint: Add a check like if (divisor != 0) before taking the remainder.")
		}
		if bothInt {
			return floorModInt(left.(Int), right.(Int)), NoStop
		}
		return Float(floorModFloat(lf, rf)), NoStop
	case "<":
		return Bool(lf < rf), NoStop
	case "<=":
		return Bool(lf <= rf), NoStop
	case ">":
		return Bool(lf > rf), NoStop
	case ">=":
		return Bool(lf >= rf), NoStop
	}
	return ev.raise(RuntimeFailure, at, "Unknown binary operator '%s'", op)
}

// floorModInt is the remainder with the sign of the divisor, so
// -7 % 3 is 2.
func floorModInt(a, b Int) Int {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func floorModFloat(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func (ev *Evaluator) evalUnary(expr *UnaryExpr, scope map[string]Value) (Value, Stop) {
	v, stop := ev.evalExpression(expr.Operand, scope)
	if stop != NoStop {
		return v, stop
	}
	switch expr.Op {
	case "!":
		b, ok := v.(Bool)
		if !ok {
			return ev.raise(TypeFailure, expr.Pos(), "Logical NOT requires boolean operand, got %s", v.TypeName())
		}
		return !b, NoStop
	}
	return ev.raise(RuntimeFailure, expr.Pos(), "Unknown unary operator '%s'", expr.Op)
}

// evalIncExpr handles ++ in expression position. Prefix yields the new
// value, postfix the old one. The operand must be a variable or an
// index expression.
func (ev *Evaluator) evalIncExpr(operand Expr, at pos, prefix bool, scope map[string]Value) (Value, Stop) {
	switch operand := operand.(type) {
	case *VariableExpr:
		old, fail := ev.lookupVariable(operand.Name, scope, at)
		if fail != nil {
			return fail, ExceptionStop
		}
		next, ok := incremented(old)
		if !ok {
			return ev.raise(TypeFailure, at, "Cannot increment non-numeric value: %s", old.TypeName())
		}
		ev.updateVariable(operand.Name, next, scope)
		if prefix {
			return next, NoStop
		}
		return old, NoStop
	case *IndexExpr:
		container, stop := ev.evalExpression(operand.Target, scope)
		if stop != NoStop {
			return container, stop
		}
		index, stop := ev.evalExpression(operand.Index, scope)
		if stop != NoStop {
			return index, stop
		}
		old, stop := ev.indexValue(container, index, at)
		if stop != NoStop {
			return old, stop
		}
		next, ok := incremented(old)
		if !ok {
			return ev.raise(TypeFailure, at, "Cannot increment non-numeric value: %s", old.TypeName())
		}
		if v, stop := ev.setIndexValue(container, index, next, at); stop != NoStop {
			return v, stop
		}
		if prefix {
			return next, NoStop
		}
		return old, NoStop
	}
	return ev.raise(TypeFailure, at, "Increment target must be a variable or index expression")
}

func (ev *Evaluator) evalIndex(expr *IndexExpr, scope map[string]Value) (Value, Stop) {
	container, stop := ev.evalExpression(expr.Target, scope)
	if stop != NoStop {
		return container, stop
	}
	index, stop := ev.evalExpression(expr.Index, scope)
	if stop != NoStop {
		return index, stop
	}
	return ev.indexValue(container, index, expr.Pos())
}

func (ev *Evaluator) indexValue(container, index Value, at pos) (Value, Stop) {
	switch container := container.(type) {
	case *Array:
		i, ok := index.(Int)
		if !ok {
			return ev.raise(TypeFailure, at, "Array index must be integer, got %s", index.TypeName())
		}
		if i < 0 || int(i) >= len(container.Elems) {
			return ev.raise(IndexFailure, at, "Array index %d out of bounds (length: %d)", i, len(container.Elems))
		}
		return container.Elems[i], NoStop
	case *Dict:
		key, fail := dictKey(index, ev, at)
		if fail != nil {
			return fail, ExceptionStop
		}
		if v, ok := container.Get(key); ok {
			return v, NoStop
		}
		return ev.raise(KeyFailure, at, "Key '%s' not found in dictionary. %s", key, keyHint(container))
	case Str:
		i, ok := index.(Int)
		if !ok {
			return ev.raise(TypeFailure, at, "String index must be integer, got %s", index.TypeName())
		}
		runes := []rune(string(container))
		if i < 0 || int(i) >= len(runes) {
			return ev.raise(IndexFailure, at, "String index %d out of bounds (length: %d)", i, len(runes))
		}
		return Str(string(runes[i])), NoStop
	}
	return ev.raise(TypeFailure, at, "Cannot index %s value", container.TypeName())
}

func (ev *Evaluator) setIndexValue(container, index, v Value, at pos) (Value, Stop) {
	switch container := container.(type) {
	case *Array:
		i, ok := index.(Int)
		if !ok {
			return ev.raise(TypeFailure, at, "Array index must be integer, got %s", index.TypeName())
		}
		if i < 0 || int(i) >= len(container.Elems) {
			return ev.raise(IndexFailure, at, "Array index %d out of bounds (length: %d)", i, len(container.Elems))
		}
		container.Elems[i] = v
		return Nil, NoStop
	case *Dict:
		key, fail := dictKey(index, ev, at)
		if fail != nil {
			return fail, ExceptionStop
		}
		container.Set(key, v)
		return Nil, NoStop
	}
	return ev.raise(TypeFailure, at, "Cannot index %s value", container.TypeName())
}

// evalCall resolves a bare call name in order: document classes, then
// builtins, then document functions, then scope variables holding a
// callable.
func (ev *Evaluator) evalCall(expr *CallExpr, scope map[string]Value) (Value, Stop) {
	if expr.Name == "" {
		callee, stop := ev.evalExpression(expr.Callee, scope)
		if stop != NoStop {
			return callee, stop
		}
		args, stop := ev.evalArgs(expr.Args, scope)
		if stop != NoStop {
			return args[0], stop
		}
		return ev.callValue(callee, args, "", expr.Pos())
	}
	if cls, ok := ev.classes[expr.Name]; ok {
		args, stop := ev.evalArgs(expr.Args, scope)
		if stop != NoStop {
			return args[0], stop
		}
		ev.instances++
		name := fmt.Sprintf("%s#%d", cls.Name, ev.instances)
		return ev.instantiateClass(cls, name, args, expr.Pos())
	}
	if builtin, ok := builtins[expr.Name]; ok {
		args, stop := ev.evalArgs(expr.Args, scope)
		if stop != NoStop {
			return args[0], stop
		}
		return builtin(ev, args, expr.Pos())
	}
	if fn, ok := ev.functions[expr.Name]; ok {
		args, stop := ev.evalArgs(expr.Args, scope)
		if stop != NoStop {
			return args[0], stop
		}
		fnScope := make(map[string]Value, len(fn.Params))
		for i, param := range fn.Params {
			if i < len(args) {
				fnScope[param] = args[i]
			} else {
				fnScope[param] = Nil
			}
		}
		return ev.executeFunction(fn, fnScope, expr.Name)
	}
	if v, fail := ev.lookupVariable(expr.Name, scope, expr.Pos()); fail == nil {
		args, stop := ev.evalArgs(expr.Args, scope)
		if stop != NoStop {
			return args[0], stop
		}
		return ev.callValue(v, args, expr.Name, expr.Pos())
	}
	return ev.raise(NameFailure, expr.Pos(), "Unknown function: '%s'", expr.Name)
}

// callValue invokes a first-class callable value.
func (ev *Evaluator) callValue(callee Value, args []Value, name string, at pos) (Value, Stop) {
	switch callee := callee.(type) {
	case *Closure:
		return ev.callClosure(callee, args, name)
	case *Function:
		scope := make(map[string]Value, len(callee.Params))
		for i, param := range callee.Params {
			if i < len(args) {
				scope[param] = args[i]
			} else {
				scope[param] = Nil
			}
		}
		return ev.executeFunction(callee, scope, name)
	case *Class:
		ev.instances++
		return ev.instantiateClass(callee, fmt.Sprintf("%s#%d", callee.Name, ev.instances), args, at)
	}
	if name != "" {
		return ev.raise(TypeFailure, at, "'%s' is not callable (type %s)", name, callee.TypeName())
	}
	return ev.raise(TypeFailure, at, "Value of type %s is not callable", callee.TypeName())
}

func (ev *Evaluator) callClosure(c *Closure, args []Value, name string) (Value, Stop) {
	scope := c.callScope(args)
	if name != "" && c.SelfName == "" {
		scope[name] = c
	}
	fn := &Function{Params: c.Params, Body: c.Body}
	return ev.executeFunction(fn, scope, name)
}

// evalArgs evaluates an argument list. On failure the returned slice
// holds only the failure value so callers can propagate it.
func (ev *Evaluator) evalArgs(exprs []Expr, scope map[string]Value) ([]Value, Stop) {
	args := make([]Value, 0, len(exprs))
	for _, e := range exprs {
		v, stop := ev.evalExpression(e, scope)
		if stop != NoStop {
			return []Value{v}, stop
		}
		args = append(args, v)
	}
	return args, NoStop
}

// instantiate constructs a named instance of a class from the class
// table.
func (ev *Evaluator) instantiate(className, objName string, args []Value, at pos) (Value, Stop) {
	cls, ok := ev.classes[className]
	if !ok {
		return ev.raise(NameFailure, at, "Unknown class: '%s'", className)
	}
	return ev.instantiateClass(cls, objName, args, at)
}

func (ev *Evaluator) instantiateClass(cls *Class, objName string, args []Value, at pos) (Value, Stop) {
	obj := NewObject(objName, cls)
	if method, _ := ev.resolveMethod(cls, "init"); method != nil {
		v, stop := ev.callMethod(obj, "init", args, at)
		if stop == ExceptionStop {
			return v, stop
		}
	}
	return obj, NoStop
}

// resolveMethod walks the class hierarchy for a method, returning it
// along with the class that defines it.
func (ev *Evaluator) resolveMethod(cls *Class, name string) (*Function, *Class) {
	seen := make(map[string]bool)
	for c := cls; c != nil; {
		if m := c.method(name); m != nil {
			return m, c
		}
		if c.ParentName == "" || seen[c.Name] {
			return nil, nil
		}
		seen[c.Name] = true
		c = ev.classes[c.ParentName]
	}
	return nil, nil
}

func (ev *Evaluator) evalMethodCall(expr *MethodCallExpr, scope map[string]Value) (Value, Stop) {
	recv, stop := ev.evalExpression(expr.Recv, scope)
	if stop != NoStop {
		return recv, stop
	}
	switch recv := recv.(type) {
	case *Object:
		if expr.Method == "parent" && len(expr.Args) == 0 {
			// Resolution starts from the class whose method is running,
			// not the object's runtime class, so chained parent calls in
			// a deep hierarchy keep climbing.
			from := ev.currentClass
			if from == nil {
				from = recv.Class
			}
			return ev.parentClass(from, expr.Pos())
		}
		args, stop := ev.evalArgs(expr.Args, scope)
		if stop != NoStop {
			return args[0], stop
		}
		return ev.callMethod(recv, expr.Method, args, expr.Pos())
	case *Class:
		if expr.Method == "parent" && len(expr.Args) == 0 {
			return ev.parentClass(recv, expr.Pos())
		}
		args, stop := ev.evalArgs(expr.Args, scope)
		if stop != NoStop {
			return args[0], stop
		}
		return ev.callClassMethod(recv, expr.Method, args, expr.Pos())
	case *Dict:
		return ev.callDictMember(recv, expr, scope)
	case *Array:
		return ev.callArrayMember(recv, expr, scope)
	case *Module:
		return ev.callModuleMember(recv, expr, scope)
	case *Failure:
		return ev.failureMember(recv, expr)
	case Str:
		return ev.callStringMember(recv, expr, scope)
	}
	return ev.raise(TypeFailure, expr.Pos(), "Cannot call method '%s' on %s value", expr.Method, recv.TypeName())
}

// parentClass resolves the parent of a class through the class table.
func (ev *Evaluator) parentClass(cls *Class, at pos) (Value, Stop) {
	if cls.ParentName == "" {
		return ev.raise(AttributeFailure, at, "Class '%s' has no parent class", cls.Name)
	}
	parent, ok := ev.classes[cls.ParentName]
	if !ok {
		return ev.raise(NameFailure, at, "Unknown class: '%s'", cls.ParentName)
	}
	return parent, NoStop
}

// callMethod invokes a method on an object, or reads an attribute when
// no method of that name exists. The class that defines the method
// becomes the current class for the duration of the call, so parent
// resolution inside the body starts from the right level.
func (ev *Evaluator) callMethod(obj *Object, name string, args []Value, at pos) (Value, Stop) {
	method, owner := ev.resolveMethod(obj.Class, name)
	if method == nil {
		if attr, ok := obj.Attrs[name]; ok {
			if c, isClosure := attr.(*Closure); isClosure && len(args) > 0 {
				return ev.callClosure(c, args, name)
			}
			return attr, NoStop
		}
		return ev.raise(AttributeFailure, at, "Method or attribute '%s' not found in class '%s'", name, obj.Class.Name)
	}
	prevObj, prevClass := ev.currentObj, ev.currentClass
	ev.currentObj, ev.currentClass = obj, owner
	defer func() { ev.currentObj, ev.currentClass = prevObj, prevClass }()

	scope := make(map[string]Value, len(method.Params)+1)
	for i, param := range method.Params {
		if i < len(args) {
			scope[param] = args[i]
		}
	}
	scope["this"] = obj

	if len(ev.callStack) >= maxCallDepth {
		return ev.raise(RecursionFailure, at,
			"Maximum recursion depth exceeded (%d). Hint: Check for infinite recursion in method calls.", maxCallDepth)
	}
	ev.callStack = append(ev.callStack, obj.Class.Name+"."+name+"()")
	defer func() { ev.callStack = ev.callStack[:len(ev.callStack)-1] }()
	return ev.executeFunction(method, scope, "")
}

// callClassMethod invokes a method with a class receiver, the form
// this.parent().method(args) uses. The receiver class becomes current
// while the active object stays bound to this. Only methods declared
// directly on the receiver class are considered.
func (ev *Evaluator) callClassMethod(cls *Class, name string, args []Value, at pos) (Value, Stop) {
	method := cls.method(name)
	if method == nil {
		return ev.raise(AttributeFailure, at, "Method '%s' not found in parent class '%s'", name, cls.Name)
	}
	prevClass := ev.currentClass
	ev.currentClass = cls
	defer func() { ev.currentClass = prevClass }()

	scope := make(map[string]Value, len(method.Params)+1)
	for i, param := range method.Params {
		if i < len(args) {
			scope[param] = args[i]
		}
	}
	if ev.currentObj != nil {
		scope["this"] = ev.currentObj
	}
	return ev.executeFunction(method, scope, "")
}

// callDictMember reads a key or applies a dict intrinsic. A plain
// member read returns the key's value when present; intrinsics cover
// the rest.
func (ev *Evaluator) callDictMember(d *Dict, expr *MethodCallExpr, scope map[string]Value) (Value, Stop) {
	if len(expr.Args) == 0 {
		if v, ok := d.Get(expr.Method); ok {
			return v, NoStop
		}
	}
	args, stop := ev.evalArgs(expr.Args, scope)
	if stop != NoStop {
		return args[0], stop
	}
	at := expr.Pos()
	switch expr.Method {
	case "length", "size":
		return Int(d.Len()), NoStop
	case "keys":
		keys := make([]Value, 0, d.Len())
		for _, k := range d.Keys() {
			keys = append(keys, Str(k))
		}
		return &Array{Elems: keys}, NoStop
	case "values":
		return &Array{Elems: d.Values()}, NoStop
	case "has":
		if len(args) != 1 {
			return ev.raise(ValueFailure, at, "has() expects 1 argument, got %d", len(args))
		}
		key, fail := dictKey(args[0], ev, at)
		if fail != nil {
			return fail, ExceptionStop
		}
		_, ok := d.Get(key)
		return Bool(ok), NoStop
	case "get":
		if len(args) < 1 || len(args) > 2 {
			return ev.raise(ValueFailure, at, "get() expects 1 or 2 arguments, got %d", len(args))
		}
		key, fail := dictKey(args[0], ev, at)
		if fail != nil {
			return fail, ExceptionStop
		}
		if v, ok := d.Get(key); ok {
			return v, NoStop
		}
		if len(args) == 2 {
			return args[1], NoStop
		}
		return Nil, NoStop
	case "remove":
		if len(args) != 1 {
			return ev.raise(ValueFailure, at, "remove() expects 1 argument, got %d", len(args))
		}
		key, fail := dictKey(args[0], ev, at)
		if fail != nil {
			return fail, ExceptionStop
		}
		return Bool(d.Delete(key)), NoStop
	}
	return ev.raise(KeyFailure, at, "Key '%s' not found in dictionary. %s", expr.Method, keyHint(d))
}

func (ev *Evaluator) callArrayMember(a *Array, expr *MethodCallExpr, scope map[string]Value) (Value, Stop) {
	args, stop := ev.evalArgs(expr.Args, scope)
	if stop != NoStop {
		return args[0], stop
	}
	at := expr.Pos()
	switch expr.Method {
	case "length", "size":
		return Int(len(a.Elems)), NoStop
	case "append", "push":
		if len(args) != 1 {
			return ev.raise(ValueFailure, at, "%s() expects 1 argument, got %d", expr.Method, len(args))
		}
		a.Elems = append(a.Elems, args[0])
		return Nil, NoStop
	case "pop":
		if len(a.Elems) == 0 {
			return ev.raise(IndexFailure, at, "Cannot pop from empty array")
		}
		i := len(a.Elems) - 1
		if len(args) == 1 {
			n, ok := args[0].(Int)
			if !ok {
				return ev.raise(TypeFailure, at, "pop() index must be integer, got %s", args[0].TypeName())
			}
			i = int(n)
			if i < 0 || i >= len(a.Elems) {
				return ev.raise(IndexFailure, at, "Array index %d out of bounds (length: %d)", i, len(a.Elems))
			}
		}
		v := a.Elems[i]
		a.Elems = append(a.Elems[:i], a.Elems[i+1:]...)
		return v, NoStop
	case "insert":
		if len(args) != 2 {
			return ev.raise(ValueFailure, at, "insert() expects 2 arguments, got %d", len(args))
		}
		n, ok := args[0].(Int)
		if !ok {
			return ev.raise(TypeFailure, at, "insert() index must be integer, got %s", args[0].TypeName())
		}
		i := int(n)
		if i < 0 || i > len(a.Elems) {
			return ev.raise(IndexFailure, at, "Array index %d out of bounds (length: %d)", i, len(a.Elems))
		}
		a.Elems = append(a.Elems, nil)
		copy(a.Elems[i+1:], a.Elems[i:])
		a.Elems[i] = args[1]
		return Nil, NoStop
	case "remove":
		if len(args) != 1 {
			return ev.raise(ValueFailure, at, "remove() expects 1 argument, got %d", len(args))
		}
		for i, e := range a.Elems {
			if deepEqual(e, args[0]) {
				a.Elems = append(a.Elems[:i], a.Elems[i+1:]...)
				return Bool(true), NoStop
			}
		}
		return Bool(false), NoStop
	case "index":
		if len(args) != 1 {
			return ev.raise(ValueFailure, at, "index() expects 1 argument, got %d", len(args))
		}
		for i, e := range a.Elems {
			if deepEqual(e, args[0]) {
				return Int(i), NoStop
			}
		}
		return Int(-1), NoStop
	case "contains":
		if len(args) != 1 {
			return ev.raise(ValueFailure, at, "contains() expects 1 argument, got %d", len(args))
		}
		for _, e := range a.Elems {
			if deepEqual(e, args[0]) {
				return Bool(true), NoStop
			}
		}
		return Bool(false), NoStop
	case "reverse":
		for i, j := 0, len(a.Elems)-1; i < j; i, j = i+1, j-1 {
			a.Elems[i], a.Elems[j] = a.Elems[j], a.Elems[i]
		}
		return Nil, NoStop
	case "sort":
		return ev.sortArray(a, at)
	case "join":
		sep := ", "
		if len(args) == 1 {
			s, ok := args[0].(Str)
			if !ok {
				return ev.raise(TypeFailure, at, "join() separator must be string, got %s", args[0].TypeName())
			}
			sep = string(s)
		}
		parts := make([]string, len(a.Elems))
		for i, e := range a.Elems {
			parts[i] = AsString(e)
		}
		return Str(strings.Join(parts, sep)), NoStop
	case "slice":
		if len(args) < 1 || len(args) > 2 {
			return ev.raise(ValueFailure, at, "slice() expects 1 or 2 arguments, got %d", len(args))
		}
		lo, hi := 0, len(a.Elems)
		n, ok := args[0].(Int)
		if !ok {
			return ev.raise(TypeFailure, at, "slice() bounds must be integers, got %s", args[0].TypeName())
		}
		lo = clampIndex(int(n), len(a.Elems))
		if len(args) == 2 {
			n, ok := args[1].(Int)
			if !ok {
				return ev.raise(TypeFailure, at, "slice() bounds must be integers, got %s", args[1].TypeName())
			}
			hi = clampIndex(int(n), len(a.Elems))
		}
		if lo > hi {
			lo = hi
		}
		return &Array{Elems: append([]Value(nil), a.Elems[lo:hi]...)}, NoStop
	}
	return ev.raise(TypeFailure, at, "Cannot access property '%s' on array", expr.Method)
}

// clampIndex normalizes a possibly negative slice bound against length.
func clampIndex(i, length int) int {
	if i < 0 {
		i += length
	}
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

// sortArray sorts in place. Mixed numeric arrays sort numerically,
// string arrays lexicographically; anything else is a type failure.
func (ev *Evaluator) sortArray(a *Array, at pos) (Value, Stop) {
	allNum, allStr := true, true
	for _, e := range a.Elems {
		if _, _, ok := numeric(e); !ok {
			allNum = false
		}
		if _, ok := e.(Str); !ok {
			allStr = false
		}
	}
	switch {
	case allNum:
		sort.SliceStable(a.Elems, func(i, j int) bool {
			fi, _, _ := numeric(a.Elems[i])
			fj, _, _ := numeric(a.Elems[j])
			return fi < fj
		})
	case allStr:
		sort.SliceStable(a.Elems, func(i, j int) bool {
			return a.Elems[i].(Str) < a.Elems[j].(Str)
		})
	default:
		return ev.raise(TypeFailure, at, "sort() requires all-numeric or all-string array")
	}
	return Nil, NoStop
}

// callModuleMember resolves module.name: a zero-argument form reads a
// constant first and falls back to a nullary function call.
func (ev *Evaluator) callModuleMember(m *Module, expr *MethodCallExpr, scope map[string]Value) (Value, Stop) {
	if len(expr.Args) == 0 && m.HasConstant(expr.Method) {
		v, fail := m.Constant(expr.Method)
		if fail != nil {
			return ev.raise(fail.Kind, expr.Pos(), "%s", fail.Message)
		}
		return v, NoStop
	}
	args, stop := ev.evalArgs(expr.Args, scope)
	if stop != NoStop {
		return args[0], stop
	}
	v, fail := m.Call(expr.Method, args)
	if fail != nil {
		return ev.raise(fail.Kind, expr.Pos(), "%s", fail.Message)
	}
	return v, NoStop
}

// failureMember exposes caught failures to catch bodies.
func (ev *Evaluator) failureMember(f *Failure, expr *MethodCallExpr) (Value, Stop) {
	if len(expr.Args) != 0 {
		return ev.raise(TypeFailure, expr.Pos(), "Cannot call method '%s' on error value", expr.Method)
	}
	switch expr.Method {
	case "message":
		return Str(f.Message), NoStop
	case "kind", "type":
		return Str(f.Kind.String()), NoStop
	case "line":
		return Int(f.Line), NoStop
	case "col":
		return Int(f.Col), NoStop
	}
	return ev.raise(AttributeFailure, expr.Pos(), "Property '%s' not found on error value", expr.Method)
}

func (ev *Evaluator) callStringMember(s Str, expr *MethodCallExpr, scope map[string]Value) (Value, Stop) {
	args, stop := ev.evalArgs(expr.Args, scope)
	if stop != NoStop {
		return args[0], stop
	}
	at := expr.Pos()
	switch expr.Method {
	case "length", "size":
		return Int(len([]rune(string(s)))), NoStop
	case "upper":
		return Str(strings.ToUpper(string(s))), NoStop
	case "lower":
		return Str(strings.ToLower(string(s))), NoStop
	case "trim":
		return Str(strings.TrimSpace(string(s))), NoStop
	case "split":
		sep := " "
		if len(args) == 1 {
			arg, ok := args[0].(Str)
			if !ok {
				return ev.raise(TypeFailure, at, "split() separator must be string, got %s", args[0].TypeName())
			}
			sep = string(arg)
		}
		parts := strings.Split(string(s), sep)
		elems := make([]Value, len(parts))
		for i, p := range parts {
			elems[i] = Str(p)
		}
		return &Array{Elems: elems}, NoStop
	case "contains":
		if len(args) != 1 {
			return ev.raise(ValueFailure, at, "contains() expects 1 argument, got %d", len(args))
		}
		sub, ok := args[0].(Str)
		if !ok {
			return ev.raise(TypeFailure, at, "contains() argument must be string, got %s", args[0].TypeName())
		}
		return Bool(strings.Contains(string(s), string(sub))), NoStop
	case "startsWith":
		if len(args) != 1 {
			return ev.raise(ValueFailure, at, "startsWith() expects 1 argument, got %d", len(args))
		}
		sub, ok := args[0].(Str)
		if !ok {
			return ev.raise(TypeFailure, at, "startsWith() argument must be string, got %s", args[0].TypeName())
		}
		return Bool(strings.HasPrefix(string(s), string(sub))), NoStop
	case "endsWith":
		if len(args) != 1 {
			return ev.raise(ValueFailure, at, "endsWith() expects 1 argument, got %d", len(args))
		}
		sub, ok := args[0].(Str)
		if !ok {
			return ev.raise(TypeFailure, at, "endsWith() argument must be string, got %s", args[0].TypeName())
		}
		return Bool(strings.HasSuffix(string(s), string(sub))), NoStop
	case "replace":
		if len(args) != 2 {
			return ev.raise(ValueFailure, at, "replace() expects 2 arguments, got %d", len(args))
		}
		old, ok1 := args[0].(Str)
		new, ok2 := args[1].(Str)
		if !ok1 || !ok2 {
			return ev.raise(TypeFailure, at, "replace() arguments must be strings")
		}
		return Str(strings.ReplaceAll(string(s), string(old), string(new))), NoStop
	}
	return ev.raise(AttributeFailure, at, "Cannot access property '%s' on string", expr.Method)
}
