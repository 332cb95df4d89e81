package hazel

import "sort"

// NativeFunc is a Go-implemented module function.
type NativeFunc func(args []Value) (Value, *Failure)

type moduleFunc struct {
	fn    NativeFunc
	arity int
	doc   string
}

type moduleConst struct {
	value Value
	doc   string
}

// Module is a loaded module handle: named functions with optional
// declared arity and named constants. Both native modules and script
// modules loaded by the resolver present this interface.
type Module struct {
	Name   string
	funcs  map[string]moduleFunc
	consts map[string]moduleConst
}

func (*Module) TypeName() string { return "module" }

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:   name,
		funcs:  make(map[string]moduleFunc),
		consts: make(map[string]moduleConst),
	}
}

// RegisterFunc adds a function. arity < 0 disables the argument count
// check.
func (m *Module) RegisterFunc(name string, arity int, doc string, fn NativeFunc) {
	m.funcs[name] = moduleFunc{fn: fn, arity: arity, doc: doc}
}

// RegisterConst adds a constant.
func (m *Module) RegisterConst(name string, v Value, doc string) {
	m.consts[name] = moduleConst{value: v, doc: doc}
}

// Call invokes a module function. An unknown name is a Name failure;
// an argument count differing from a declared arity is a Value failure.
func (m *Module) Call(name string, args []Value) (Value, *Failure) {
	f, ok := m.funcs[name]
	if !ok {
		return nil, NewFailuref(NameFailure, 0, 0, "Function '%s' not found in module '%s'", name, m.Name)
	}
	if f.arity >= 0 && len(args) != f.arity {
		return nil, NewFailuref(ValueFailure, 0, 0, "Function '%s.%s' expects %d arguments, got %d", m.Name, name, f.arity, len(args))
	}
	return f.fn(args)
}

// Constant returns a module constant; an unknown name is an Attribute
// failure.
func (m *Module) Constant(name string) (Value, *Failure) {
	c, ok := m.consts[name]
	if !ok {
		return nil, NewFailuref(AttributeFailure, 0, 0, "Constant '%s' not found in module '%s'", name, m.Name)
	}
	return c.value, nil
}

// HasConstant reports whether the module defines the named constant.
func (m *Module) HasConstant(name string) bool {
	_, ok := m.consts[name]
	return ok
}

// Functions lists the module's function names, sorted.
func (m *Module) Functions() []string {
	names := make([]string, 0, len(m.funcs))
	for name := range m.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Constants lists the module's constant names, sorted.
func (m *Module) Constants() []string {
	names := make([]string, 0, len(m.consts))
	for name := range m.consts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
