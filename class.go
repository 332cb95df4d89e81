package hazel

// Class is a hazel class: a named, ordered set of methods and an
// optional parent named by ParentName. Parent links resolve through the
// evaluator's class table at call time, so declaration order in the
// document does not matter.
type Class struct {
	Name       string
	Methods    map[string]*Function
	ParentName string
}

func (*Class) TypeName() string { return "class" }

// constructorAlias returns the alternate spelling of a constructor
// name. init and __init__ name the same method in either direction.
func constructorAlias(name string) string {
	switch name {
	case "init":
		return "__init__"
	case "__init__":
		return "init"
	}
	return ""
}

// method looks up a method on the class itself, honoring the
// constructor alias. It does not walk the parent chain.
func (c *Class) method(name string) *Function {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if alt := constructorAlias(name); alt != "" {
		if m, ok := c.Methods[alt]; ok {
			return m
		}
	}
	return nil
}

// Object is an instance of a Class with its own attribute map.
type Object struct {
	Name  string
	Class *Class
	Attrs map[string]Value
}

func (*Object) TypeName() string { return "object" }

// NewObject creates an instance of class without running its
// constructor.
func NewObject(name string, class *Class) *Object {
	return &Object{Name: name, Class: class, Attrs: make(map[string]Value)}
}
