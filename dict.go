package hazel

// Dict is a string-keyed mapping that remembers insertion order. Key
// iteration, rendering and for loops all follow the order in which keys
// were first set.
type Dict struct {
	keys    []string
	entries map[string]Value
}

func (*Dict) TypeName() string { return "dict" }

// NewDict creates an empty dict.
func NewDict() *Dict {
	return &Dict{entries: make(map[string]Value)}
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order. The returned slice is the
// dict's own; callers must not modify it.
func (d *Dict) Keys() []string { return d.keys }

// Get returns the value for a key.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.entries[key]
	return v, ok
}

// Set stores a value. A new key is appended to the iteration order; an
// existing key keeps its position.
func (d *Dict) Set(key string, v Value) {
	if _, ok := d.entries[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.entries[key] = v
}

// Delete removes a key, reporting whether it was present.
func (d *Dict) Delete(key string) bool {
	if _, ok := d.entries[key]; !ok {
		return false
	}
	delete(d.entries, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
	return true
}

// Values returns the values in insertion order.
func (d *Dict) Values() []Value {
	vs := make([]Value, len(d.keys))
	for i, k := range d.keys {
		vs[i] = d.entries[k]
	}
	return vs
}
