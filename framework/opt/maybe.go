package opt

import "fmt"

// Maybe is an optional value: either a defined value of type V, or nothing.
// The zero value is the undefined state.
type Maybe[V any] struct {
	defined bool
	value   V
}

// Some returns a Maybe holding the given value.
func Some[V any](value V) Maybe[V] {
	return Maybe[V]{defined: true, value: value}
}

// None returns an undefined Maybe.
func None[V any]() Maybe[V] { return Maybe[V]{} }

// IsDefined returns true if the Maybe has a value.
func (m Maybe[V]) IsDefined() bool { return m.defined }

// Value returns the value, or the zero value for the type if undefined.
func (m Maybe[V]) Value() V { return m.value }

// String returns the value's own String() if it has one, its "%v" formatting
// otherwise, or "[none]" if undefined.
func (m Maybe[V]) String() string {
	if !m.defined {
		return "[none]"
	}
	var v interface{} = m.value
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", m.value)
}
