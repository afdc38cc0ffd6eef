package fixtest

import "fmt"

// FixtureKey is the unique identity of a fixture definition. Name is the declared
// fixture name. TypeArg is empty for ordinary fixtures; for an instantiation of a
// generic fixture template it records the identity of the fixture the template was
// bound to, so that "Stringify<A>" and "Stringify<B>" are distinct keys.
type FixtureKey struct {
	Name    string
	TypeArg string
}

// Key is shorthand for a non-generic fixture key.
func Key(name string) FixtureKey { return FixtureKey{Name: name} }

func (k FixtureKey) String() string {
	if k.TypeArg == "" {
		return k.Name
	}
	return fmt.Sprintf("%s<%s>", k.Name, k.TypeArg)
}

// Scope determines how often a fixture's constructor runs and how long the
// resulting value is retained.
type Scope int

const (
	// ScopeFresh constructs a new value on every request. Each value is owned by
	// the single requester and torn down when that requester's case ends.
	ScopeFresh Scope = iota

	// ScopePerCase constructs at most one value per (fixture, case); every
	// requester within the case shares it. Torn down at the end of the case.
	ScopePerCase

	// ScopeGlobal constructs at most one value for the entire run; every case
	// shares it. Torn down after the last case has finished.
	ScopeGlobal

	// ScopeMatrix marks a parametrized fixture whose parameter domain is expanded
	// into independent cases. Within one expanded case it follows the per-case
	// sharing rule.
	ScopeMatrix

	// ScopeMatrixUnique is like ScopeMatrix, but within one expanded case each
	// requester gets its own instance, following the fresh rule.
	ScopeMatrixUnique
)

func (s Scope) String() string {
	switch s {
	case ScopeFresh:
		return "fresh"
	case ScopePerCase:
		return "per-case"
	case ScopeGlobal:
		return "global"
	case ScopeMatrix:
		return "matrix"
	case ScopeMatrixUnique:
		return "matrix-unique"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// parametrized reports whether this scope requires a parameter domain and is
// expanded into independent cases at collection time.
func (s Scope) parametrized() bool {
	return s == ScopeMatrix || s == ScopeMatrixUnique
}

// ParamValue is one literal value from a parametrized fixture's domain. Label is
// the stable spelling used in expanded case names.
type ParamValue struct {
	Label string
	Value interface{}
}

// Param wraps a literal value, deriving its label from the value's default
// formatting.
func Param(value interface{}) ParamValue {
	return ParamValue{Label: fmt.Sprintf("%v", value), Value: value}
}

// NamedParam wraps a literal value with an explicit label, for values whose
// default formatting would not make a readable case name.
func NamedParam(label string, value interface{}) ParamValue {
	return ParamValue{Label: label, Value: value}
}

// Params wraps a list of literal values into a parameter domain.
func Params(values ...interface{}) []ParamValue {
	ret := make([]ParamValue, 0, len(values))
	for _, v := range values {
		ret = append(ret, Param(v))
	}
	return ret
}
