package fixtest

import (
	"fmt"
	"strings"
)

// CyclicDependencyError is a structural error reported at collection time when the
// fixture dependency relation contains a cycle. It is fatal to the whole run.
type CyclicDependencyError struct {
	Cycle []FixtureKey // the cycle path, first key repeated at the end
}

func (e CyclicDependencyError) Error() string {
	names := make([]string, 0, len(e.Cycle))
	for _, k := range e.Cycle {
		names = append(names, k.String())
	}
	return fmt.Sprintf("cyclic fixture dependency: %s", strings.Join(names, " -> "))
}

// UnknownFixtureError is a structural error reported at collection time when a
// dependency references a fixture key with no registered definition.
type UnknownFixtureError struct {
	Key        FixtureKey
	RequiredBy string // fixture key or test definition name that referenced it
}

func (e UnknownFixtureError) Error() string {
	return fmt.Sprintf("unknown fixture %q required by %q", e.Key, e.RequiredBy)
}

// TypeMismatchError is a structural error reported at collection time when a
// generic fixture's capability bound is not satisfied by the fixture it was
// instantiated over.
type TypeMismatchError struct {
	Key      FixtureKey // the generic instantiation
	Arg      FixtureKey // the fixture supplied as its argument
	Expected string     // the required capability
	Found    []string   // capabilities the argument actually provides
}

func (e TypeMismatchError) Error() string {
	found := "none"
	if len(e.Found) > 0 {
		found = strings.Join(e.Found, ", ")
	}
	return fmt.Sprintf("fixture %q requires capability %q from %q, but it provides: %s",
		e.Key, e.Expected, e.Arg, found)
}

// FixtureConstructionError reports that a fixture's constructor failed (or
// panicked). Key names the originating fixture: when a dependency fails, the
// same error propagates unchanged through every dependent fixture and case so
// error messages name the root cause.
type FixtureConstructionError struct {
	Key   FixtureKey
	Cause error
}

func (e FixtureConstructionError) Error() string {
	return fmt.Sprintf("fixture %q failed during setup: %v", e.Key, e.Cause)
}

func (e FixtureConstructionError) Unwrap() error { return e.Cause }

// TeardownError reports that a fixture's teardown callback failed (or panicked).
// It is reported but never blocks other pending teardowns or later cases.
type TeardownError struct {
	Key   FixtureKey
	Cause error
}

func (e TeardownError) Error() string {
	return fmt.Sprintf("fixture %q failed during teardown: %v", e.Key, e.Cause)
}

func (e TeardownError) Unwrap() error { return e.Cause }
