package fixtest

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/fixturelab/fixture-harness/framework"
	"github.com/fixturelab/fixture-harness/framework/helpers"
)

// T implements helpers.TestContext, so assertion helpers written against that
// interface (including testify's) work on a test scope as well as a *testing.T.
var _ helpers.TestContext = (*T)(nil)

// T represents the scope of one executing test case. It is very similar to Go's
// testing.T type, and additionally gives the body access to its resolved
// fixture values and parameter bindings.
type T struct {
	testCase    TestCase
	fixtures    map[FixtureKey]interface{}
	debugLogger *framework.CapturingLogger
	logger      TestLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	cleanups    []func()
}

// ID returns the full identifier of the current case.
func (t *T) ID() TestID {
	return t.testCase.ID
}

// Fixture returns the resolved value of a fixture in this case's dependency
// set. Requesting a fixture the case does not depend on fails the test.
func (t *T) Fixture(key FixtureKey) interface{} {
	v, ok := t.fixtures[key]
	if !ok {
		t.Errorf("test body requested fixture %q which is not in the case's dependency set", key)
		t.FailNow()
	}
	return v
}

// Param returns the parameter value bound to a matrix fixture for this expanded
// case.
func (t *T) Param(key FixtureKey) interface{} {
	p, ok := t.testCase.binding(key)
	if !ok {
		t.Errorf("test body requested parameter of %q which is not bound in this case", key)
		t.FailNow()
	}
	return p.Value
}

// Errorf reports a test failure without terminating the body. It is part of
// this type's implementation of assert.TestingT, so assertion helpers can be
// called against it.
func (t *T) Errorf(format string, args ...interface{}) {
	t.failed = true
	err := fmt.Errorf(format, args...)
	t.errors = append(t.errors, err)
	t.logger.TestError(t.testCase.ID, err)
}

// FailNow terminates the body immediately and marks the case as failed.
func (t *T) FailNow() {
	panic(t)
}

// Skip terminates the body immediately and marks the case as skipped.
func (t *T) Skip() {
	t.skipped = true
	panic(t)
}

// SkipWithReason is equivalent to Skip but provides a message.
func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Debug writes a message to the captured output for this case.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger writing to the captured output for this case.
// The captured output is passed to TestLogger.TestFinished when the case ends;
// the runner decides whether to display it.
func (t *T) DebugLogger() framework.Logger {
	return t.debugLogger
}

// Defer schedules a cleanup function which runs when the body exits for any
// reason, before the case's fixtures are torn down. Unlike a Go defer
// statement, Defer can be used from within helper functions.
func (t *T) Defer(cleanupFn func()) {
	t.cleanups = append(t.cleanups, cleanupFn)
}

// runBody executes the case body inside the abnormal-termination boundary:
// a panic is converted into a recorded failure, FailNow/Skip sentinels are
// honored, and body cleanups run in reverse order no matter how the body ended.
func (t *T) runBody(body func(*T)) {
	defer func() {
		if r := recover(); r != nil {
			if t.skipped {
				return
			}
			t.failed = true
			var addError error
			if _, ok := r.(*T); ok {
				if len(t.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				t.errors = append(t.errors, addError)
				t.logger.TestError(t.testCase.ID, addError)
			}
		}
	}()
	defer func() {
		for i := len(t.cleanups) - 1; i >= 0; i-- {
			t.cleanups[i]()
		}
	}()

	body(t)
}
