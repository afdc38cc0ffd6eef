package fixtest

import (
	"fmt"
	"strings"
)

// Outcome is the definitive result of one test case.
type Outcome int

const (
	OutcomePassed Outcome = iota
	OutcomeFailed
	OutcomeExpectedFailure
	OutcomeUnexpectedSuccess
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeFailed:
		return "failed"
	case OutcomeExpectedFailure:
		return "expected failure"
	case OutcomeUnexpectedSuccess:
		return "unexpected success"
	case OutcomeSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Success reports whether the outcome counts toward a successful run. A run
// succeeds if and only if every case's outcome is a success.
func (o Outcome) Success() bool {
	switch o {
	case OutcomePassed, OutcomeExpectedFailure, OutcomeSkipped:
		return true
	default:
		return false
	}
}

// TestID identifies a test case hierarchically: the definition name, plus the
// parameter-binding suffix for expanded cases.
type TestID []string

func (t TestID) String() string {
	return strings.Join(t, "/")
}

func (t TestID) Plus(name string) TestID {
	return append(append(TestID(nil), t...), name)
}

// CaseResult is the reported result of one case.
type CaseResult struct {
	ID      TestID
	Outcome Outcome
	Errors  []error
}

// Results accumulates the results of a whole run. Cases preserves the collection
// order of the case list regardless of execution order.
type Results struct {
	Cases    []CaseResult
	Failures []CaseResult

	// TeardownErrors holds failures from the global teardown pass after the last
	// case. They are reported but do not affect OK().
	TeardownErrors []error
}

// OK reports whether every case succeeded (passed, expected failure, or skipped).
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Count returns how many cases finished with the given outcome.
func (r Results) Count(outcome Outcome) int {
	n := 0
	for _, c := range r.Cases {
		if c.Outcome == outcome {
			n++
		}
	}
	return n
}
