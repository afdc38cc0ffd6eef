package fixtest

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/fixturelab/fixture-harness/framework"
	"github.com/fixturelab/fixture-harness/framework/helpers"
)

var consoleTestErrorColor = color.New(color.FgYellow)              //nolint:gochecknoglobals
var consoleTestFailedColor = color.New(color.FgRed)                //nolint:gochecknoglobals
var consoleTestSkippedColor = color.New(color.Faint, color.FgBlue) //nolint:gochecknoglobals
var consoleTestXFailColor = color.New(color.Faint, color.FgGreen)  //nolint:gochecknoglobals
var consoleDebugOutputColor = color.New(color.Faint)               //nolint:gochecknoglobals
var allTestsPassedColor = color.New(color.FgGreen)                 //nolint:gochecknoglobals

// TestLogger receives live status information during a run.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, result CaseResult, debugOutput framework.CapturedOutput)
	TestSkipped(id TestID, reason string)
	EndLog(results Results) error
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                                        {}
func (n nullTestLogger) TestError(TestID, error)                                   {}
func (n nullTestLogger) TestFinished(TestID, CaseResult, framework.CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                                {}
func (n nullTestLogger) EndLog(Results) error                                      { return nil }

// NullTestLogger returns a TestLogger that discards everything.
func NullTestLogger() TestLogger { return nullTestLogger{} }

// ConsoleTestLogger writes live progress to standard output.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c ConsoleTestLogger) TestStarted(id TestID) {
	fmt.Printf("[%s]\n", id)
}

func (c ConsoleTestLogger) TestError(id TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		_, _ = consoleTestErrorColor.Printf("  %s\n", line)
	}
}

func (c ConsoleTestLogger) TestFinished(id TestID, result CaseResult, debugOutput framework.CapturedOutput) {
	switch result.Outcome {
	case OutcomeFailed:
		_, _ = consoleTestFailedColor.Printf("  FAILED: %s\n", id)
	case OutcomeUnexpectedSuccess:
		_, _ = consoleTestFailedColor.Printf("  XPASS (unexpected success): %s\n", id)
	case OutcomeExpectedFailure:
		_, _ = consoleTestXFailColor.Printf("  XFAIL (expected failure): %s\n", id)
	}
	failed := !result.Outcome.Success()
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		_, _ = consoleDebugOutputColor.Println(debugOutput.ToString("    DEBUG "))
	}
}

func (c ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	suffix := helpers.IfElse(reason == "", "", " ("+reason+")")
	_, _ = consoleTestSkippedColor.Printf("  SKIPPED: %s%s\n", id, suffix)
}

func (c ConsoleTestLogger) EndLog(Results) error { return nil }

// MultiTestLogger fans every event out to several loggers.
type MultiTestLogger struct {
	Loggers []TestLogger
}

func (m *MultiTestLogger) TestStarted(id TestID) {
	for _, l := range m.Loggers {
		l.TestStarted(id)
	}
}

func (m *MultiTestLogger) TestError(id TestID, err error) {
	for _, l := range m.Loggers {
		l.TestError(id, err)
	}
}

func (m *MultiTestLogger) TestFinished(id TestID, result CaseResult, debugOutput framework.CapturedOutput) {
	for _, l := range m.Loggers {
		l.TestFinished(id, result, debugOutput)
	}
}

func (m *MultiTestLogger) TestSkipped(id TestID, reason string) {
	for _, l := range m.Loggers {
		l.TestSkipped(id, reason)
	}
}

func (m *MultiTestLogger) EndLog(results Results) error {
	var firstErr error
	for _, l := range m.Loggers {
		if err := l.EndLog(results); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PrintResults writes the end-of-run summary to the console.
func PrintResults(results Results) {
	fmt.Printf("%d passed, %d failed, %d expected failures, %d skipped\n",
		results.Count(OutcomePassed)+results.Count(OutcomeExpectedFailure),
		results.Count(OutcomeFailed)+results.Count(OutcomeUnexpectedSuccess),
		results.Count(OutcomeExpectedFailure),
		results.Count(OutcomeSkipped))
	for _, err := range results.TeardownErrors {
		_, _ = consoleTestErrorColor.Printf("warning: %s\n", err)
	}
	if results.OK() {
		_, _ = allTestsPassedColor.Println("All tests passed")
	} else {
		_, _ = consoleTestFailedColor.Fprintf(os.Stderr, "FAILED TESTS (%d):\n", len(results.Failures))
		for _, f := range results.Failures {
			_, _ = consoleTestFailedColor.Fprintf(os.Stderr, "  * %s\n", f.ID)
		}
	}
}
