package fixtest

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fixturelab/fixture-harness/framework"
	"github.com/fixturelab/fixture-harness/framework/helpers"
	o "github.com/fixturelab/fixture-harness/framework/opt"
)

// JUnitTestLogger accumulates per-case status and writes a JUnit XML report at
// the end of the run, one testsuite per test definition.
type JUnitTestLogger struct {
	filePath string
	filters  RegexFilters
	testIDs  []TestID // this slice preserves the order that the cases were started in
	tests    map[string]jUnitTestStatus
	lock     sync.Mutex
}

type jUnitTestStatus struct {
	failures  []error
	skipped   o.Maybe[string]
	outcome   Outcome
	output    string
	startTime time.Time
	duration  time.Duration
}

// Struct definitions for the JUnit XML schema - see https://github.com/jstemmer/go-junit-report

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Time       string             `xml:"time,attr"`
	Name       string             `xml:"name,attr"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName     xml.Name             `xml:"testcase"`
	Classname   string               `xml:"classname,attr"`
	Name        string               `xml:"name,attr"`
	Time        string               `xml:"time,attr"`
	SkipMessage *jUnitXMLSkipMessage `xml:"skipped,omitempty"`
	Failure     *jUnitXMLFailure     `xml:"failure,omitempty"`
}

type jUnitXMLSkipMessage struct {
	Message string `xml:"message,attr"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

func NewJUnitTestLogger(filePath string, filters RegexFilters) *JUnitTestLogger {
	return &JUnitTestLogger{
		filePath: filePath,
		filters:  filters,
		tests:    make(map[string]jUnitTestStatus),
	}
}

func (j *JUnitTestLogger) TestStarted(id TestID) {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.testIDs = append(j.testIDs, id)
	j.tests[id.String()] = jUnitTestStatus{
		startTime: time.Now(),
	}
}

func (j *JUnitTestLogger) TestError(id TestID, err error) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.tests[id.String()]
	status.failures = append(status.failures, err)
	j.tests[id.String()] = status
}

func (j *JUnitTestLogger) TestFinished(id TestID, result CaseResult, debugOutput framework.CapturedOutput) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.tests[id.String()]
	status.output = debugOutput.ToString("")
	status.duration = time.Since(status.startTime)
	status.outcome = result.Outcome
	j.tests[id.String()] = status
}

func (j *JUnitTestLogger) TestSkipped(id TestID, reason string) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status, seen := j.tests[id.String()]
	if !seen {
		j.testIDs = append(j.testIDs, id)
	}
	status.skipped = o.Some(reason)
	status.outcome = OutcomeSkipped
	j.tests[id.String()] = status
}

func (j *JUnitTestLogger) EndLog(results Results) error {
	fmt.Printf("Writing JUnit data to %s\n", j.filePath)

	var doc jUnitXMLDocument

	properties := []jUnitXMLProperty{
		{
			Name:  "tests.filter.mustMatch",
			Value: j.filters.MustMatch.String(),
		},
		{
			Name:  "tests.filter.mustNotMatch",
			Value: j.filters.MustNotMatch.String(),
		},
	}

	for _, topLevelID := range getTopLevelIDs(j.testIDs) {
		suite := jUnitXMLTestSuite{
			Name:       fmt.Sprintf("fixture harness tests: %s", topLevelID),
			Properties: properties,
		}
		suiteTotalDuration := time.Duration(0)
		for _, testID := range j.testIDs {
			if len(testID) == 0 || testID[0] != topLevelID {
				continue
			}
			status := j.tests[testID.String()]

			suite.Tests++
			if !status.outcome.Success() {
				suite.Failures++
			}
			suiteTotalDuration += status.duration

			testCase := jUnitXMLTestCase{
				Name: testID.String(),
				Time: jUnitDurationString(status.duration),
			}
			if status.outcome == OutcomeExpectedFailure {
				testCase.Name += " (expected failure)"
			}
			if status.skipped.IsDefined() {
				testCase.SkipMessage = &jUnitXMLSkipMessage{Message: status.skipped.Value()}
			}
			if !status.outcome.Success() {
				var messages []string
				for _, e := range status.failures {
					messages = append(messages, e.Error())
				}
				testCase.Failure = &jUnitXMLFailure{
					Message:  strings.Join(messages, "\n"),
					Contents: status.output,
				}
			}

			suite.TestCases = append(suite.TestCases, testCase)
		}
		suite.Time = jUnitDurationString(suiteTotalDuration)
		doc.Suites = append(doc.Suites, suite)
	}

	bytes, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	bytes = append(bytes, '\n')

	return os.WriteFile(j.filePath, bytes, 0644) //nolint:gosec
}

func getTopLevelIDs(allIDs []TestID) []string {
	var ret []string
	for _, testID := range allIDs {
		if len(testID) != 0 && !helpers.SliceContains(testID[0], ret) {
			ret = append(ret, testID[0])
		}
	}
	return ret
}

func jUnitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
