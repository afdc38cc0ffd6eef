package fixtest

import (
	"sync"

	"github.com/fixturelab/fixture-harness/framework"
)

// RunConfig contains options for the entire test run.
type RunConfig struct {
	// Filter is an optional function for determining which cases to run based on
	// their identifiers. Excluded cases are reported as skipped.
	Filter Filter

	// TestLogger receives status information about each case.
	TestLogger TestLogger

	// Parallelism is the number of worker goroutines executing cases. Values
	// below 1 mean sequential execution.
	Parallelism int
}

// Plan is the immutable product of the collection phase: the validated ordered
// case list. Collection performs no side effects, so a Plan can be listed or
// discarded without any fixture ever being constructed.
type Plan struct {
	registry *Registry
	cases    []TestCase
}

// Collect validates the registry against the definitions and expands them into
// the full ordered case list. Structural errors (unknown fixture, cycle,
// capability mismatch) are fatal: they yield a nil Plan and zero runnable cases.
func Collect(registry *Registry, defs []TestDefinition) (*Plan, error) {
	graph, err := BuildGraph(registry, defs)
	if err != nil {
		return nil, err
	}
	return &Plan{
		registry: registry,
		cases:    ExpandCases(graph, defs),
	}, nil
}

// Cases returns the collected case list in its stable collection order.
func (p *Plan) Cases() []TestCase {
	return append([]TestCase(nil), p.cases...)
}

// Run executes every collected case and reports one definitive outcome per
// case. Cases may run concurrently; results keep collection order. After the
// last case, global-scope fixtures are torn down in reverse creation order.
func (p *Plan) Run(config RunConfig) Results {
	logger := config.TestLogger
	if logger == nil {
		logger = nullTestLogger{}
	}
	store := NewScopeStore(p.registry)

	caseResults := make([]CaseResult, len(p.cases))
	workers := config.Parallelism
	if workers < 1 {
		workers = 1
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				caseResults[i] = runCase(p.cases[i], store, config, logger)
			}
		}()
	}
	for i := range p.cases {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	var results Results
	results.Cases = caseResults
	for _, r := range caseResults {
		if !r.Outcome.Success() {
			results.Failures = append(results.Failures, r)
		}
	}

	store.TeardownGlobal(func(err error) {
		results.TeardownErrors = append(results.TeardownErrors, err)
	})
	return results
}

// runCase drives one case through its states: skipped cases report immediately;
// otherwise resolve the transitive fixture set, run the body, tear down
// case-scoped fixtures (always), and adjust the outcome for an expected
// failure.
func runCase(c TestCase, store *ScopeStore, config RunConfig, logger TestLogger) CaseResult {
	result := CaseResult{ID: c.ID}

	if c.Def.SkipReason.IsDefined() {
		result.Outcome = OutcomeSkipped
		logger.TestSkipped(c.ID, c.Def.SkipReason.Value())
		return result
	}
	if config.Filter != nil && !config.Filter(c.ID) {
		result.Outcome = OutcomeSkipped
		logger.TestSkipped(c.ID, "excluded by filter parameters")
		return result
	}

	logger.TestStarted(c.ID)

	t := &T{
		testCase:    c,
		fixtures:    make(map[FixtureKey]interface{}, len(c.Closure)),
		debugLogger: &framework.CapturingLogger{},
		logger:      logger,
	}
	cs := store.newCaseStore(c, t.debugLogger)

	setupFailed := false
	setupErr := resolveCaseFixtures(c, cs, t)
	if setupErr != nil {
		setupFailed = true
		result.Outcome = OutcomeFailed
		result.Errors = append(result.Errors, setupErr)
		logger.TestError(c.ID, setupErr)
	} else {
		t.runBody(c.Def.Body)
		switch {
		case t.skipped:
			result.Outcome = OutcomeSkipped
		case t.failed:
			result.Outcome = OutcomeFailed
			result.Errors = t.errors
		default:
			result.Outcome = OutcomePassed
		}
	}

	// Case-scoped teardown runs regardless of how the body ended; a failing
	// teardown is reported without changing the already-decided outcome.
	cs.teardownAll(func(err error) {
		logger.TestError(c.ID, err)
	})

	// The expect-failure inversion applies to the body's outcome only. A fixture
	// that fails to construct is infrastructure breakage, and stays Failed no
	// matter what the case expected of its body.
	if c.Def.ExpectFailure && !setupFailed && result.Outcome != OutcomeSkipped {
		switch result.Outcome {
		case OutcomeFailed:
			result.Outcome = OutcomeExpectedFailure
		case OutcomePassed:
			result.Outcome = OutcomeUnexpectedSuccess
			err := errorUnexpectedSuccess{}
			result.Errors = append(result.Errors, err)
			logger.TestError(c.ID, err)
		}
	}

	if t.skipped {
		logger.TestSkipped(c.ID, t.skipReason)
	} else {
		logger.TestFinished(c.ID, result, t.debugLogger.Output())
	}
	return result
}

// resolveCaseFixtures materializes every fixture in the case's transitive
// dependency set, dependencies first, and binds the values into the test scope.
func resolveCaseFixtures(c TestCase, cs *caseStore, t *T) error {
	for _, key := range c.Closure {
		v, err := cs.resolve(key)
		if err != nil {
			return err
		}
		t.fixtures[key] = v
	}
	return nil
}

type errorUnexpectedSuccess struct{}

func (e errorUnexpectedSuccess) Error() string {
	return "test was expected to fail but passed"
}
