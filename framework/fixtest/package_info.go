// Package fixtest is the test-execution engine of the fixture harness: it owns the
// fixture registry, the dependency graph validation, matrix expansion of parametrized
// fixtures into concrete test cases, the scope store that materializes and tears down
// fixture values, and the two-phase runner that executes cases and reports outcomes.
package fixtest
