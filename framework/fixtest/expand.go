package fixtest

import (
	"strings"

	"github.com/fixturelab/fixture-harness/framework/opt"
)

// TestDefinition is a declared test, before expansion. Fixtures lists the keys
// the body requires, in the order it wants them bound.
type TestDefinition struct {
	Name     string
	Fixtures []FixtureKey
	Body     func(*T)

	// ExpectFailure inverts the meaning of the body's outcome: a failing body
	// becomes an expected failure (success), a passing body becomes an
	// unexpected success (failure).
	ExpectFailure bool

	// SkipReason, when defined, marks the definition ignored; all its expanded
	// cases report Skipped without resolving any fixture.
	SkipReason opt.Maybe[string]
}

// Binding records the concrete parameter value chosen for one matrix fixture in
// one expanded case.
type Binding struct {
	Key   FixtureKey
	Param ParamValue
}

// TestCase is one fully concrete, runnable unit: a definition plus one binding
// per parametrized fixture in its transitive dependency set.
type TestCase struct {
	ID       TestID
	Def      TestDefinition
	Closure  []FixtureKey
	Bindings []Binding
}

// Name returns the human-readable case identifier, e.g. "test_x[p=1]".
func (c TestCase) Name() string {
	if len(c.ID) < 2 {
		return c.ID.String()
	}
	return c.ID[0] + "[" + strings.Join(c.ID[1:], "/") + "]"
}

func (c TestCase) binding(key FixtureKey) (ParamValue, bool) {
	for _, b := range c.Bindings {
		if b.Key == key {
			return b.Param, true
		}
	}
	return ParamValue{}, false
}

// ExpandCases turns each definition into one or more concrete cases by taking
// the cross product of the parameter domains of every matrix fixture in its
// transitive dependency set. Emitted case order follows the declared domain
// order lexicographically (the first parametrized fixture varies slowest), so
// repeated collections produce identical, stable case identifiers.
func ExpandCases(g *Graph, defs []TestDefinition) []TestCase {
	var cases []TestCase
	for _, def := range defs {
		closure := g.DefinitionClosure(def)

		var paramKeys []FixtureKey
		var domains [][]ParamValue
		for _, key := range closure {
			if spec, ok := g.registry.Lookup(key); ok && spec.Parametrized() {
				paramKeys = append(paramKeys, key)
				domains = append(domains, spec.Params)
			}
		}

		if len(paramKeys) == 0 {
			cases = append(cases, TestCase{
				ID:      TestID{def.Name},
				Def:     def,
				Closure: closure,
			})
			continue
		}

		for _, combo := range crossProduct(domains) {
			bindings := make([]Binding, 0, len(paramKeys))
			labels := make([]string, 0, len(paramKeys))
			for i, key := range paramKeys {
				bindings = append(bindings, Binding{Key: key, Param: combo[i]})
				labels = append(labels, key.String()+"="+combo[i].Label)
			}
			cases = append(cases, TestCase{
				ID:       TestID{def.Name, strings.Join(labels, "|")},
				Def:      def,
				Closure:  closure,
				Bindings: bindings,
			})
		}
	}
	return cases
}

// crossProduct enumerates every combination of one value per domain, first
// domain varying slowest.
func crossProduct(domains [][]ParamValue) [][]ParamValue {
	total := 1
	for _, d := range domains {
		total *= len(d)
	}
	ret := make([][]ParamValue, 0, total)
	indexes := make([]int, len(domains))
	for {
		combo := make([]ParamValue, len(domains))
		for i, d := range domains {
			combo[i] = d[indexes[i]]
		}
		ret = append(ret, combo)

		pos := len(domains) - 1
		for pos >= 0 {
			indexes[pos]++
			if indexes[pos] < len(domains[pos]) {
				break
			}
			indexes[pos] = 0
			pos--
		}
		if pos < 0 {
			return ret
		}
	}
}
