package fixtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectNames(cases []TestCase) []string {
	ret := make([]string, 0, len(cases))
	for _, c := range cases {
		ret = append(ret, c.ID.String())
	}
	return ret
}

func TestExpandUnparametrizedDefinition(t *testing.T) {
	reg := NewRegistry()
	mustRegister(t, reg, "db")
	defs := []TestDefinition{{Name: "test_x", Fixtures: []FixtureKey{Key("db")}}}

	g, err := BuildGraph(reg, defs)
	require.NoError(t, err)
	cases := ExpandCases(g, defs)
	require.Len(t, cases, 1)
	assert.Equal(t, TestID{"test_x"}, cases[0].ID)
	assert.Equal(t, "test_x", cases[0].Name())
	assert.Empty(t, cases[0].Bindings)
}

func TestExpandSingleDomain(t *testing.T) {
	reg := NewRegistry()
	mustRegister(t, reg, "p", WithParams(1, 5))
	defs := []TestDefinition{{Name: "test_x", Fixtures: []FixtureKey{Key("p")}}}

	g, err := BuildGraph(reg, defs)
	require.NoError(t, err)
	cases := ExpandCases(g, defs)
	require.Len(t, cases, 2)
	assert.Equal(t, []string{"test_x/p=1", "test_x/p=5"}, collectNames(cases))
	assert.Equal(t, "test_x[p=1]", cases[0].Name())
	assert.Equal(t, "test_x[p=5]", cases[1].Name())
	assert.Equal(t, 1, cases[0].Bindings[0].Param.Value)
	assert.Equal(t, 5, cases[1].Bindings[0].Param.Value)
}

func TestExpandCrossProductOrdering(t *testing.T) {
	reg := NewRegistry()
	mustRegister(t, reg, "n", WithParams(1, 2, 3))
	mustRegister(t, reg, "s", WithParams("hello", "world"))
	defs := []TestDefinition{{Name: "t", Fixtures: []FixtureKey{Key("n"), Key("s")}}}

	g, err := BuildGraph(reg, defs)
	require.NoError(t, err)
	cases := ExpandCases(g, defs)
	assert.Equal(t, []string{
		"t/n=1|s=hello",
		"t/n=1|s=world",
		"t/n=2|s=hello",
		"t/n=2|s=world",
		"t/n=3|s=hello",
		"t/n=3|s=world",
	}, collectNames(cases))
}

func TestExpandTransitiveParametrization(t *testing.T) {
	// The definition only names "derived", but "derived" depends on a matrix
	// fixture, so the definition still expands over its domain.
	reg := NewRegistry()
	mustRegister(t, reg, "base", WithParams(1, 5))
	mustRegister(t, reg, "derived", WithDeps(Key("base")))
	defs := []TestDefinition{{Name: "test_x", Fixtures: []FixtureKey{Key("derived")}}}

	g, err := BuildGraph(reg, defs)
	require.NoError(t, err)
	cases := ExpandCases(g, defs)
	require.Len(t, cases, 2)
	assert.Equal(t, []string{"test_x/base=1", "test_x/base=5"}, collectNames(cases))
}

func TestExpandIsStableAcrossCollections(t *testing.T) {
	reg := NewRegistry()
	mustRegister(t, reg, "n", WithParams(2, 1))
	defs := []TestDefinition{{Name: "t", Fixtures: []FixtureKey{Key("n")}}}

	g, err := BuildGraph(reg, defs)
	require.NoError(t, err)
	first := collectNames(ExpandCases(g, defs))
	second := collectNames(ExpandCases(g, defs))
	assert.Equal(t, first, second)
	// Domain order is as declared, not sorted.
	assert.Equal(t, []string{"t/n=2", "t/n=1"}, first)
}

func TestNamedParamLabels(t *testing.T) {
	reg := NewRegistry()
	spec, err := NewFixture("cfg", nullCtor,
		WithParamValues(NamedParam("small", map[string]int{"n": 1}), NamedParam("big", map[string]int{"n": 100})))
	require.NoError(t, err)
	require.NoError(t, reg.Register(spec))
	defs := []TestDefinition{{Name: "t", Fixtures: []FixtureKey{Key("cfg")}}}

	g, err := BuildGraph(reg, defs)
	require.NoError(t, err)
	cases := ExpandCases(g, defs)
	assert.Equal(t, []string{"t/cfg=small", "t/cfg=big"}, collectNames(cases))
}
