package fixtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRegister(t *testing.T, reg *Registry, name string, options ...FixtureOption) FixtureKey {
	t.Helper()
	spec, err := NewFixture(name, nullCtor, options...)
	require.NoError(t, err)
	require.NoError(t, reg.Register(spec))
	return spec.Key
}

func TestBuildGraphUnknownFixture(t *testing.T) {
	reg := NewRegistry()
	mustRegister(t, reg, "a", WithDeps(Key("missing")))

	_, err := BuildGraph(reg, nil)
	var unknown UnknownFixtureError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, Key("missing"), unknown.Key)
	assert.Equal(t, "a", unknown.RequiredBy)
}

func TestBuildGraphUnknownFixtureInDefinition(t *testing.T) {
	reg := NewRegistry()
	defs := []TestDefinition{{Name: "test_x", Fixtures: []FixtureKey{Key("nope")}}}

	_, err := BuildGraph(reg, defs)
	var unknown UnknownFixtureError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "test_x", unknown.RequiredBy)
}

func TestBuildGraphReportsCycle(t *testing.T) {
	reg := NewRegistry()
	mustRegister(t, reg, "a", WithDeps(Key("b")))
	mustRegister(t, reg, "b", WithDeps(Key("c")))
	mustRegister(t, reg, "c", WithDeps(Key("a")))

	_, err := BuildGraph(reg, nil)
	var cyclic CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
	require.Len(t, cyclic.Cycle, 4)
	assert.Equal(t, cyclic.Cycle[0], cyclic.Cycle[3])
	assert.Contains(t, cyclic.Error(), "->")
}

func TestBuildGraphCapabilityMismatch(t *testing.T) {
	reg := NewRegistry()
	mustRegister(t, reg, "plain")
	tmpl := Template{Name: "stringify", Requires: "printable", Constructor: nullCtor}
	require.NoError(t, reg.Register(tmpl.Bind(Key("plain"))))

	_, err := BuildGraph(reg, nil)
	var mismatch TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "printable", mismatch.Expected)
	assert.Equal(t, Key("plain"), mismatch.Arg)
}

func TestBuildGraphCapabilitySatisfied(t *testing.T) {
	reg := NewRegistry()
	mustRegister(t, reg, "fancy", WithProvides("printable", "comparable"))
	tmpl := Template{Name: "stringify", Requires: "printable", Constructor: nullCtor}
	require.NoError(t, reg.Register(tmpl.Bind(Key("fancy"))))

	_, err := BuildGraph(reg, nil)
	assert.NoError(t, err)
}

func TestFixtureClosureDependenciesFirst(t *testing.T) {
	reg := NewRegistry()
	mustRegister(t, reg, "a")
	mustRegister(t, reg, "b", WithDeps(Key("a")))
	mustRegister(t, reg, "c", WithDeps(Key("b"), Key("a")))

	g, err := BuildGraph(reg, nil)
	require.NoError(t, err)
	assert.Equal(t, []FixtureKey{Key("a")}, g.FixtureClosure(Key("a")))
	assert.Equal(t, []FixtureKey{Key("a"), Key("b")}, g.FixtureClosure(Key("b")))
	assert.Equal(t, []FixtureKey{Key("a"), Key("b"), Key("c")}, g.FixtureClosure(Key("c")))
}

func TestDefinitionClosureMergesWithoutDuplicates(t *testing.T) {
	reg := NewRegistry()
	mustRegister(t, reg, "a")
	mustRegister(t, reg, "b", WithDeps(Key("a")))
	mustRegister(t, reg, "c", WithDeps(Key("a")))
	def := TestDefinition{Name: "test_x", Fixtures: []FixtureKey{Key("b"), Key("c")}}

	g, err := BuildGraph(reg, []TestDefinition{def})
	require.NoError(t, err)
	assert.Equal(t, []FixtureKey{Key("a"), Key("b"), Key("c")}, g.DefinitionClosure(def))
}
