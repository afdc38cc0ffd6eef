package fixtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nullCtor(deps *FixtureDeps) (interface{}, error) { return nil, nil }

func TestFixtureKeyString(t *testing.T) {
	assert.Equal(t, "db", Key("db").String())
	assert.Equal(t, "stringify<db>", FixtureKey{Name: "stringify", TypeArg: "db"}.String())
}

func TestNewFixtureDefaults(t *testing.T) {
	spec, err := NewFixture("db", nullCtor)
	require.NoError(t, err)
	assert.Equal(t, Key("db"), spec.Key)
	assert.Equal(t, ScopeFresh, spec.Scope)
	assert.Nil(t, spec.Deps)
	assert.False(t, spec.Parametrized())
}

func TestNewFixtureOptions(t *testing.T) {
	spec, err := NewFixture("db", nullCtor,
		WithScope(ScopeGlobal),
		WithDeps(Key("config"), Key("logger")),
		WithProvides("storage"),
	)
	require.NoError(t, err)
	assert.Equal(t, ScopeGlobal, spec.Scope)
	assert.Equal(t, []FixtureKey{Key("config"), Key("logger")}, spec.Deps)
	assert.Equal(t, []string{"storage"}, spec.Provides)
}

func TestWithParamsImpliesMatrixScope(t *testing.T) {
	spec, err := NewFixture("port", nullCtor, WithParams(1, 5))
	require.NoError(t, err)
	assert.Equal(t, ScopeMatrix, spec.Scope)
	require.Len(t, spec.Params, 2)
	assert.Equal(t, "1", spec.Params[0].Label)
	assert.Equal(t, 5, spec.Params[1].Value)
}

func TestWithParamsKeepsMatrixUnique(t *testing.T) {
	spec, err := NewFixture("port", nullCtor, WithScope(ScopeMatrixUnique), WithParams(1, 5))
	require.NoError(t, err)
	assert.Equal(t, ScopeMatrixUnique, spec.Scope)
}

func TestNewFixtureValidation(t *testing.T) {
	_, err := NewFixture("", nullCtor)
	assert.Error(t, err)

	_, err = NewFixture("x", nil)
	assert.Error(t, err)

	_, err = NewFixture("x", nullCtor, WithScope(ScopeMatrix))
	assert.Error(t, err, "matrix scope requires a parameter domain")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	spec, err := NewFixture("db", nullCtor)
	require.NoError(t, err)
	require.NoError(t, reg.Register(spec))
	assert.Error(t, reg.Register(spec))
}

func TestRegistryLookupAndKeys(t *testing.T) {
	reg := NewRegistry()
	a, _ := NewFixture("a", nullCtor)
	b, _ := NewFixture("b", nullCtor)
	require.NoError(t, reg.Register(a))
	require.NoError(t, reg.Register(b))

	got, ok := reg.Lookup(Key("a"))
	require.True(t, ok)
	assert.Equal(t, Key("a"), got.Key)

	_, ok = reg.Lookup(Key("c"))
	assert.False(t, ok)

	assert.Equal(t, []FixtureKey{Key("a"), Key("b")}, reg.Keys())
}

func TestTemplateBindProducesDistinctKeys(t *testing.T) {
	tmpl := Template{
		Name:     "stringify",
		Scope:    ScopeFresh,
		Requires: "printable",
		Constructor: func(deps *FixtureDeps) (interface{}, error) {
			return deps.Dep(0), nil
		},
	}
	sa := tmpl.Bind(Key("a"))
	sb := tmpl.Bind(Key("b"))
	assert.NotEqual(t, sa.Key, sb.Key)
	assert.Equal(t, "stringify<a>", sa.Key.String())
	assert.Equal(t, []FixtureKey{Key("a")}, sa.Deps)
	assert.Equal(t, "printable", sa.Requires)
}

func TestRegistryAllowsRepeatedTemplateInstantiation(t *testing.T) {
	reg := NewRegistry()
	tmpl := Template{Name: "stringify", Constructor: nullCtor}
	require.NoError(t, reg.Register(tmpl.Bind(Key("a"))))
	// A second call site binding the same combination is a no-op, not an error.
	require.NoError(t, reg.Register(tmpl.Bind(Key("a"))))
	assert.Len(t, reg.Keys(), 1)
}
