package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaybeDefined(t *testing.T) {
	m := Some(3)
	assert.True(t, m.IsDefined())
	assert.Equal(t, 3, m.Value())
	assert.Equal(t, "3", m.String())
}

func TestMaybeUndefined(t *testing.T) {
	m := None[int]()
	assert.False(t, m.IsDefined())
	assert.Equal(t, 0, m.Value())
	assert.Equal(t, "[none]", m.String())
}

func TestMaybeZeroValueIsUndefined(t *testing.T) {
	var m Maybe[string]
	assert.False(t, m.IsDefined())
	assert.Equal(t, "", m.Value())
}

func TestMaybeStringUsesStringer(t *testing.T) {
	assert.Equal(t, "a/b", Some(stringerVal{}).String())
}

type stringerVal struct{}

func (stringerVal) String() string { return "a/b" }
