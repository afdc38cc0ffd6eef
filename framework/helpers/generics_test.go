package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIfElse(t *testing.T) {
	assert.Equal(t, "a", IfElse(true, "a", "b"))
	assert.Equal(t, "b", IfElse(false, "a", "b"))
}

func TestSliceContains(t *testing.T) {
	assert.True(t, SliceContains(2, []int{1, 2, 3}))
	assert.False(t, SliceContains(4, []int{1, 2, 3}))
	assert.False(t, SliceContains(4, nil))
}
