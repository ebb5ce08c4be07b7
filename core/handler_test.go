package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStampsMatchEmptySentinel(t *testing.T) {
	assert.False(t, StampsMatch("", ""))
	assert.False(t, StampsMatch("", "x"))
	assert.False(t, StampsMatch("x", ""))
	assert.True(t, StampsMatch("x", "x"))
	assert.False(t, StampsMatch("x", "y"))
}

func TestNullHandler(t *testing.T) {
	h := NullHandler{}
	assert.False(t, h.CanHandle("anything"))
	assert.Equal(t, Stamp(""), h.Stamp("anything"))
	assert.True(t, h.StampsMatch("x", "x"))

	err := h.RebuildImpl("anything", nil)
	assert.True(t, errors.Is(err, ErrCannotBuild))
}
