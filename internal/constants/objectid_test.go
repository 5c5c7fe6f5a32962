package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEntityObjectID(t *testing.T) {
	assert.False(t, IsEntityObjectID(ObjectIDInvalid))
	assert.False(t, IsEntityObjectID(ObjectIDStart-1))
	assert.True(t, IsEntityObjectID(ObjectIDStart))
	assert.True(t, IsEntityObjectID(0xFFFFFFFF))
}
