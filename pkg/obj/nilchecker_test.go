package obj

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type dispatcher struct{}

func TestIsNil(t *testing.T) {
	var typed *dispatcher
	var iface interface{} = typed

	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(iface))
	assert.True(t, IsNil(map[string]int(nil)))
	assert.False(t, IsNil(&dispatcher{}))
	assert.False(t, IsNil(3))
}
