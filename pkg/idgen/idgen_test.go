package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReturns32HexChars(t *testing.T) {
	id := New()
	assert.Len(t, id, 32)
	for _, r := range id {
		assert.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'), "unexpected char %q", r)
	}
}

func TestNewIsUnlikelyToCollide(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := New()
		assert.False(t, seen[id], "unexpected collision at iteration %d", i)
		seen[id] = true
	}
}
