package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopyNodeIsIndependentOfOriginal(t *testing.T) {
	n := &Node{ID: "a", Labels: []string{"User"}, Properties: map[string]any{"name": "Alice"}}
	cp := CopyNode(n)

	cp.Labels[0] = "Mutated"
	cp.Properties["name"] = "Mutated"

	assert.Equal(t, "User", n.Labels[0])
	assert.Equal(t, "Alice", n.Properties["name"])
}

func TestCopyNodeNilIsNil(t *testing.T) {
	assert.Nil(t, CopyNode(nil))
}

func TestCopyEdgeIsIndependentOfOriginal(t *testing.T) {
	e := &Edge{ID: "e1", From: "a", To: "b", Properties: map[string]any{"since": int64(2020)}}
	cp := CopyEdge(e)
	cp.Properties["since"] = int64(1)
	assert.Equal(t, int64(2020), e.Properties["since"])
}

func TestHasLabel(t *testing.T) {
	n := &Node{Labels: []string{"User", "Active"}}
	assert.True(t, n.HasLabel("Active"))
	assert.False(t, n.HasLabel("Admin"))
}

func TestValidateValue(t *testing.T) {
	assert.True(t, ValidateValue(nil))
	assert.True(t, ValidateValue(42))
	assert.True(t, ValidateValue(int64(42)))
	assert.True(t, ValidateValue(3.14))
	assert.True(t, ValidateValue(true))
	assert.True(t, ValidateValue("x"))
	assert.False(t, ValidateValue([]int{1, 2}))
}

func TestNormalizeValueCanonicalizesIntToInt64(t *testing.T) {
	assert.Equal(t, int64(7), NormalizeValue(7))
	assert.Equal(t, "x", NormalizeValue("x"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(7, int64(7)))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, int64(0)))
	assert.False(t, Equal("1", int64(1)))
	assert.True(t, Equal(1.5, 1.5))
}

func TestCompareOrdersSameTypeValues(t *testing.T) {
	c, err := Compare(int64(1), int64(2))
	assert.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare("b", "a")
	assert.NoError(t, err)
	assert.Equal(t, 1, c)

	c, err = Compare(2.0, 2.0)
	assert.NoError(t, err)
	assert.Equal(t, 0, c)
}

func TestCompareRejectsMismatchedOrUnorderableTypes(t *testing.T) {
	_, err := Compare(int64(1), "1")
	assert.Error(t, err)

	_, err = Compare(true, false)
	assert.Error(t, err)
}
