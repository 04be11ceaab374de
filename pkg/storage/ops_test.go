package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/nornicdb/pkg/graph"
)

func TestOpPutNodeIndexesAndReplacesPriorState(t *testing.T) {
	store := NewMemoryStore()
	ix := NewIndexes()

	n := &graph.Node{ID: "n1", Labels: []string{"User"}, Properties: map[string]any{"name": "Alice"}}
	require.NoError(t, Op{Kind: OpPutNode, Node: n}.Apply(store, ix))
	assert.Equal(t, []graph.NodeID{"n1"}, ix.NodesByLabel("User"))

	renamed := &graph.Node{ID: "n1", Labels: []string{"Admin"}, Properties: map[string]any{"name": "Alice"}}
	require.NoError(t, Op{Kind: OpPutNode, Node: renamed}.Apply(store, ix))

	assert.Empty(t, ix.NodesByLabel("User"))
	assert.Equal(t, []graph.NodeID{"n1"}, ix.NodesByLabel("Admin"))
}

func TestOpDeleteNodeOnAbsentIDIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ix := NewIndexes()

	err := Op{Kind: OpDeleteNode, NodeID: "missing"}.Apply(store, ix)
	require.NoError(t, err)
}

func TestOpPutEdgeRejectsMissingEndpoints(t *testing.T) {
	store := NewMemoryStore()
	ix := NewIndexes()

	edge := &graph.Edge{ID: "e1", From: "a", To: "b", Type: "KNOWS"}
	err := Op{Kind: OpPutEdge, Edge: edge}.Apply(store, ix)
	require.ErrorIs(t, err, ErrReferentialIntegrity)
	_, ok := store.GetEdge("e1")
	assert.False(t, ok, "a rejected edge must not land in the store")
}

func TestOpPutEdgeRejectsMissingToEndpointEvenWhenFromExists(t *testing.T) {
	store := NewMemoryStore()
	ix := NewIndexes()
	require.NoError(t, store.PutNode(&graph.Node{ID: "a"}))

	edge := &graph.Edge{ID: "e1", From: "a", To: "b", Type: "KNOWS"}
	err := Op{Kind: OpPutEdge, Edge: edge}.Apply(store, ix)
	require.ErrorIs(t, err, ErrReferentialIntegrity)
}

func TestOpPutEdgeSucceedsWhenBothEndpointsExist(t *testing.T) {
	store := NewMemoryStore()
	ix := NewIndexes()
	require.NoError(t, store.PutNode(&graph.Node{ID: "a"}))
	require.NoError(t, store.PutNode(&graph.Node{ID: "b"}))

	edge := &graph.Edge{ID: "e1", From: "a", To: "b", Type: "KNOWS"}
	require.NoError(t, Op{Kind: OpPutEdge, Edge: edge}.Apply(store, ix))

	assert.Equal(t, []graph.EdgeID{"e1"}, ix.OutgoingEdgeIDs("a"))
	assert.Equal(t, []graph.EdgeID{"e1"}, ix.IncomingEdgeIDs("b"))
}

func TestOpDeleteEdgeOnAbsentIDIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ix := NewIndexes()
	require.NoError(t, Op{Kind: OpDeleteEdge, EdgeID: "missing"}.Apply(store, ix))
}

func TestOpApplyUnknownKindIsInvalidData(t *testing.T) {
	store := NewMemoryStore()
	ix := NewIndexes()
	err := Op{Kind: "bogus"}.Apply(store, ix)
	require.ErrorIs(t, err, ErrInvalidData)
}
