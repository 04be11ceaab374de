package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/nornicdb/pkg/graph"
)

func TestNewTransactionStartsOpen(t *testing.T) {
	tx := NewTransaction()
	assert.Equal(t, TxOpen, tx.State)
}

func TestTransactionCreateNodeStagesForwardAndUndo(t *testing.T) {
	tx := NewTransaction()
	tx, err := tx.CreateNode([]string{"User"}, map[string]any{"name": "Alice"})
	require.NoError(t, err)

	require.Len(t, tx.Forward, 1)
	require.Len(t, tx.Undo, 1)
	assert.Equal(t, OpPutNode, tx.Forward[0].Kind)
	assert.Equal(t, OpDeleteNode, tx.Undo[0].Kind)
	assert.Equal(t, tx.Forward[0].Node.ID, tx.Undo[0].NodeID)
	assert.Equal(t, TxOpen, tx.State)
}

func TestTransactionCreateEdgeDoesNotCheckEndpointsAtBuildTime(t *testing.T) {
	tx := NewTransaction()
	tx, err := tx.CreateEdge("KNOWS", "missing-from", "missing-to", nil)
	require.NoError(t, err)
	require.Len(t, tx.Forward, 1)
	assert.Equal(t, OpPutEdge, tx.Forward[0].Kind)
}

func TestTransactionUpdateNodeRequiresExistingNode(t *testing.T) {
	store := NewMemoryStore()
	tx := NewTransaction()
	_, err := tx.UpdateNode(store, "missing", NodeChanges{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionUpdateNodeMergesPropertiesAndPreservesUnmentionedKeys(t *testing.T) {
	store := NewMemoryStore()
	n := &graph.Node{ID: "n1", Labels: []string{"User"}, Properties: map[string]any{"name": "Alice", "age": int64(30)}}
	require.NoError(t, store.PutNode(n))

	tx := NewTransaction()
	tx, err := tx.UpdateNode(store, "n1", NodeChanges{Properties: map[string]any{"age": int64(31)}})
	require.NoError(t, err)

	require.Len(t, tx.Forward, 1)
	merged := tx.Forward[0].Node
	assert.Equal(t, "Alice", merged.Properties["name"])
	assert.Equal(t, int64(31), merged.Properties["age"])

	require.Len(t, tx.Undo, 1)
	assert.Equal(t, int64(30), tx.Undo[0].Node.Properties["age"])
}

func TestTransactionUpdateNodeReplacesLabelsOutright(t *testing.T) {
	store := NewMemoryStore()
	n := &graph.Node{ID: "n1", Labels: []string{"User", "Active"}}
	require.NoError(t, store.PutNode(n))

	tx := NewTransaction()
	tx, err := tx.UpdateNode(store, "n1", NodeChanges{Labels: []string{"Archived"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Archived"}, tx.Forward[0].Node.Labels)
}

func TestTransactionDeleteNodeRequiresExistingNode(t *testing.T) {
	store := NewMemoryStore()
	ix := NewIndexes()
	tx := NewTransaction()
	_, err := tx.DeleteNode(store, ix, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionDeleteNodeStagesIncidentEdgesThenTheNode(t *testing.T) {
	store := NewMemoryStore()
	ix := NewIndexes()

	a := &graph.Node{ID: "a"}
	b := &graph.Node{ID: "b"}
	require.NoError(t, store.PutNode(a))
	require.NoError(t, store.PutNode(b))
	edge := &graph.Edge{ID: "e1", From: "a", To: "b", Type: "KNOWS"}
	require.NoError(t, Op{Kind: OpPutEdge, Edge: edge}.Apply(store, ix))

	tx := NewTransaction()
	tx, err := tx.DeleteNode(store, ix, "a")
	require.NoError(t, err)

	// Forward deletes the edge before the node.
	require.Len(t, tx.Forward, 2)
	assert.Equal(t, OpDeleteEdge, tx.Forward[0].Kind)
	assert.Equal(t, OpDeleteNode, tx.Forward[1].Kind)

	// Undo restores the node before the edge that references it, so
	// applying Undo in order never trips the edge's referential check.
	require.Len(t, tx.Undo, 2)
	assert.Equal(t, OpPutNode, tx.Undo[0].Kind)
	assert.Equal(t, OpPutEdge, tx.Undo[1].Kind)

	for _, op := range tx.Undo {
		require.NoError(t, op.Apply(store, ix))
	}
	_, ok := store.GetNode("a")
	assert.True(t, ok)
	_, ok = store.GetEdge("e1")
	assert.True(t, ok)
}

func TestTransactionDeleteEdgeRequiresExistingEdge(t *testing.T) {
	store := NewMemoryStore()
	tx := NewTransaction()
	_, err := tx.DeleteEdge(store, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionDeleteEdgeStagesRestoreAsUndo(t *testing.T) {
	store := NewMemoryStore()
	ix := NewIndexes()
	require.NoError(t, store.PutNode(&graph.Node{ID: "a"}))
	require.NoError(t, store.PutNode(&graph.Node{ID: "b"}))
	edge := &graph.Edge{ID: "e1", From: "a", To: "b", Type: "KNOWS"}
	require.NoError(t, Op{Kind: OpPutEdge, Edge: edge}.Apply(store, ix))

	tx := NewTransaction()
	tx, err := tx.DeleteEdge(store, "e1")
	require.NoError(t, err)
	require.Len(t, tx.Undo, 1)
	assert.Equal(t, OpPutEdge, tx.Undo[0].Kind)
	assert.Equal(t, edge.Properties, tx.Undo[0].Edge.Properties)
}
