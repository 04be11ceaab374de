package nornicdb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orneryd/nornicdb/pkg/graph"
)

// line: a -> b -> c -> d
func buildLine(t *testing.T, e *Engine) (a, b, c, d graph.NodeID) {
	t.Helper()
	tx := e.Begin()
	var err error
	tx, err = e.CreateNode(tx, []string{"N"}, map[string]any{"name": "a"})
	require.NoError(t, err)
	aID := tx.Forward[len(tx.Forward)-1].Node.ID

	tx, err = e.CreateNode(tx, []string{"N"}, map[string]any{"name": "b"})
	require.NoError(t, err)
	bID := tx.Forward[len(tx.Forward)-1].Node.ID

	tx, err = e.CreateNode(tx, []string{"N"}, map[string]any{"name": "c"})
	require.NoError(t, err)
	cID := tx.Forward[len(tx.Forward)-1].Node.ID

	tx, err = e.CreateNode(tx, []string{"N"}, map[string]any{"name": "d"})
	require.NoError(t, err)
	dID := tx.Forward[len(tx.Forward)-1].Node.ID

	tx, err = e.CreateEdge(tx, "NEXT", aID, bID, nil)
	require.NoError(t, err)
	tx, err = e.CreateEdge(tx, "NEXT", bID, cID, nil)
	require.NoError(t, err)
	tx, err = e.CreateEdge(tx, "NEXT", cID, dID, nil)
	require.NoError(t, err)

	require.NoError(t, e.Commit(tx))
	return aID, bID, cID, dID
}

func TestExpandOutgoing(t *testing.T) {
	e, _ := openEngine(t)
	a, b, _, _ := buildLine(t, e)

	out := e.Expand(a, "NEXT", DirOutgoing)
	require.Len(t, out, 1)
	require.Equal(t, b, out[0].ID)
}

func TestExpandIncoming(t *testing.T) {
	e, _ := openEngine(t)
	a, b, _, _ := buildLine(t, e)

	in := e.Expand(b, "NEXT", DirIncoming)
	require.Len(t, in, 1)
	require.Equal(t, a, in[0].ID)
}

func TestNeighborsBothDirections(t *testing.T) {
	e, _ := openEngine(t)
	_, b, c, _ := buildLine(t, e)

	neighbors := e.Neighbors(b)
	ids := map[graph.NodeID]bool{}
	for _, n := range neighbors {
		ids[n.ID] = true
	}
	require.True(t, ids[c])
	require.Len(t, neighbors, 2)
}

func TestBFSReachesWholeLineWithinDepth(t *testing.T) {
	e, _ := openEngine(t)
	a, _, _, d := buildLine(t, e)

	paths := e.BFS(a, 0)
	require.Len(t, paths, 4)

	var toD Path
	for _, p := range paths {
		if p.Nodes[len(p.Nodes)-1].ID == d {
			toD = p
		}
	}
	require.Len(t, toD.Edges, 3)
}

func TestBFSRespectsMaxDepth(t *testing.T) {
	e, _ := openEngine(t)
	a, _, _, _ := buildLine(t, e)

	paths := e.BFS(a, 1)
	require.Len(t, paths, 2) // a itself, plus its one-hop neighbor b
}

func TestShortestPathFindsLineDistance(t *testing.T) {
	e, _ := openEngine(t)
	a, _, _, d := buildLine(t, e)

	path, ok := e.ShortestPath(a, d)
	require.True(t, ok)
	require.Len(t, path.Edges, 3)
	require.Equal(t, a, path.Nodes[0].ID)
	require.Equal(t, d, path.Nodes[len(path.Nodes)-1].ID)
}

func TestShortestPathUnreachableReturnsFalse(t *testing.T) {
	e, _ := openEngine(t)
	a, _, _, _ := buildLine(t, e)

	tx := e.Begin()
	tx, err := e.CreateNode(tx, []string{"Island"}, nil)
	require.NoError(t, err)
	require.NoError(t, e.Commit(tx))
	island := tx.Forward[0].Node.ID

	_, ok := e.ShortestPath(a, island)
	require.False(t, ok)
}

func TestShortestPathSameNode(t *testing.T) {
	e, _ := openEngine(t)
	a, _, _, _ := buildLine(t, e)

	path, ok := e.ShortestPath(a, a)
	require.True(t, ok)
	require.Len(t, path.Nodes, 1)
	require.Empty(t, path.Edges)
}
