package nornicdb

import "github.com/orneryd/nornicdb/pkg/graph"

// Direction selects which adjacency index Expand consults. Neighbors, BFS
// and ShortestPath take no Direction: they always follow edges both ways.
type Direction int

const (
	DirOutgoing Direction = iota
	DirIncoming
	DirBoth
)

// Expand returns every node reachable from id by one edge of edgeType in
// the given direction. An empty edgeType matches edges of any type.
func (e *Engine) Expand(id graph.NodeID, edgeType string, dir Direction) []*graph.Node {
	var edges []*graph.Edge
	switch dir {
	case DirOutgoing:
		edges = e.OutEdges(id)
	case DirIncoming:
		edges = e.InEdges(id)
	default:
		edges = append(e.OutEdges(id), e.InEdges(id)...)
	}

	out := make([]*graph.Node, 0, len(edges))
	for _, edge := range edges {
		if edgeType != "" && edge.Type != edgeType {
			continue
		}
		other := edge.To
		if edge.To == id {
			other = edge.From
		}
		if n, ok := e.GetNode(other); ok {
			out = append(out, n)
		}
	}
	return out
}

// Neighbors returns every node adjacent to id by any edge, in either
// direction, regardless of type.
func (e *Engine) Neighbors(id graph.NodeID) []*graph.Node {
	return e.Expand(id, "", DirBoth)
}

// Path is an ordered walk through the graph: Nodes has one more element
// than Edges, and Edges[i] connects Nodes[i] to Nodes[i+1].
type Path struct {
	Nodes []*graph.Node
	Edges []*graph.Edge
}

// bfsQueueItem is one frontier entry: the node reached and the path taken
// to reach it.
type bfsQueueItem struct {
	id   graph.NodeID
	path Path
}

// BFS returns every node reachable from start within maxDepth hops,
// breadth-first, each paired with the path taken to first reach it.
// maxDepth <= 0 means unbounded.
func (e *Engine) BFS(start graph.NodeID, maxDepth int) []Path {
	startNode, ok := e.GetNode(start)
	if !ok {
		return nil
	}

	var result []Path
	visited := map[graph.NodeID]bool{start: true}
	queue := []bfsQueueItem{{id: start, path: Path{Nodes: []*graph.Node{startNode}}}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current.path)

		if maxDepth > 0 && len(current.path.Edges) >= maxDepth {
			continue
		}

		for _, edge := range append(e.OutEdges(current.id), e.InEdges(current.id)...) {
			next := edge.To
			if edge.To == current.id {
				next = edge.From
			}
			if visited[next] {
				continue
			}
			nextNode, ok := e.GetNode(next)
			if !ok {
				continue
			}
			visited[next] = true
			queue = append(queue, bfsQueueItem{
				id: next,
				path: Path{
					Nodes: append(append([]*graph.Node(nil), current.path.Nodes...), nextNode),
					Edges: append(append([]*graph.Edge(nil), current.path.Edges...), edge),
				},
			})
		}
	}
	return result
}

// ShortestPath runs a breadth-first search from from to to and returns the
// first (hence shortest, by hop count) path found, or ok=false if to is
// unreachable from from.
func (e *Engine) ShortestPath(from, to graph.NodeID) (Path, bool) {
	if from == to {
		if n, ok := e.GetNode(from); ok {
			return Path{Nodes: []*graph.Node{n}}, true
		}
		return Path{}, false
	}

	startNode, ok := e.GetNode(from)
	if !ok {
		return Path{}, false
	}

	visited := map[graph.NodeID]bool{from: true}
	queue := []bfsQueueItem{{id: from, path: Path{Nodes: []*graph.Node{startNode}}}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range append(e.OutEdges(current.id), e.InEdges(current.id)...) {
			next := edge.To
			if edge.To == current.id {
				next = edge.From
			}
			if visited[next] {
				continue
			}
			nextNode, ok := e.GetNode(next)
			if !ok {
				continue
			}
			nextPath := Path{
				Nodes: append(append([]*graph.Node(nil), current.path.Nodes...), nextNode),
				Edges: append(append([]*graph.Edge(nil), current.path.Edges...), edge),
			}
			if next == to {
				return nextPath, true
			}
			visited[next] = true
			queue = append(queue, bfsQueueItem{id: next, path: nextPath})
		}
	}
	return Path{}, false
}
