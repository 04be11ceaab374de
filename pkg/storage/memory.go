package storage

import (
	"sync"

	"github.com/orneryd/nornicdb/pkg/graph"
)

// MemoryStore is the default, in-memory Store implementation: plain maps
// under a single RWMutex.
//
// Lookups by id are O(1) average case. Every returned node/edge is a deep
// copy, so a caller mutating the result never corrupts the Store.
type MemoryStore struct {
	mu     sync.RWMutex
	nodes  map[graph.NodeID]*graph.Node
	edges  map[graph.EdgeID]*graph.Edge
	closed bool
}

// NewMemoryStore returns an empty, ready-to-use MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[graph.NodeID]*graph.Node),
		edges: make(map[graph.EdgeID]*graph.Edge),
	}
}

func (m *MemoryStore) PutNode(node *graph.Node) error {
	if node == nil || node.ID == "" {
		return ErrInvalidData
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.nodes[node.ID] = graph.CopyNode(node)
	return nil
}

func (m *MemoryStore) GetNode(id graph.NodeID) (*graph.Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil, false
	}
	return graph.CopyNode(n), true
}

func (m *MemoryStore) DeleteNode(id graph.NodeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[id]; !ok {
		return ErrNotFound
	}
	delete(m.nodes, id)
	return nil
}

func (m *MemoryStore) AllNodes() []*graph.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*graph.Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		out = append(out, graph.CopyNode(n))
	}
	return out
}

func (m *MemoryStore) PutEdge(edge *graph.Edge) error {
	if edge == nil || edge.ID == "" {
		return ErrInvalidData
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.edges[edge.ID] = graph.CopyEdge(edge)
	return nil
}

func (m *MemoryStore) GetEdge(id graph.EdgeID) (*graph.Edge, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.edges[id]
	if !ok {
		return nil, false
	}
	return graph.CopyEdge(e), true
}

func (m *MemoryStore) DeleteEdge(id graph.EdgeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.edges[id]; !ok {
		return ErrNotFound
	}
	delete(m.edges, id)
	return nil
}

func (m *MemoryStore) AllEdges() []*graph.Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*graph.Edge, 0, len(m.edges))
	for _, e := range m.edges {
		out = append(out, graph.CopyEdge(e))
	}
	return out
}

func (m *MemoryStore) EdgesFrom(id graph.NodeID) []*graph.Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*graph.Edge
	for _, e := range m.edges {
		if e.From == id {
			out = append(out, graph.CopyEdge(e))
		}
	}
	return out
}

func (m *MemoryStore) EdgesTo(id graph.NodeID) []*graph.Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*graph.Edge
	for _, e := range m.edges {
		if e.To == id {
			out = append(out, graph.CopyEdge(e))
		}
	}
	return out
}

func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = make(map[graph.NodeID]*graph.Node)
	m.edges = make(map[graph.EdgeID]*graph.Edge)
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
