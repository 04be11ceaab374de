package storage

import (
	"sync"

	"github.com/orneryd/nornicdb/pkg/graph"
)

// Indexes holds the secondary structures the query planner uses to avoid
// full scans: label membership, per-property value lookup, and adjacency
// by node. It is maintained alongside a Store but is never the source of
// truth: Store always wins on a mismatch, and Indexes can be rebuilt
// entirely from a Store's contents (see Rebuild).
type Indexes struct {
	mu sync.RWMutex

	byLabel    map[string]map[graph.NodeID]struct{}
	byProperty map[string]map[any][]graph.NodeID // key: property name, unscoped by label
	outgoing   map[graph.NodeID][]graph.EdgeID
	incoming   map[graph.NodeID][]graph.EdgeID
}

// NewIndexes returns an empty Indexes ready to be populated.
func NewIndexes() *Indexes {
	return &Indexes{
		byLabel:    make(map[string]map[graph.NodeID]struct{}),
		byProperty: make(map[string]map[any][]graph.NodeID),
		outgoing:   make(map[graph.NodeID][]graph.EdgeID),
		incoming:   make(map[graph.NodeID][]graph.EdgeID),
	}
}

// IndexNode adds node to the label and property indexes. Property indexing
// is unconditional: it does not depend on node carrying any label, so an
// unlabeled node with properties is still found by NodesByProperty.
func (ix *Indexes) IndexNode(node *graph.Node) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, label := range node.Labels {
		set, ok := ix.byLabel[label]
		if !ok {
			set = make(map[graph.NodeID]struct{})
			ix.byLabel[label] = set
		}
		set[node.ID] = struct{}{}
	}

	for prop, val := range node.Properties {
		vals, ok := ix.byProperty[prop]
		if !ok {
			vals = make(map[any][]graph.NodeID)
			ix.byProperty[prop] = vals
		}
		norm := graph.NormalizeValue(val)
		vals[norm] = appendNodeID(vals[norm], node.ID)
	}
}

// DeindexNode removes node from the label and property indexes. Pass the
// node's pre-deletion state (or pre-update state, when re-indexing after a
// property/label change).
func (ix *Indexes) DeindexNode(node *graph.Node) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, label := range node.Labels {
		if set, ok := ix.byLabel[label]; ok {
			delete(set, node.ID)
			if len(set) == 0 {
				delete(ix.byLabel, label)
			}
		}
	}

	for prop, val := range node.Properties {
		vals, ok := ix.byProperty[prop]
		if !ok {
			continue
		}
		norm := graph.NormalizeValue(val)
		vals[norm] = removeNodeID(vals[norm], node.ID)
		if len(vals[norm]) == 0 {
			delete(vals, norm)
		}
		if len(vals) == 0 {
			delete(ix.byProperty, prop)
		}
	}
}

// IndexEdge records edge in the adjacency indexes.
func (ix *Indexes) IndexEdge(edge *graph.Edge) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.outgoing[edge.From] = appendEdgeID(ix.outgoing[edge.From], edge.ID)
	ix.incoming[edge.To] = appendEdgeID(ix.incoming[edge.To], edge.ID)
}

// DeindexEdge removes edge from the adjacency indexes.
func (ix *Indexes) DeindexEdge(edge *graph.Edge) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.outgoing[edge.From] = removeEdgeID(ix.outgoing[edge.From], edge.ID)
	ix.incoming[edge.To] = removeEdgeID(ix.incoming[edge.To], edge.ID)
	if len(ix.outgoing[edge.From]) == 0 {
		delete(ix.outgoing, edge.From)
	}
	if len(ix.incoming[edge.To]) == 0 {
		delete(ix.incoming, edge.To)
	}
}

// NodesByLabel returns the ids of every node carrying label.
func (ix *Indexes) NodesByLabel(label string) []graph.NodeID {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	set := ix.byLabel[label]
	out := make([]graph.NodeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// NodesByProperty returns the ids of every node whose property value
// equals value, regardless of the node's labels (including nodes that
// carry no label at all).
func (ix *Indexes) NodesByProperty(property string, value any) []graph.NodeID {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	vals := ix.byProperty[property]
	ids := vals[graph.NormalizeValue(value)]
	out := make([]graph.NodeID, len(ids))
	copy(out, ids)
	return out
}

// OutgoingEdgeIDs returns the ids of edges starting at id.
func (ix *Indexes) OutgoingEdgeIDs(id graph.NodeID) []graph.EdgeID {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ids := ix.outgoing[id]
	out := make([]graph.EdgeID, len(ids))
	copy(out, ids)
	return out
}

// IncomingEdgeIDs returns the ids of edges ending at id.
func (ix *Indexes) IncomingEdgeIDs(id graph.NodeID) []graph.EdgeID {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ids := ix.incoming[id]
	out := make([]graph.EdgeID, len(ids))
	copy(out, ids)
	return out
}

// Clear discards all index contents.
func (ix *Indexes) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.byLabel = make(map[string]map[graph.NodeID]struct{})
	ix.byProperty = make(map[string]map[any][]graph.NodeID)
	ix.outgoing = make(map[graph.NodeID][]graph.EdgeID)
	ix.incoming = make(map[graph.NodeID][]graph.EdgeID)
}

// Rebuild discards the current index contents and repopulates them from
// store. Used after loading a snapshot (and on startup, before WAL replay,
// whose ops maintain the indexes themselves), where the Store's contents
// are authoritative and the indexes must catch up.
func (ix *Indexes) Rebuild(store Store) {
	ix.Clear()
	for _, n := range store.AllNodes() {
		ix.IndexNode(n)
	}
	for _, e := range store.AllEdges() {
		ix.IndexEdge(e)
	}
}

func appendNodeID(s []graph.NodeID, id graph.NodeID) []graph.NodeID {
	for _, x := range s {
		if x == id {
			return s
		}
	}
	return append(s, id)
}

func removeNodeID(s []graph.NodeID, id graph.NodeID) []graph.NodeID {
	for i, x := range s {
		if x == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func appendEdgeID(s []graph.EdgeID, id graph.EdgeID) []graph.EdgeID {
	for _, x := range s {
		if x == id {
			return s
		}
	}
	return append(s, id)
}

func removeEdgeID(s []graph.EdgeID, id graph.EdgeID) []graph.EdgeID {
	for i, x := range s {
		if x == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
