// Package storage provides the primary node/edge tables (Store), secondary
// indexes, the write-ahead log, snapshotting, and the transaction engine for
// NornicDB's property graph core.
//
// Store is the primary table contract: id -> node and id -> edge. Two
// implementations satisfy it: MemoryStore (the default, in-memory tables)
// and BadgerStore (an optional disk-backed alternative using BadgerDB). Both
// give average-case O(1) lookup by id, as required of any Store.
//
// Reads may run concurrently with each other. Writes are serialized
// externally by the transaction Coordinator; a Store implementation does
// not need to provide its own transactional isolation.
package storage

import "github.com/orneryd/nornicdb/pkg/graph"

// Store is the primary-table contract every storage backend must satisfy.
type Store interface {
	PutNode(node *graph.Node) error
	GetNode(id graph.NodeID) (*graph.Node, bool)
	DeleteNode(id graph.NodeID) error
	AllNodes() []*graph.Node

	PutEdge(edge *graph.Edge) error
	GetEdge(id graph.EdgeID) (*graph.Edge, bool)
	DeleteEdge(id graph.EdgeID) error
	AllEdges() []*graph.Edge

	// EdgesFrom and EdgesTo are diagnostic/snapshot helpers only; hot query
	// paths go through Indexes instead.
	EdgesFrom(id graph.NodeID) []*graph.Edge
	EdgesTo(id graph.NodeID) []*graph.Edge

	Clear()
	Close() error
}

// Kind selects a Store backend implementation.
type Kind string

const (
	KindMemory Kind = "memory"
	KindBadger Kind = "badger"
)

// Open constructs a Store of the given kind. dataDir is ignored by
// KindMemory and required (as the on-disk directory) by KindBadger.
func Open(kind Kind, dataDir string) (Store, error) {
	switch kind {
	case "", KindMemory:
		return NewMemoryStore(), nil
	case KindBadger:
		return NewBadgerStore(dataDir)
	default:
		return nil, ErrInvalidData
	}
}
