package storage

import (
	"github.com/orneryd/nornicdb/pkg/graph"
)

// OpKind identifies the kind of mutation a single Op performs.
type OpKind string

const (
	OpPutNode    OpKind = "put_node"
	OpDeleteNode OpKind = "delete_node"
	OpPutEdge    OpKind = "put_edge"
	OpDeleteEdge OpKind = "delete_edge"
)

// Op is a single forward or undo mutation against Store and Indexes. Node
// and Edge carry the full post-image for Put* kinds; only NodeID/EdgeID
// are meaningful for Delete* kinds.
type Op struct {
	Kind   OpKind
	NodeID graph.NodeID
	EdgeID graph.EdgeID
	Node   *graph.Node
	Edge   *graph.Edge
}

// Apply performs the op against store and ix. Delete of an already-absent
// id is not an error: replay and rollback must be idempotent against a
// Store that may already reflect the change.
func (op Op) Apply(store Store, ix *Indexes) error {
	switch op.Kind {
	case OpPutNode:
		if old, ok := store.GetNode(op.Node.ID); ok {
			ix.DeindexNode(old)
		}
		if err := store.PutNode(op.Node); err != nil {
			return err
		}
		ix.IndexNode(op.Node)
		return nil
	case OpDeleteNode:
		if old, ok := store.GetNode(op.NodeID); ok {
			ix.DeindexNode(old)
		}
		if err := store.DeleteNode(op.NodeID); err != nil && err != ErrNotFound {
			return err
		}
		return nil
	case OpPutEdge:
		if _, ok := store.GetNode(op.Edge.From); !ok {
			return ErrReferentialIntegrity
		}
		if _, ok := store.GetNode(op.Edge.To); !ok {
			return ErrReferentialIntegrity
		}
		if old, ok := store.GetEdge(op.Edge.ID); ok {
			ix.DeindexEdge(old)
		}
		if err := store.PutEdge(op.Edge); err != nil {
			return err
		}
		ix.IndexEdge(op.Edge)
		return nil
	case OpDeleteEdge:
		if old, ok := store.GetEdge(op.EdgeID); ok {
			ix.DeindexEdge(old)
		}
		if err := store.DeleteEdge(op.EdgeID); err != nil && err != ErrNotFound {
			return err
		}
		return nil
	default:
		return ErrInvalidData
	}
}
