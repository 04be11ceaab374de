// Transaction is a stateless, caller-threaded builder: every mutator
// returns a new Transaction value rather than mutating a shared one. A
// caller chains calls by reassigning its local variable:
//
//	tx := storage.NewTransaction()
//	tx, err := tx.CreateNode([]string{"User"}, props)
//	tx, err = tx.CreateEdge("KNOWS", fromID, toID, nil)
//	err = coordinator.Commit(tx)
//
// Nothing is applied to Store or Indexes until a Coordinator commits the
// built Transaction; build-time failures are returned directly and never
// reach Store or Indexes.
package storage

import (
	"time"

	"github.com/orneryd/nornicdb/pkg/graph"
	"github.com/orneryd/nornicdb/pkg/idgen"
)

// TxState is the lifecycle state of a Transaction. A Transaction starts
// TxOpen and moves to exactly one of TxCommitted or TxRolledBack; once in
// either of those, it is immutable and a further Commit or Rollback is
// rejected.
//
// Transaction itself is an immutable, caller-threaded value (see the
// package doc), so this field only records the state a Transaction had at
// build time (always TxOpen). The authoritative state lives in the
// Coordinator, which is the only thing that can observe every Commit and
// Rollback call against a given transaction id; see Coordinator.Commit and
// Coordinator.Rollback.
type TxState int

const (
	TxOpen TxState = iota
	TxCommitted
	TxRolledBack
)

// Transaction carries the forward operations to apply on commit and the
// undo operations to apply on rollback, in the orders the Coordinator
// protocol requires: Forward in build order, Undo in apply-reverse order
// (the inverse of the most recently built forward op comes first).
type Transaction struct {
	TxID    string
	State   TxState
	Forward []Op
	Undo    []Op
}

// NewTransaction starts an empty, open transaction with a fresh id.
func NewTransaction() Transaction {
	return Transaction{TxID: idgen.New(), State: TxOpen}
}

func (tx Transaction) extend(forward, undo Op) Transaction {
	next := Transaction{
		TxID:    tx.TxID,
		State:   tx.State,
		Forward: append(append([]Op(nil), tx.Forward...), forward),
		Undo:    append([]Op{undo}, tx.Undo...),
	}
	return next
}

// CreateNode stages the creation of a node with the given labels and
// properties. Forward: insert the computed node. Undo: delete its id.
func (tx Transaction) CreateNode(labels []string, props map[string]any) (Transaction, error) {
	now := time.Now()
	node := &graph.Node{
		ID:         graph.NodeID(idgen.New()),
		Labels:     append([]string(nil), labels...),
		Properties: copyProps(props),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	forward := Op{Kind: OpPutNode, Node: node}
	undo := Op{Kind: OpDeleteNode, NodeID: node.ID}
	return tx.extend(forward, undo), nil
}

// CreateEdge stages the creation of an edge between from and to. The
// builder does not verify endpoint existence; that is checked at apply
// time by the Coordinator (see I1/I2).
func (tx Transaction) CreateEdge(edgeType string, from, to graph.NodeID, props map[string]any) (Transaction, error) {
	now := time.Now()
	edge := &graph.Edge{
		ID:         graph.EdgeID(idgen.New()),
		From:       from,
		To:         to,
		Type:       edgeType,
		Properties: copyProps(props),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	forward := Op{Kind: OpPutEdge, Edge: edge}
	undo := Op{Kind: OpDeleteEdge, EdgeID: edge.ID}
	return tx.extend(forward, undo), nil
}

// NodeChanges describes an update_node mutation. Labels, when non-nil,
// replaces the node's label set outright. Properties, when non-nil, is
// merged into the existing property map: keys present in Properties
// overwrite, keys absent survive unchanged.
type NodeChanges struct {
	Labels     []string
	Properties map[string]any
}

// UpdateNode stages replacing node id with its current state merged with
// changes. Requires id to currently exist in store. Forward: the merged
// node. Undo: the pre-update node.
func (tx Transaction) UpdateNode(store Store, id graph.NodeID, changes NodeChanges) (Transaction, error) {
	current, ok := store.GetNode(id)
	if !ok {
		return tx, ErrNotFound
	}

	merged := graph.CopyNode(current)
	merged.UpdatedAt = time.Now()
	if changes.Labels != nil {
		merged.Labels = append([]string(nil), changes.Labels...)
	}
	if changes.Properties != nil {
		if merged.Properties == nil {
			merged.Properties = make(map[string]any, len(changes.Properties))
		}
		for k, v := range changes.Properties {
			merged.Properties[k] = v
		}
	}

	forward := Op{Kind: OpPutNode, Node: merged}
	undo := Op{Kind: OpPutNode, Node: graph.CopyNode(current)}
	return tx.extend(forward, undo), nil
}

// DeleteNode stages deleting node id and every edge incident to it.
// Requires id to currently exist. Forward ops delete each incident edge
// then the node; undo ops restore the node then each edge, so that undo,
// applied in the transaction's own apply-reverse order, recreates the
// node before the edges that reference it.
func (tx Transaction) DeleteNode(store Store, ix *Indexes, id graph.NodeID) (Transaction, error) {
	node, ok := store.GetNode(id)
	if !ok {
		return tx, ErrNotFound
	}

	var incident []*graph.Edge
	for _, eid := range ix.OutgoingEdgeIDs(id) {
		if e, ok := store.GetEdge(eid); ok {
			incident = append(incident, e)
		}
	}
	for _, eid := range ix.IncomingEdgeIDs(id) {
		if e, ok := store.GetEdge(eid); ok {
			incident = append(incident, e)
		}
	}

	next := tx
	for _, e := range incident {
		next = next.extend(
			Op{Kind: OpDeleteEdge, EdgeID: e.ID},
			Op{Kind: OpPutEdge, Edge: graph.CopyEdge(e)},
		)
	}
	next = next.extend(
		Op{Kind: OpDeleteNode, NodeID: id},
		Op{Kind: OpPutNode, Node: graph.CopyNode(node)},
	)
	return next, nil
}

// DeleteEdge stages deleting edge id. Forward: delete. Undo: restore.
func (tx Transaction) DeleteEdge(store Store, id graph.EdgeID) (Transaction, error) {
	edge, ok := store.GetEdge(id)
	if !ok {
		return tx, ErrNotFound
	}
	forward := Op{Kind: OpDeleteEdge, EdgeID: id}
	undo := Op{Kind: OpPutEdge, Edge: graph.CopyEdge(edge)}
	return tx.extend(forward, undo), nil
}

func copyProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = graph.NormalizeValue(v)
	}
	return out
}
