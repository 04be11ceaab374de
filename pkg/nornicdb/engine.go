// Package nornicdb wires the storage, transaction, and query layers into
// the single embedded entry point the rest of the repository uses: Engine.
//
// Engine owns a Store, its Indexes, a WAL, and a Coordinator serializing
// commits over them. Opening an Engine replays the WAL (if any) on top of
// the last snapshot, so a restarted process picks up exactly where it left
// off.
package nornicdb

import (
	"log"
	"path/filepath"

	"github.com/orneryd/nornicdb/pkg/config"
	"github.com/orneryd/nornicdb/pkg/cypher"
	"github.com/orneryd/nornicdb/pkg/graph"
	"github.com/orneryd/nornicdb/pkg/storage"
)

const (
	walDirName       = "wal"
	snapshotsDirName = "snapshots"
)

// Engine is the embedded graph database core: storage, indexes, durability,
// and the query pipeline, wired together behind one type.
type Engine struct {
	dataDir     string
	store       storage.Store
	indexes     *storage.Indexes
	wal         *storage.WAL
	coordinator *storage.Coordinator
}

// Open starts an Engine rooted at cfg.DataDir: it opens the configured
// Store backend, opens the WAL, loads the most recent snapshot (if any),
// then replays every WAL record committed since that snapshot. A fresh
// data directory opens to an empty graph with no error.
func Open(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := storage.Open(storageKind(cfg), cfg.DataDir)
	if err != nil {
		return nil, err
	}

	ix := storage.NewIndexes()

	snapDir := filepath.Join(cfg.DataDir, snapshotsDirName)
	if _, err := storage.LoadSnapshot(snapDir, store); err != nil && err != storage.ErrNoSnapshot {
		store.Close()
		return nil, err
	}
	ix.Rebuild(store)

	// WALSync selects whether this Engine persists at all: false is a pure
	// in-memory configuration (commits skip the durability step entirely,
	// per storage.NewCoordinator's nil-WAL case), used for short-lived or
	// test engines that never need crash recovery.
	var wal *storage.WAL
	walDir := filepath.Join(cfg.DataDir, walDirName)
	if cfg.WALSync {
		wal, err = storage.OpenWAL(walDir)
		if err != nil {
			store.Close()
			return nil, err
		}

		replayed := 0
		if err := storage.Replay(walDir, func(r storage.LogRecord) error {
			for _, op := range r.Ops {
				if err := op.Apply(store, ix); err != nil {
					return err
				}
			}
			replayed++
			return nil
		}); err != nil {
			store.Close()
			wal.Close()
			return nil, err
		}
		if replayed > 0 {
			log.Printf("nornicdb: replayed %d WAL record(s) from %s", replayed, cfg.DataDir)
		}
	}

	coord := storage.NewCoordinator(store, ix, wal)

	return &Engine{
		dataDir:     cfg.DataDir,
		store:       store,
		indexes:     ix,
		wal:         wal,
		coordinator: coord,
	}, nil
}

// storageKind maps the ambient config's BadgerEnabled flag onto a
// storage.Kind.
func storageKind(cfg *config.Config) storage.Kind {
	if cfg.BadgerEnabled {
		return storage.KindBadger
	}
	return storage.KindMemory
}

// Close releases the Engine's WAL and Store file handles. It does not
// snapshot first; call CreateSnapshot explicitly if that is wanted.
func (e *Engine) Close() error {
	var firstErr error
	if e.wal != nil {
		if err := e.wal.Close(); err != nil {
			firstErr = err
		}
	}
	if err := e.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Begin starts a new, empty Transaction. Nothing is applied to Store or
// Indexes until Commit is called.
func (e *Engine) Begin() storage.Transaction {
	return storage.NewTransaction()
}

// CreateNode stages a create_node op on tx.
func (e *Engine) CreateNode(tx storage.Transaction, labels []string, props map[string]any) (storage.Transaction, error) {
	return tx.CreateNode(labels, props)
}

// CreateEdge stages a create_edge op on tx. Endpoint existence is checked
// at commit time, not here.
func (e *Engine) CreateEdge(tx storage.Transaction, edgeType string, from, to graph.NodeID, props map[string]any) (storage.Transaction, error) {
	return tx.CreateEdge(edgeType, from, to, props)
}

// UpdateNode stages an update_node op on tx, requiring id to currently
// exist in the Engine's Store.
func (e *Engine) UpdateNode(tx storage.Transaction, id graph.NodeID, changes storage.NodeChanges) (storage.Transaction, error) {
	return tx.UpdateNode(e.store, id, changes)
}

// DeleteNode stages a delete_node op on tx, along with deletes for every
// edge incident to id.
func (e *Engine) DeleteNode(tx storage.Transaction, id graph.NodeID) (storage.Transaction, error) {
	return tx.DeleteNode(e.store, e.indexes, id)
}

// DeleteEdge stages a delete_edge op on tx.
func (e *Engine) DeleteEdge(tx storage.Transaction, id graph.EdgeID) (storage.Transaction, error) {
	return tx.DeleteEdge(e.store, id)
}

// Commit runs the Coordinator's commit protocol for tx: append to the WAL,
// then apply every forward op to Store and Indexes.
func (e *Engine) Commit(tx storage.Transaction) error {
	if err := e.coordinator.Commit(tx); err != nil {
		return err
	}
	log.Printf("nornicdb: committed transaction %s (%d op(s))", tx.TxID, len(tx.Forward))
	return nil
}

// Rollback applies tx's undo ops, discarding a transaction that was never
// committed.
func (e *Engine) Rollback(tx storage.Transaction) error {
	return e.coordinator.Rollback(tx)
}

// GetNode returns the node with id, if present.
func (e *Engine) GetNode(id graph.NodeID) (*graph.Node, bool) {
	return e.store.GetNode(id)
}

// GetEdge returns the edge with id, if present.
func (e *Engine) GetEdge(id graph.EdgeID) (*graph.Edge, bool) {
	return e.store.GetEdge(id)
}

// AllNodes returns every live node.
func (e *Engine) AllNodes() []*graph.Node {
	return e.store.AllNodes()
}

// AllEdges returns every live edge.
func (e *Engine) AllEdges() []*graph.Edge {
	return e.store.AllEdges()
}

// NodesByLabel returns every node carrying label.
func (e *Engine) NodesByLabel(label string) []*graph.Node {
	return e.resolveNodes(e.indexes.NodesByLabel(label))
}

// NodesByProperty returns every node whose property equals value,
// regardless of labels.
func (e *Engine) NodesByProperty(property string, value any) []*graph.Node {
	return e.resolveNodes(e.indexes.NodesByProperty(property, value))
}

func (e *Engine) resolveNodes(ids []graph.NodeID) []*graph.Node {
	out := make([]*graph.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := e.store.GetNode(id); ok {
			out = append(out, n)
		}
	}
	return out
}

// OutEdges returns every edge starting at id.
func (e *Engine) OutEdges(id graph.NodeID) []*graph.Edge {
	return e.resolveEdges(e.indexes.OutgoingEdgeIDs(id))
}

// InEdges returns every edge ending at id.
func (e *Engine) InEdges(id graph.NodeID) []*graph.Edge {
	return e.resolveEdges(e.indexes.IncomingEdgeIDs(id))
}

func (e *Engine) resolveEdges(ids []graph.EdgeID) []*graph.Edge {
	out := make([]*graph.Edge, 0, len(ids))
	for _, id := range ids {
		if edge, ok := e.store.GetEdge(id); ok {
			out = append(out, edge)
		}
	}
	return out
}

// Stats is a live graph-size snapshot.
type Stats struct {
	NodeCount int
	EdgeCount int
}

// Stats reports the current live node and edge counts.
func (e *Engine) Stats() Stats {
	return Stats{NodeCount: len(e.store.AllNodes()), EdgeCount: len(e.store.AllEdges())}
}

// Query parses, plans, optimizes, and lazily executes a read-only query
// string against the Engine's current Store and Indexes.
func (e *Engine) Query(source string) (cypher.Rows, error) {
	return cypher.Execute(cypher.ExecContext{Store: e.store, Indexes: e.indexes}, source)
}

// CreateSnapshot runs the Coordinator's snapshot protocol: write a
// snapshot of the current Store, then truncate the WAL up to the
// snapshot's last committed transaction. It runs inside the Coordinator's
// critical section so no commit can interleave.
func (e *Engine) CreateSnapshot() error {
	if err := e.coordinator.Snapshot(filepath.Join(e.dataDir, snapshotsDirName)); err != nil {
		return err
	}
	log.Printf("nornicdb: snapshot written to %s", e.dataDir)
	return nil
}

// LoadSnapshot clears the Store and reloads it from the most recent
// on-disk snapshot, rebuilding Indexes from scratch. It is meant for
// administrative recovery, not normal startup (Open already does this).
func (e *Engine) LoadSnapshot() error {
	_, err := storage.LoadSnapshot(filepath.Join(e.dataDir, snapshotsDirName), e.store)
	if err != nil {
		return err
	}
	e.indexes.Rebuild(e.store)
	return nil
}
