// BadgerStore is the optional disk-backed Store implementation, built on
// BadgerDB. It gives the same primary-table contract as MemoryStore but
// persists across restarts.
package storage

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/orneryd/nornicdb/pkg/graph"
)

// Key prefixes for BadgerDB key organization. Single-byte prefixes keep
// range scans cheap.
const (
	prefixNode          = byte(0x01) // node:nodeID -> gob(Node)
	prefixEdge          = byte(0x02) // edge:edgeID -> gob(Edge)
	prefixLabelIndex    = byte(0x03) // label:labelName:0x00:nodeID -> empty
	prefixOutgoingIndex = byte(0x04) // out:nodeID:0x00:edgeID -> empty
	prefixIncomingIndex = byte(0x05) // in:nodeID:0x00:edgeID -> empty
)

// BadgerStore persists nodes and edges to disk using BadgerDB, maintaining
// label and adjacency indexes as secondary keys in the same keyspace.
type BadgerStore struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// NewBadgerStore opens (or creates) a BadgerDB database rooted at dataDir.
func NewBadgerStore(dataDir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dataDir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func nodeKey(id graph.NodeID) []byte {
	return append([]byte{prefixNode}, []byte(id)...)
}

func edgeKey(id graph.EdgeID) []byte {
	return append([]byte{prefixEdge}, []byte(id)...)
}

func labelIndexKey(label string, nodeID graph.NodeID) []byte {
	k := make([]byte, 0, 1+len(label)+1+len(nodeID))
	k = append(k, prefixLabelIndex)
	k = append(k, []byte(label)...)
	k = append(k, 0x00)
	k = append(k, []byte(nodeID)...)
	return k
}

func labelIndexPrefix(label string) []byte {
	k := make([]byte, 0, 1+len(label)+1)
	k = append(k, prefixLabelIndex)
	k = append(k, []byte(label)...)
	k = append(k, 0x00)
	return k
}

func outgoingIndexKey(nodeID graph.NodeID, edgeID graph.EdgeID) []byte {
	k := make([]byte, 0, 1+len(nodeID)+1+len(edgeID))
	k = append(k, prefixOutgoingIndex)
	k = append(k, []byte(nodeID)...)
	k = append(k, 0x00)
	k = append(k, []byte(edgeID)...)
	return k
}

func outgoingIndexPrefix(nodeID graph.NodeID) []byte {
	k := make([]byte, 0, 1+len(nodeID)+1)
	k = append(k, prefixOutgoingIndex)
	k = append(k, []byte(nodeID)...)
	k = append(k, 0x00)
	return k
}

func incomingIndexKey(nodeID graph.NodeID, edgeID graph.EdgeID) []byte {
	k := make([]byte, 0, 1+len(nodeID)+1+len(edgeID))
	k = append(k, prefixIncomingIndex)
	k = append(k, []byte(nodeID)...)
	k = append(k, 0x00)
	k = append(k, []byte(edgeID)...)
	return k
}

func incomingIndexPrefix(nodeID graph.NodeID) []byte {
	k := make([]byte, 0, 1+len(nodeID)+1)
	k = append(k, prefixIncomingIndex)
	k = append(k, []byte(nodeID)...)
	k = append(k, 0x00)
	return k
}

func extractIDAfterSeparator(key []byte) string {
	for i := 1; i < len(key); i++ {
		if key[i] == 0x00 {
			return string(key[i+1:])
		}
	}
	return ""
}

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeNodeGob(data []byte) (*graph.Node, error) {
	var n graph.Node
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

func decodeEdgeGob(data []byte) (*graph.Edge, error) {
	var e graph.Edge
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (b *BadgerStore) PutNode(node *graph.Node) error {
	if node == nil || node.ID == "" {
		return ErrInvalidData
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	return b.db.Update(func(txn *badger.Txn) error {
		var old *graph.Node
		if item, err := txn.Get(nodeKey(node.ID)); err == nil {
			if err := item.Value(func(val []byte) error {
				var decErr error
				old, decErr = decodeNodeGob(val)
				return decErr
			}); err != nil {
				return err
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if old != nil {
			for _, label := range old.Labels {
				if err := txn.Delete(labelIndexKey(label, node.ID)); err != nil {
					return err
				}
			}
		}
		data, err := encodeGob(node)
		if err != nil {
			return fmt.Errorf("storage: encode node: %w", err)
		}
		if err := txn.Set(nodeKey(node.ID), data); err != nil {
			return err
		}
		for _, label := range node.Labels {
			if err := txn.Set(labelIndexKey(label, node.ID), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BadgerStore) GetNode(id graph.NodeID) (*graph.Node, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, false
	}
	var node *graph.Node
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decErr error
			node, decErr = decodeNodeGob(val)
			return decErr
		})
	})
	if err != nil {
		return nil, false
	}
	return node, true
}

func (b *BadgerStore) DeleteNode(id graph.NodeID) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	return b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var node *graph.Node
		if err := item.Value(func(val []byte) error {
			var decErr error
			node, decErr = decodeNodeGob(val)
			return decErr
		}); err != nil {
			return err
		}
		for _, label := range node.Labels {
			if err := txn.Delete(labelIndexKey(label, id)); err != nil {
				return err
			}
		}
		return txn.Delete(nodeKey(id))
	})
}

func (b *BadgerStore) AllNodes() []*graph.Node {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var nodes []*graph.Node
	_ = b.db.View(func(txn *badger.Txn) error {
		prefix := []byte{prefixNode}
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				n, err := decodeNodeGob(val)
				if err != nil {
					return nil
				}
				nodes = append(nodes, n)
				return nil
			}); err != nil {
				continue
			}
		}
		return nil
	})
	return nodes
}

func (b *BadgerStore) PutEdge(edge *graph.Edge) error {
	if edge == nil || edge.ID == "" {
		return ErrInvalidData
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if item, err := txn.Get(edgeKey(edge.ID)); err == nil {
			var old *graph.Edge
			if err := item.Value(func(val []byte) error {
				var decErr error
				old, decErr = decodeEdgeGob(val)
				return decErr
			}); err == nil && old != nil {
				if err := txn.Delete(outgoingIndexKey(old.From, old.ID)); err != nil {
					return err
				}
				if err := txn.Delete(incomingIndexKey(old.To, old.ID)); err != nil {
					return err
				}
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		data, err := encodeGob(edge)
		if err != nil {
			return fmt.Errorf("storage: encode edge: %w", err)
		}
		if err := txn.Set(edgeKey(edge.ID), data); err != nil {
			return err
		}
		if err := txn.Set(outgoingIndexKey(edge.From, edge.ID), []byte{}); err != nil {
			return err
		}
		return txn.Set(incomingIndexKey(edge.To, edge.ID), []byte{})
	})
}

func (b *BadgerStore) GetEdge(id graph.EdgeID) (*graph.Edge, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, false
	}
	var edge *graph.Edge
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(edgeKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decErr error
			edge, decErr = decodeEdgeGob(val)
			return decErr
		})
	})
	if err != nil {
		return nil, false
	}
	return edge, true
}

func (b *BadgerStore) DeleteEdge(id graph.EdgeID) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	return b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(edgeKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var edge *graph.Edge
		if err := item.Value(func(val []byte) error {
			var decErr error
			edge, decErr = decodeEdgeGob(val)
			return decErr
		}); err != nil {
			return err
		}
		if err := txn.Delete(outgoingIndexKey(edge.From, id)); err != nil {
			return err
		}
		if err := txn.Delete(incomingIndexKey(edge.To, id)); err != nil {
			return err
		}
		return txn.Delete(edgeKey(id))
	})
}

func (b *BadgerStore) AllEdges() []*graph.Edge {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var edges []*graph.Edge
	_ = b.db.View(func(txn *badger.Txn) error {
		prefix := []byte{prefixEdge}
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				e, err := decodeEdgeGob(val)
				if err != nil {
					return nil
				}
				edges = append(edges, e)
				return nil
			}); err != nil {
				continue
			}
		}
		return nil
	})
	return edges
}

func (b *BadgerStore) edgesByIndex(prefix []byte) []*graph.Edge {
	var edges []*graph.Edge
	_ = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id := graph.EdgeID(extractIDAfterSeparator(it.Item().Key()))
			if id == "" {
				continue
			}
			item, err := txn.Get(edgeKey(id))
			if err != nil {
				continue
			}
			if err := item.Value(func(val []byte) error {
				e, err := decodeEdgeGob(val)
				if err != nil {
					return nil
				}
				edges = append(edges, e)
				return nil
			}); err != nil {
				continue
			}
		}
		return nil
	})
	return edges
}

func (b *BadgerStore) EdgesFrom(id graph.NodeID) []*graph.Edge {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.edgesByIndex(outgoingIndexPrefix(id))
}

func (b *BadgerStore) EdgesTo(id graph.NodeID) []*graph.Edge {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.edgesByIndex(incomingIndexPrefix(id))
}

// NodesByLabel returns all nodes carrying label, via the label index.
func (b *BadgerStore) NodesByLabel(label string) []*graph.Node {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var nodes []*graph.Node
	_ = b.db.View(func(txn *badger.Txn) error {
		prefix := labelIndexPrefix(label)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id := graph.NodeID(extractIDAfterSeparator(it.Item().Key()))
			if id == "" {
				continue
			}
			item, err := txn.Get(nodeKey(id))
			if err != nil {
				continue
			}
			if err := item.Value(func(val []byte) error {
				n, err := decodeNodeGob(val)
				if err != nil {
					return nil
				}
				nodes = append(nodes, n)
				return nil
			}); err != nil {
				continue
			}
		}
		return nil
	})
	return nodes
}

func (b *BadgerStore) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.db.DropAll()
}

func (b *BadgerStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

var _ Store = (*BadgerStore)(nil)
