package storage

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/orneryd/nornicdb/pkg/graph"
)

const (
	snapshotDataFile = "snapshot.bin"
	snapshotMetaFile = "snapshot.meta"
)

// SnapshotMeta is the small metadata record written alongside a snapshot's
// data file: the last transaction id the snapshot reflects, and the wall
// clock time CreateSnapshot was called.
type SnapshotMeta struct {
	LastTxID  string
	Timestamp time.Time
}

type snapshotData struct {
	Nodes []*graph.Node
	Edges []*graph.Edge
}

// CreateSnapshot atomically serializes every live node and edge in store,
// plus lastTxID, to dir. Both files are written to temp names and renamed
// into place last, so a reader never observes a half-written snapshot.
func CreateSnapshot(dir string, store Store, lastTxID string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data := snapshotData{Nodes: store.AllNodes(), Edges: store.AllEdges()}
	if err := writeAtomicGob(filepath.Join(dir, snapshotDataFile), data); err != nil {
		return ErrSnapshotError
	}
	meta := SnapshotMeta{LastTxID: lastTxID, Timestamp: time.Now()}
	if err := writeAtomicGob(filepath.Join(dir, snapshotMetaFile), meta); err != nil {
		return ErrSnapshotError
	}
	return nil
}

// LoadSnapshot reads dir's snapshot, restoring every node and edge into
// store and returning the recorded last-committed transaction id. It
// reports ErrNoSnapshot if either file is absent.
func LoadSnapshot(dir string, store Store) (SnapshotMeta, error) {
	dataPath := filepath.Join(dir, snapshotDataFile)
	metaPath := filepath.Join(dir, snapshotMetaFile)

	if _, err := os.Stat(dataPath); err != nil {
		return SnapshotMeta{}, ErrNoSnapshot
	}
	if _, err := os.Stat(metaPath); err != nil {
		return SnapshotMeta{}, ErrNoSnapshot
	}

	var data snapshotData
	if err := readGob(dataPath, &data); err != nil {
		return SnapshotMeta{}, ErrSnapshotError
	}
	var meta SnapshotMeta
	if err := readGob(metaPath, &meta); err != nil {
		return SnapshotMeta{}, ErrSnapshotError
	}

	store.Clear()
	for _, n := range data.Nodes {
		if err := store.PutNode(n); err != nil {
			return SnapshotMeta{}, err
		}
	}
	for _, e := range data.Edges {
		if err := store.PutEdge(e); err != nil {
			return SnapshotMeta{}, err
		}
	}
	return meta, nil
}

func writeAtomicGob(path string, v any) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}
