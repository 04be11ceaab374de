// Write-ahead logging for NornicDB durability.
//
// The log is an append-only file of length-prefixed, gob-encoded
// LogRecords: a 4-byte big-endian size followed by that many bytes of
// payload. A single writer (the transaction Coordinator) issues appends
// strictly in commit order; readers replay from the beginning.
package storage

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogRecord is the unit of WAL durability: one committed transaction's
// forward operations, in application order.
type LogRecord struct {
	TxID      string
	Ops       []Op
	Timestamp time.Time
}

const walFileName = "wal.log"

// WAL is an append-only, length-prefixed record log backed by a single
// file. Appends are fsynced before returning, so a successful Append call
// guarantees the record survives a crash.
type WAL struct {
	mu     sync.Mutex
	dir    string
	file   *os.File
	closed bool
}

// OpenWAL opens (creating if necessary) the write-ahead log rooted at dir.
func OpenWAL(dir string) (*WAL, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, walFileName), os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return &WAL{dir: dir, file: f}, nil
}

// Dir returns the directory the log file lives in.
func (w *WAL) Dir() string {
	return w.dir
}

// Append serializes record and writes it as a single length-prefixed
// frame, fsyncing before returning. A crash before Append returns may or
// may not have persisted the record; a crash after it returns must have.
func (w *WAL) Append(record LogRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWALClosed
	}

	payload, err := encodeGob(record)
	if err != nil {
		return err
	}
	var sizeBuf [4]byte
	binary.BigEndian.PutUint32(sizeBuf[:], uint32(len(payload)))

	if _, err := w.file.Write(sizeBuf[:]); err != nil {
		return err
	}
	if _, err := w.file.Write(payload); err != nil {
		return err
	}
	return w.file.Sync()
}

// Replay reads every complete record from the beginning of the log and
// invokes fn for each, in file order. A truncated trailing record (a
// partial size prefix, or a payload shorter than its declared size) ends
// replay cleanly without error; that tail was never a durable Append. A
// record whose full, correctly-length-prefixed payload fails to decode is a
// different failure: bit corruption of a record that was durably appended,
// which can hide committed data anywhere in the log, not just at the tail.
// Replay treats that as fatal and returns ErrCorruptRecord rather than
// silently dropping it and everything after it.
func Replay(dir string, fn func(LogRecord) error) error {
	f, err := os.Open(filepath.Join(dir, walFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		var sizeBuf [4]byte
		if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
			return nil // clean EOF or truncated prefix: stop
		}
		size := binary.BigEndian.Uint32(sizeBuf[:])
		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil // truncated trailing record: stop
		}

		var record LogRecord
		if err := decodeGobInto(payload, &record); err != nil {
			return ErrCorruptRecord // full payload, bad bytes: abort replay
		}
		if err := fn(record); err != nil {
			return err
		}
	}
}

// Truncate rewrites the log to contain only records for which keep
// returns true. Called immediately after a snapshot, discarding
// everything the snapshot already captured. The WAL's own file handle is
// closed and reopened against the replaced file, so subsequent Appends
// land in the new file rather than the unlinked old one.
func (w *WAL) Truncate(keep func(LogRecord) bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWALClosed
	}

	oldPath := filepath.Join(w.dir, walFileName)
	tmpPath := oldPath + ".tmp"

	tmp, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	writeErr := Replay(w.dir, func(r LogRecord) error {
		if !keep(r) {
			return nil
		}
		payload, err := encodeGob(r)
		if err != nil {
			return err
		}
		var sizeBuf [4]byte
		binary.BigEndian.PutUint32(sizeBuf[:], uint32(len(payload)))
		if _, err := tmp.Write(sizeBuf[:]); err != nil {
			return err
		}
		_, err = tmp.Write(payload)
		return err
	})
	if writeErr != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return writeErr
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, oldPath); err != nil {
		return err
	}

	if err := w.file.Close(); err != nil {
		return err
	}
	f, err := os.OpenFile(oldPath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	w.file = f
	return nil
}

// Reset empties the log. Test and administrative use only.
func (w *WAL) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWALClosed
	}
	if err := w.file.Truncate(0); err != nil {
		return err
	}
	_, err := w.file.Seek(0, io.SeekStart)
	return err
}

// Close flushes and closes the underlying file.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

func decodeGobInto(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
