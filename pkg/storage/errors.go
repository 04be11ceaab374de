package storage

import "errors"

// Sentinel errors returned by Store, Indexes, WAL, and Snapshot operations.
// The transaction and query layers wrap them with richer context where
// needed.
var (
	ErrNotFound      = errors.New("storage: not found")
	ErrAlreadyExists = errors.New("storage: already exists")
	ErrInvalidID     = errors.New("storage: invalid id")
	ErrInvalidData   = errors.New("storage: invalid data")
	ErrClosed        = errors.New("storage: closed")

	ErrReferentialIntegrity = errors.New("storage: edge references a missing node")

	ErrWALClosed     = errors.New("wal: closed")
	ErrCorruptRecord = errors.New("wal: corrupt record")

	ErrNoSnapshot    = errors.New("snapshot: none present")
	ErrSnapshotError = errors.New("snapshot: read/write failure")

	ErrCoordinatorPoisoned = errors.New("storage: coordinator poisoned by a prior apply failure")

	// ErrInvalidTransactionState is returned by Commit or Rollback when tx
	// has already left the open state: a transaction already committed or
	// rolled back is immutable and cannot be committed or rolled back again.
	ErrInvalidTransactionState = errors.New("storage: commit or rollback on a non-open transaction")
)
