package storage

import (
	"sync"
	"time"
)

// Coordinator is the process-wide serialization point for commits and
// rollbacks: every call enters a single critical section, so the WAL is
// appended in exactly the order transactions commit and Store/Indexes
// are never mutated by two transactions at once.
type Coordinator struct {
	mu    sync.Mutex
	store Store
	ix    *Indexes
	wal   *WAL

	lastTxID string
	poisoned bool

	// txStates tracks every transaction id this Coordinator has seen reach
	// TxCommitted or TxRolledBack. Transaction is an immutable, caller-held
	// value (see transaction.go), so this map is the only authoritative
	// record of a transaction's lifecycle state: it is what lets Commit and
	// Rollback reject a second call against the same id regardless of how
	// many copies of the Transaction value the caller still holds.
	txStates map[string]TxState
}

// NewCoordinator builds a Coordinator over store, ix, and wal. wal may be
// nil, in which case commits skip the durability step entirely (useful
// for a pure in-memory engine with no persistence configured).
func NewCoordinator(store Store, ix *Indexes, wal *WAL) *Coordinator {
	return &Coordinator{store: store, ix: ix, wal: wal, txStates: make(map[string]TxState)}
}

// Commit runs the commit protocol: append the forward-ordered log record,
// then apply every forward op to Store and Indexes. A WAL durability
// failure aborts before anything is applied. An apply failure after a
// successful append (e.g. an edge whose endpoint vanished) poisons the
// Coordinator: the log record is already durable and cannot be withdrawn,
// so further commits are refused rather than risk a Store silently
// diverging from the WAL (see design notes on apply-time failure policy).
//
// A transaction id that has already reached TxCommitted or TxRolledBack is
// immutable (I4): a second Commit against it is rejected with
// ErrInvalidTransactionState before the WAL or Store are touched.
func (c *Coordinator) Commit(tx Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned {
		return ErrCoordinatorPoisoned
	}
	if _, done := c.txStates[tx.TxID]; done {
		return ErrInvalidTransactionState
	}

	if c.wal != nil {
		record := LogRecord{TxID: tx.TxID, Ops: tx.Forward, Timestamp: time.Now()}
		if err := c.wal.Append(record); err != nil {
			return err
		}
	}

	for _, op := range tx.Forward {
		if err := op.Apply(c.store, c.ix); err != nil {
			c.poisoned = true
			return err
		}
	}

	c.lastTxID = tx.TxID
	c.txStates[tx.TxID] = TxCommitted
	return nil
}

// Rollback runs the rollback protocol: apply every undo op, in the
// transaction's own apply-reverse order, to Store and Indexes. No WAL
// record is written. Rollback is only meaningful for a transaction that
// was never committed; since its forward ops were never applied, every
// undo op here is an idempotent no-op against the current Store state
// (undoing a creation that never happened deletes an absent id; undoing
// an update that never happened rewrites the same pre-image), so Store
// and Indexes end up bit-identical to their pre-build state, matching
// the never-applied invariant.
//
// A transaction id that has already reached TxCommitted or TxRolledBack is
// immutable (I4): rolling back an already-committed transaction would undo
// durable, acknowledged changes, so it is rejected with
// ErrInvalidTransactionState instead.
func (c *Coordinator) Rollback(tx Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, done := c.txStates[tx.TxID]; done {
		return ErrInvalidTransactionState
	}

	for _, op := range tx.Undo {
		if err := op.Apply(c.store, c.ix); err != nil {
			return err
		}
	}
	c.txStates[tx.TxID] = TxRolledBack
	return nil
}

// LastTxID returns the id of the most recently committed transaction.
func (c *Coordinator) LastTxID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTxID
}

// Snapshot runs the snapshot protocol inside the Coordinator's critical
// section so no commit can interleave: capture last_tx_id, write the
// snapshot, then truncate the WAL up to that point.
func (c *Coordinator) Snapshot(dir string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := CreateSnapshot(dir, c.store, c.lastTxID); err != nil {
		return err
	}
	if c.wal == nil {
		return nil
	}
	// Every record currently in the log was committed at or before
	// lastTxID, since Snapshot runs inside the same critical section as
	// Commit: nothing newer could have been appended concurrently.
	return c.wal.Truncate(func(LogRecord) bool { return false })
}
