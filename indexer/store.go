package indexer

// SnapshotStore persists one State snapshot per block height. A committed
// snapshot must survive process restart before a later Load may observe it.
type SnapshotStore interface {
	// Load returns the snapshot stored at height, or a
	// STORE_ERR_SNAPSHOT_MISSING error when none exists.
	Load(height int64) (*State, error)

	// Latest reports the highest stored snapshot height, false when the
	// store is empty.
	Latest() (int64, bool, error)

	// Save persists st under height.
	Save(height int64, st *State) error

	// Delete removes the snapshot at height. Deleting a missing snapshot is
	// not an error.
	Delete(height int64) error
}
