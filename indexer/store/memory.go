package store

import (
	"arkade.dev/assets/asset"
	"arkade.dev/assets/indexer"
)

// Memory is a non-persistent SnapshotStore for tests and repro tooling.
// Snapshots pass through the canonical document encoding so the in-memory
// and bbolt stores agree byte for byte.
type Memory struct {
	snapshots map[int64][]byte
}

func NewMemory() *Memory {
	return &Memory{snapshots: make(map[int64][]byte)}
}

func (m *Memory) Save(height int64, st *indexer.State) error {
	doc, err := EncodeSnapshot(st)
	if err != nil {
		return err
	}
	m.snapshots[height] = doc
	return nil
}

func (m *Memory) Load(height int64) (*indexer.State, error) {
	doc, ok := m.snapshots[height]
	if !ok {
		return nil, asset.Errorf(asset.STORE_ERR_SNAPSHOT_MISSING, "height %d", height)
	}
	return DecodeSnapshot(doc)
}

func (m *Memory) Latest() (int64, bool, error) {
	var best int64
	found := false
	for h := range m.snapshots {
		if !found || h > best {
			best = h
			found = true
		}
	}
	return best, found, nil
}

func (m *Memory) Delete(height int64) error {
	delete(m.snapshots, height)
	return nil
}

// Snapshot returns the raw stored document, for tests asserting bit-equal
// restoration across apply/rollback.
func (m *Memory) Snapshot(height int64) ([]byte, bool) {
	doc, ok := m.snapshots[height]
	return doc, ok
}
