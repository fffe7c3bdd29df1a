package indexer

import (
	"io"
	"log/slog"
	"testing"

	"arkade.dev/assets/asset"
)

// memStore is a clone-based SnapshotStore for tests in this package (the
// encoding-backed stores live in indexer/store).
type memStore struct {
	snapshots map[int64]*State
}

func newMemStore() *memStore {
	return &memStore{snapshots: make(map[int64]*State)}
}

func (m *memStore) Save(height int64, st *State) error {
	m.snapshots[height] = st.Clone()
	return nil
}

func (m *memStore) Load(height int64) (*State, error) {
	st, ok := m.snapshots[height]
	if !ok {
		return nil, asset.Errorf(asset.STORE_ERR_SNAPSHOT_MISSING, "height %d", height)
	}
	return st.Clone(), nil
}

func (m *memStore) Latest() (int64, bool, error) {
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

func (m *memStore) Delete(height int64) error {
	delete(m.snapshots, height)
	return nil
}

func newTestIndexer(t *testing.T) (*Indexer, *memStore) {
	t.Helper()
	ms := newMemStore()
	ix, err := New(ms, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new indexer: %v", err)
	}
	var tick int64
	ix.now = func() int64 { tick++; return tick }
	return ix, ms
}

func testTxid(b byte) [32]byte {
	var id [32]byte
	for i := range id {
		id[i] = b
	}
	return id
}

// markerTx builds a host transaction with nOuts plain outputs followed by
// the marker output carrying p.
func markerTx(txid [32]byte, vin []asset.Outpoint, nOuts int, p *asset.Packet) *asset.Tx {
	tx := &asset.Tx{Txid: txid, Vin: vin}
	for n := 0; n < nOuts; n++ {
		tx.Vout = append(tx.Vout, asset.TxOut{N: uint32(n), ScriptPubKey: []byte{0x51}})
	}
	script := asset.BuildMarkerScript(asset.EncodePacket(p))
	tx.Vout = append(tx.Vout, asset.TxOut{N: uint32(nOuts), ScriptPubKey: script})
	return tx
}

// plainTx builds a host transaction with no marker output.
func plainTx(txid [32]byte, vin []asset.Outpoint, nOuts int) *asset.Tx {
	tx := &asset.Tx{Txid: txid, Vin: vin}
	for n := 0; n < nOuts; n++ {
		tx.Vout = append(tx.Vout, asset.TxOut{N: uint32(n), ScriptPubKey: []byte{0x51}})
	}
	return tx
}

func seedAsset(st *State, id asset.AssetID, control *asset.AssetID, immutable bool) {
	st.Assets[id] = AssetRecord{ControlAsset: control, Immutable: immutable}
}

func seedBalance(st *State, op asset.Outpoint, id asset.AssetID, amt uint64) {
	bal := st.Utxos[op]
	if bal == nil {
		bal = make(UtxoBalance)
		st.Utxos[op] = bal
	}
	bal[id] = amt
}

func wantCode(t *testing.T, err error, code asset.ErrorCode) {
	t.Helper()
	if asset.CodeOf(err) != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}
