package indexer

import "arkade.dev/assets/asset"

type TxStatus string

const (
	StatusMempool   TxStatus = "mempool"
	StatusConfirmed TxStatus = "confirmed"
)

// TxRecord remembers a processed transaction body with its status.
type TxRecord struct {
	Tx          asset.Tx
	Status      TxStatus
	ProcessedAt int64
}

// AssetRecord is the per-asset control/metadata record. Records are created
// on first apply of a genesis group and never deleted, even after the whole
// supply has been burned.
type AssetRecord struct {
	ControlAsset *asset.AssetID
	Metadata     asset.Metadata
	Immutable    bool
}

// UtxoBalance maps asset id -> non-zero amount held by one outpoint. A
// balance map is absent from State.Utxos rather than present and empty.
type UtxoBalance map[asset.AssetID]uint64

// State is the complete asset-layer view of the chain at one height.
type State struct {
	Assets       map[asset.AssetID]AssetRecord
	Utxos        map[asset.Outpoint]UtxoBalance
	Transactions map[[32]byte]TxRecord
	BlockHeight  int64
}

// NewState returns the pre-genesis state at height -1.
func NewState() *State {
	return &State{
		Assets:       make(map[asset.AssetID]AssetRecord),
		Utxos:        make(map[asset.Outpoint]UtxoBalance),
		Transactions: make(map[[32]byte]TxRecord),
		BlockHeight:  -1,
	}
}

// Clone returns a deep copy. Transaction bodies are immutable once recorded
// and are shared between clones.
func (s *State) Clone() *State {
	out := &State{
		Assets:       make(map[asset.AssetID]AssetRecord, len(s.Assets)),
		Utxos:        make(map[asset.Outpoint]UtxoBalance, len(s.Utxos)),
		Transactions: make(map[[32]byte]TxRecord, len(s.Transactions)),
		BlockHeight:  s.BlockHeight,
	}
	for id, rec := range s.Assets {
		cp := rec
		cp.Metadata = rec.Metadata.Clone()
		if rec.ControlAsset != nil {
			ctrl := *rec.ControlAsset
			cp.ControlAsset = &ctrl
		}
		out.Assets[id] = cp
	}
	for op, bal := range s.Utxos {
		m := make(UtxoBalance, len(bal))
		for id, amt := range bal {
			m[id] = amt
		}
		out.Utxos[op] = m
	}
	for txid, rec := range s.Transactions {
		out.Transactions[txid] = rec
	}
	return out
}

// Supply sums the outstanding amount of one asset across all outpoints.
func (s *State) Supply(id asset.AssetID) uint64 {
	var total uint64
	for _, bal := range s.Utxos {
		total += bal[id]
	}
	return total
}
