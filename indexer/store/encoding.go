package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"arkade.dev/assets/asset"
	"arkade.dev/assets/indexer"
)

const snapshotSchemaVersion = 1

// Snapshot document. Amounts and timestamps travel as decimal strings to
// avoid 64-bit precision loss in interchange formats.

type assetIDDisk struct {
	Txid string `json:"txid"`
	Gidx uint16 `json:"gidx"`
}

type metadataEntryDisk struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type assetRecordDisk struct {
	ID        assetIDDisk         `json:"id"`
	Control   *assetIDDisk        `json:"control,omitempty"`
	Metadata  []metadataEntryDisk `json:"metadata"`
	Immutable bool                `json:"immutable"`
}

type balanceDisk struct {
	Asset  assetIDDisk `json:"asset"`
	Amount string      `json:"amount"`
}

type utxoDisk struct {
	Txid     string        `json:"txid"`
	Vout     uint32        `json:"vout"`
	Balances []balanceDisk `json:"balances"`
}

type txRecordDisk struct {
	Txid        string       `json:"txid"`
	Status      string       `json:"status"`
	ProcessedAt string       `json:"processed_at"`
	Tx          asset.TxJSON `json:"tx"`
}

type snapshotDisk struct {
	Version      uint32            `json:"version"`
	BlockHeight  int64             `json:"block_height"`
	Assets       []assetRecordDisk `json:"assets"`
	Utxos        []utxoDisk        `json:"utxos"`
	Transactions []txRecordDisk    `json:"transactions"`
}

func assetIDToDisk(id asset.AssetID) assetIDDisk {
	return assetIDDisk{Txid: asset.Hex32(id.Txid), Gidx: id.Gidx}
}

func assetIDFromDisk(d assetIDDisk) (asset.AssetID, error) {
	txid, err := asset.ParseHex32(d.Txid)
	if err != nil {
		return asset.AssetID{}, err
	}
	return asset.AssetID{Txid: txid, Gidx: d.Gidx}, nil
}

func metadataToDisk(m asset.Metadata) []metadataEntryDisk {
	out := make([]metadataEntryDisk, 0, len(m))
	for _, e := range m {
		out = append(out, metadataEntryDisk{Key: e.Key, Value: e.Value})
	}
	return out
}

func metadataFromDisk(d []metadataEntryDisk) asset.Metadata {
	if len(d) == 0 {
		return nil
	}
	out := make(asset.Metadata, 0, len(d))
	for _, e := range d {
		out = append(out, asset.MetadataEntry{Key: e.Key, Value: e.Value})
	}
	return out
}

// EncodeSnapshot serialises st as the canonical snapshot document. Map
// iteration order is erased by sorting, so equal states produce equal bytes.
func EncodeSnapshot(st *indexer.State) ([]byte, error) {
	disk := snapshotDisk{
		Version:      snapshotSchemaVersion,
		BlockHeight:  st.BlockHeight,
		Assets:       make([]assetRecordDisk, 0, len(st.Assets)),
		Utxos:        make([]utxoDisk, 0, len(st.Utxos)),
		Transactions: make([]txRecordDisk, 0, len(st.Transactions)),
	}

	for id, rec := range st.Assets {
		d := assetRecordDisk{
			ID:        assetIDToDisk(id),
			Metadata:  metadataToDisk(rec.Metadata),
			Immutable: rec.Immutable,
		}
		if rec.ControlAsset != nil {
			ctrl := assetIDToDisk(*rec.ControlAsset)
			d.Control = &ctrl
		}
		disk.Assets = append(disk.Assets, d)
	}
	sort.Slice(disk.Assets, func(i, j int) bool {
		if disk.Assets[i].ID.Txid != disk.Assets[j].ID.Txid {
			return disk.Assets[i].ID.Txid < disk.Assets[j].ID.Txid
		}
		return disk.Assets[i].ID.Gidx < disk.Assets[j].ID.Gidx
	})

	for op, bal := range st.Utxos {
		u := utxoDisk{
			Txid:     asset.Hex32(op.Txid),
			Vout:     op.Vout,
			Balances: make([]balanceDisk, 0, len(bal)),
		}
		for id, amt := range bal {
			u.Balances = append(u.Balances, balanceDisk{
				Asset:  assetIDToDisk(id),
				Amount: strconv.FormatUint(amt, 10),
			})
		}
		sort.Slice(u.Balances, func(i, j int) bool {
			if u.Balances[i].Asset.Txid != u.Balances[j].Asset.Txid {
				return u.Balances[i].Asset.Txid < u.Balances[j].Asset.Txid
			}
			return u.Balances[i].Asset.Gidx < u.Balances[j].Asset.Gidx
		})
		disk.Utxos = append(disk.Utxos, u)
	}
	sort.Slice(disk.Utxos, func(i, j int) bool {
		if disk.Utxos[i].Txid != disk.Utxos[j].Txid {
			return disk.Utxos[i].Txid < disk.Utxos[j].Txid
		}
		return disk.Utxos[i].Vout < disk.Utxos[j].Vout
	})

	for txid, rec := range st.Transactions {
		tx := rec.Tx
		disk.Transactions = append(disk.Transactions, txRecordDisk{
			Txid:        asset.Hex32(txid),
			Status:      string(rec.Status),
			ProcessedAt: strconv.FormatInt(rec.ProcessedAt, 10),
			Tx:          tx.JSON(),
		})
	}
	sort.Slice(disk.Transactions, func(i, j int) bool {
		return disk.Transactions[i].Txid < disk.Transactions[j].Txid
	})

	return json.Marshal(disk)
}

// DecodeSnapshot parses a snapshot document back into a State.
func DecodeSnapshot(b []byte) (*indexer.State, error) {
	var disk snapshotDisk
	if err := json.Unmarshal(b, &disk); err != nil {
		return nil, fmt.Errorf("snapshot json: %w", err)
	}
	if disk.Version > snapshotSchemaVersion {
		return nil, fmt.Errorf("snapshot version %d > supported %d", disk.Version, snapshotSchemaVersion)
	}

	st := indexer.NewState()
	st.BlockHeight = disk.BlockHeight

	for _, d := range disk.Assets {
		id, err := assetIDFromDisk(d.ID)
		if err != nil {
			return nil, fmt.Errorf("asset id: %w", err)
		}
		rec := indexer.AssetRecord{
			Metadata:  metadataFromDisk(d.Metadata),
			Immutable: d.Immutable,
		}
		if d.Control != nil {
			ctrl, err := assetIDFromDisk(*d.Control)
			if err != nil {
				return nil, fmt.Errorf("control id: %w", err)
			}
			rec.ControlAsset = &ctrl
		}
		st.Assets[id] = rec
	}

	for _, u := range disk.Utxos {
		txid, err := asset.ParseHex32(u.Txid)
		if err != nil {
			return nil, fmt.Errorf("utxo txid: %w", err)
		}
		bal := make(indexer.UtxoBalance, len(u.Balances))
		for _, b := range u.Balances {
			id, err := assetIDFromDisk(b.Asset)
			if err != nil {
				return nil, fmt.Errorf("balance asset: %w", err)
			}
			amt, err := strconv.ParseUint(b.Amount, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("balance amount %q: %w", b.Amount, err)
			}
			if amt == 0 {
				return nil, fmt.Errorf("zero balance for asset %s", b.Asset.Txid)
			}
			bal[id] = amt
		}
		if len(bal) > 0 {
			st.Utxos[asset.Outpoint{Txid: txid, Vout: u.Vout}] = bal
		}
	}

	for _, t := range disk.Transactions {
		txid, err := asset.ParseHex32(t.Txid)
		if err != nil {
			return nil, fmt.Errorf("tx txid: %w", err)
		}
		processedAt, err := strconv.ParseInt(t.ProcessedAt, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("processed_at %q: %w", t.ProcessedAt, err)
		}
		tx, err := asset.TxFromJSON(t.Tx)
		if err != nil {
			return nil, fmt.Errorf("tx body: %w", err)
		}
		st.Transactions[txid] = indexer.TxRecord{
			Tx:          *tx,
			Status:      indexer.TxStatus(t.Status),
			ProcessedAt: processedAt,
		}
	}

	return st, nil
}
