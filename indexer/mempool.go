package indexer

import (
	"sort"

	"arkade.dev/assets/asset"
	"arkade.dev/assets/indexer/metrics"
)

// SpeculativeState clones the confirmed state and tentatively applies every
// mempool transaction in acceptance order (ProcessedAt, then txid). A
// transaction that no longer applies is skipped but stays recorded.
func (ix *Indexer) SpeculativeState() *State {
	spec := ix.state.Clone()

	type entry struct {
		txid [32]byte
		rec  TxRecord
	}
	var pending []entry
	for txid, rec := range ix.state.Transactions {
		if rec.Status == StatusMempool {
			pending = append(pending, entry{txid: txid, rec: rec})
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].rec.ProcessedAt != pending[j].rec.ProcessedAt {
			return pending[i].rec.ProcessedAt < pending[j].rec.ProcessedAt
		}
		return asset.Hex32(pending[i].txid) < asset.Hex32(pending[j].txid)
	})

	for i := range pending {
		tx := pending[i].rec.Tx
		if err := ix.ApplyTx(spec, &tx, false); err != nil {
			ix.logger.Debug("mempool tx skipped in speculation",
				"txid", asset.Hex32(tx.Txid), "err", err)
		}
	}
	return spec
}

// ApplyToMempool validates tx against the speculative state and, on success,
// records it with mempool status. Known txids are deduplicated.
func (ix *Indexer) ApplyToMempool(tx *asset.Tx) error {
	if _, known := ix.state.Transactions[tx.Txid]; known {
		return nil
	}

	spec := ix.SpeculativeState()
	if err := ix.applyTxAtomic(spec, tx, false, true); err != nil {
		return err
	}

	ix.state.Transactions[tx.Txid] = TxRecord{
		Tx:          *tx,
		Status:      StatusMempool,
		ProcessedAt: ix.now(),
	}
	metrics.MempoolSize.Set(float64(ix.mempoolCount()))
	ix.logger.Info("tx accepted to mempool", "txid", asset.Hex32(tx.Txid))
	return nil
}
