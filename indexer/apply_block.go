package indexer

import (
	"arkade.dev/assets/asset"
	"arkade.dev/assets/indexer/metrics"
)

// ApplyBlock applies a block atomically: transactions run in dependency
// order against a clone of the confirmed state, and the clone is committed
// and persisted only when every transaction applies.
func (ix *Indexer) ApplyBlock(blk *asset.Block) error {
	if blk.Height != ix.state.BlockHeight+1 {
		return aerrf(asset.BLOCK_ERR_HEIGHT_GAP, "expected %d, got %d", ix.state.BlockHeight+1, blk.Height)
	}

	order, err := topoSort(blk.Transactions)
	if err != nil {
		return err
	}

	work := ix.state.Clone()

	// Mempool transactions included in this block become confirmed.
	for i := range blk.Transactions {
		txid := blk.Transactions[i].Txid
		if rec, ok := work.Transactions[txid]; ok && rec.Status == StatusMempool {
			rec.Status = StatusConfirmed
			work.Transactions[txid] = rec
		}
	}

	for _, idx := range order {
		tx := &blk.Transactions[idx]
		if err := ix.applyTx(work, tx, true, true); err != nil {
			ix.logger.Warn("block rejected", "height", blk.Height,
				"txid", asset.Hex32(tx.Txid), "err", err)
			metrics.TxRejectedTotal.WithLabelValues(string(asset.CodeOf(err))).Inc()
			return err
		}
		metrics.TxAppliedTotal.WithLabelValues(string(StatusConfirmed)).Inc()
	}

	work.BlockHeight = blk.Height
	if err := ix.store.Save(blk.Height, work); err != nil {
		return err
	}
	ix.state = work

	metrics.BlocksAppliedTotal.Inc()
	metrics.TipHeight.Set(float64(blk.Height))
	metrics.MempoolSize.Set(float64(ix.mempoolCount()))
	ix.logger.Info("block applied", "height", blk.Height, "txs", len(blk.Transactions))
	return nil
}
