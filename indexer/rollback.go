package indexer

import (
	"errors"

	"arkade.dev/assets/asset"
	"arkade.dev/assets/indexer/metrics"
)

// RollbackLastBlock undoes the latest block: the prior snapshot becomes the
// committed state, transactions confirmed by the rolled-back block move back
// into the mempool, and mempool transactions held before the rollback are
// preserved. Returns false (and no change) at the pre-genesis state.
func (ix *Indexer) RollbackLastBlock() (bool, error) {
	height := ix.state.BlockHeight
	if height <= -1 {
		return false, nil
	}

	prev, err := ix.store.Load(height - 1)
	if err != nil {
		var ae *asset.Error
		if height-1 == -1 && errors.As(err, &ae) && ae.Code == asset.STORE_ERR_SNAPSHOT_MISSING {
			prev = NewState()
		} else {
			return false, err
		}
	}

	// Transactions confirmed by the rolled-back block re-enter the mempool
	// so they can be re-mined; held mempool transactions are preserved.
	for txid, rec := range ix.state.Transactions {
		switch rec.Status {
		case StatusConfirmed:
			if _, known := prev.Transactions[txid]; !known {
				rec.Status = StatusMempool
				prev.Transactions[txid] = rec
			}
		case StatusMempool:
			prev.Transactions[txid] = rec
		}
	}

	if err := ix.store.Delete(height); err != nil {
		return false, err
	}
	prev.BlockHeight = height - 1
	if err := ix.store.Save(height-1, prev); err != nil {
		return false, err
	}
	ix.state = prev

	metrics.RollbacksTotal.Inc()
	metrics.TipHeight.Set(float64(prev.BlockHeight))
	metrics.MempoolSize.Set(float64(ix.mempoolCount()))
	ix.logger.Info("block rolled back", "height", height, "new_height", prev.BlockHeight)
	return true, nil
}
