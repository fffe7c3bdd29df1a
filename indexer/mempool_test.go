package indexer

import (
	"testing"

	"arkade.dev/assets/asset"
)

func TestMempoolAcceptAndSpeculate(t *testing.T) {
	ix, _ := newTestIndexer(t)

	tx := issuanceTx(testTxid(0x50), 100)
	if err := ix.ApplyToMempool(tx); err != nil {
		t.Fatalf("accept: %v", err)
	}

	id := asset.AssetID{Txid: tx.Txid, Gidx: 0}
	if got := ix.State().Supply(id); got != 0 {
		t.Fatalf("confirmed supply must be untouched: %d", got)
	}
	spec := ix.SpeculativeState()
	if got := spec.Supply(id); got != 100 {
		t.Fatalf("speculative supply: %d", got)
	}
}

func TestMempoolDeduplicates(t *testing.T) {
	ix, _ := newTestIndexer(t)
	tx := issuanceTx(testTxid(0x51), 100)

	if err := ix.ApplyToMempool(tx); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := ix.ApplyToMempool(tx); err != nil {
		t.Fatalf("duplicate accept must be a no-op: %v", err)
	}
	if n := ix.mempoolCount(); n != 1 {
		t.Fatalf("mempool count: %d", n)
	}
}

func TestMempoolChainedSpend(t *testing.T) {
	ix, _ := newTestIndexer(t)

	genesis := issuanceTx(testTxid(0x52), 100)
	if err := ix.ApplyToMempool(genesis); err != nil {
		t.Fatalf("genesis: %v", err)
	}

	id := asset.AssetID{Txid: genesis.Txid, Gidx: 0}
	spend := transferTx(testTxid(0x53), asset.Outpoint{Txid: genesis.Txid, Vout: 0}, id, 100)
	if err := ix.ApplyToMempool(spend); err != nil {
		t.Fatalf("chained spend: %v", err)
	}

	spec := ix.SpeculativeState()
	if got := spec.Utxos[asset.Outpoint{Txid: spend.Txid, Vout: 0}][id]; got != 100 {
		t.Fatalf("speculative balance: %d", got)
	}
}

func TestMempoolRejectsInvalid(t *testing.T) {
	ix, _ := newTestIndexer(t)
	a := asset.AssetID{Txid: testTxid(0x70), Gidx: 0}
	seedAsset(ix.State(), a, nil, false)

	tx := markerTx(testTxid(0x54), []asset.Outpoint{{Txid: testTxid(0xf0), Vout: 0}}, 1, &asset.Packet{
		Groups: []asset.Group{{
			AssetID: &a,
			Inputs:  []asset.AssetInput{{Vin: 0, Amt: 10}},
			Outputs: []asset.AssetOutput{{Vout: 0, Amt: 10}},
		}},
	})
	err := ix.ApplyToMempool(tx)
	wantCode(t, err, asset.TX_ERR_INPUT_EXCEEDS_STORED)
	if _, known := ix.State().Transactions[tx.Txid]; known {
		t.Fatal("rejected tx must not be recorded")
	}
}

// A mempool transaction whose inputs get confirmed away is skipped by
// speculation but stays recorded.
func TestSpeculationSkipsConflicting(t *testing.T) {
	ix, _ := newTestIndexer(t)

	genesis := issuanceTx(testTxid(0x55), 100)
	if err := ix.ApplyBlock(&asset.Block{Height: 0, Transactions: []asset.Tx{*genesis}}); err != nil {
		t.Fatalf("block 0: %v", err)
	}
	id := asset.AssetID{Txid: genesis.Txid, Gidx: 0}
	op := asset.Outpoint{Txid: genesis.Txid, Vout: 0}

	pending := transferTx(testTxid(0x56), op, id, 100)
	if err := ix.ApplyToMempool(pending); err != nil {
		t.Fatalf("mempool: %v", err)
	}

	// A competing confirmed spend consumes the same outpoint.
	competing := transferTx(testTxid(0x57), op, id, 100)
	if err := ix.ApplyBlock(&asset.Block{Height: 1, Transactions: []asset.Tx{*competing}}); err != nil {
		t.Fatalf("block 1: %v", err)
	}

	spec := ix.SpeculativeState()
	if got := spec.Utxos[asset.Outpoint{Txid: pending.Txid, Vout: 0}][id]; got != 0 {
		t.Fatalf("conflicting mempool tx must be skipped, got %d", got)
	}
	if rec := ix.State().Transactions[pending.Txid]; rec.Status != StatusMempool {
		t.Fatalf("pending tx must stay recorded: %+v", rec)
	}
}
