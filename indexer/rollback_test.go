package indexer

import (
	"reflect"
	"testing"

	"arkade.dev/assets/asset"
)

func TestRollbackAtGenesisIsNoop(t *testing.T) {
	ix, _ := newTestIndexer(t)
	changed, err := ix.RollbackLastBlock()
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if changed {
		t.Fatal("pre-genesis rollback must be a no-op")
	}
}

func TestBasicReorg(t *testing.T) {
	ix, ms := newTestIndexer(t)

	// Height 0: one asset with 1000 units at (0xaa..., 0).
	genesis := issuanceTx(testTxid(0xaa), 1000)
	if err := ix.ApplyBlock(&asset.Block{Height: 0, Transactions: []asset.Tx{*genesis}}); err != nil {
		t.Fatalf("block 0: %v", err)
	}
	id := asset.AssetID{Txid: genesis.Txid, Gidx: 0}
	op := asset.Outpoint{Txid: genesis.Txid, Vout: 0}

	utxosBefore := ix.State().Clone().Utxos
	assetsBefore := ix.State().Clone().Assets

	// Height 1: split 1000 into 600 + 400.
	split := markerTx(testTxid(0xbb), []asset.Outpoint{op}, 2, &asset.Packet{
		Groups: []asset.Group{{
			AssetID: &id,
			Inputs:  []asset.AssetInput{{Vin: 0, Amt: 1000}},
			Outputs: []asset.AssetOutput{{Vout: 0, Amt: 600}, {Vout: 1, Amt: 400}},
		}},
	})
	if err := ix.ApplyBlock(&asset.Block{Height: 1, Transactions: []asset.Tx{*split}}); err != nil {
		t.Fatalf("block 1: %v", err)
	}
	if got := ix.State().Utxos[asset.Outpoint{Txid: split.Txid, Vout: 0}][id]; got != 600 {
		t.Fatalf("split balance: %d", got)
	}

	changed, err := ix.RollbackLastBlock()
	if err != nil || !changed {
		t.Fatalf("rollback: changed=%v err=%v", changed, err)
	}

	st := ix.State()
	if st.BlockHeight != 0 {
		t.Fatalf("height after rollback: %d", st.BlockHeight)
	}
	if got := st.Utxos[op][id]; got != 1000 {
		t.Fatalf("restored balance: %d", got)
	}
	if !reflect.DeepEqual(st.Utxos, utxosBefore) {
		t.Fatalf("utxos not restored:\n  %+v\n  %+v", st.Utxos, utxosBefore)
	}
	if !reflect.DeepEqual(st.Assets, assetsBefore) {
		t.Fatalf("assets not restored")
	}

	// The rolled-back transaction reappears in the mempool.
	rec, ok := st.Transactions[split.Txid]
	if !ok || rec.Status != StatusMempool {
		t.Fatalf("split tx record: ok=%v %+v", ok, rec)
	}
	// And the snapshot at the rolled-back height is gone.
	if _, ok := ms.snapshots[1]; ok {
		t.Fatal("snapshot 1 must be deleted")
	}

	// Speculation re-applies the rolled-back transaction.
	spec := ix.SpeculativeState()
	if got := spec.Utxos[asset.Outpoint{Txid: split.Txid, Vout: 0}][id]; got != 600 {
		t.Fatalf("speculative split balance: %d", got)
	}
}

func TestRollbackPreservesMempool(t *testing.T) {
	ix, _ := newTestIndexer(t)

	confirmed := issuanceTx(testTxid(0x40), 100)
	if err := ix.ApplyBlock(&asset.Block{Height: 0, Transactions: []asset.Tx{*confirmed}}); err != nil {
		t.Fatalf("block 0: %v", err)
	}

	held := issuanceTx(testTxid(0x41), 50)
	if err := ix.ApplyToMempool(held); err != nil {
		t.Fatalf("mempool: %v", err)
	}

	changed, err := ix.RollbackLastBlock()
	if err != nil || !changed {
		t.Fatalf("rollback: changed=%v err=%v", changed, err)
	}

	st := ix.State()
	if st.BlockHeight != -1 {
		t.Fatalf("height: %d", st.BlockHeight)
	}
	if rec := st.Transactions[held.Txid]; rec.Status != StatusMempool {
		t.Fatalf("held tx: %+v", rec)
	}
	if rec := st.Transactions[confirmed.Txid]; rec.Status != StatusMempool {
		t.Fatalf("rolled-back tx: %+v", rec)
	}
}

func TestRollbackThenReapply(t *testing.T) {
	ix, _ := newTestIndexer(t)

	genesis := issuanceTx(testTxid(0x42), 1000)
	blk := &asset.Block{Height: 0, Transactions: []asset.Tx{*genesis}}
	if err := ix.ApplyBlock(blk); err != nil {
		t.Fatalf("block 0: %v", err)
	}
	if _, err := ix.RollbackLastBlock(); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	// The same block can be mined again.
	if err := ix.ApplyBlock(blk); err != nil {
		t.Fatalf("re-apply: %v", err)
	}
	id := asset.AssetID{Txid: genesis.Txid, Gidx: 0}
	if got := ix.State().Supply(id); got != 1000 {
		t.Fatalf("supply: %d", got)
	}
	if rec := ix.State().Transactions[genesis.Txid]; rec.Status != StatusConfirmed {
		t.Fatalf("status: %+v", rec)
	}
}
