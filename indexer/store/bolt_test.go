package store

import (
	"reflect"
	"testing"

	"arkade.dev/assets/asset"
)

func TestBoltSaveLoad(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	st := sampleState()
	if err := db.Save(7, st); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := db.Load(7)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got.Utxos, st.Utxos) || !reflect.DeepEqual(got.Assets, st.Assets) {
		t.Fatal("loaded state mismatch")
	}
}

func TestBoltLoadMissing(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	_, err = db.Load(3)
	if asset.CodeOf(err) != asset.STORE_ERR_SNAPSHOT_MISSING {
		t.Fatalf("expected STORE_ERR_SNAPSHOT_MISSING, got %v", err)
	}
}

func TestBoltLatestAndDelete(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, found, err := db.Latest(); err != nil || found {
		t.Fatalf("empty store: found=%v err=%v", found, err)
	}

	genesis := sampleState()
	genesis.BlockHeight = -1
	if err := db.Save(-1, genesis); err != nil {
		t.Fatalf("save -1: %v", err)
	}
	tip := sampleState()
	tip.BlockHeight = 4
	if err := db.Save(4, tip); err != nil {
		t.Fatalf("save 4: %v", err)
	}

	h, found, err := db.Latest()
	if err != nil || !found || h != 4 {
		t.Fatalf("latest: h=%d found=%v err=%v", h, found, err)
	}

	if err := db.Delete(4); err != nil {
		t.Fatalf("delete: %v", err)
	}
	h, found, err = db.Latest()
	if err != nil || !found || h != -1 {
		t.Fatalf("latest after delete: h=%d found=%v err=%v", h, found, err)
	}
	if err := db.Delete(99); err != nil {
		t.Fatalf("deleting a missing snapshot must not fail: %v", err)
	}
}

func TestBoltSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	st := sampleState()
	if err := db.Save(2, st); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()

	got, err := db2.Load(2)
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if !reflect.DeepEqual(got.Utxos, st.Utxos) {
		t.Fatal("state lost across reopen")
	}
}

func TestMemoryStoreContract(t *testing.T) {
	m := NewMemory()

	if _, found, err := m.Latest(); err != nil || found {
		t.Fatalf("empty: found=%v err=%v", found, err)
	}
	st := sampleState()
	if err := m.Save(0, st); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := m.Load(0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got.Utxos, st.Utxos) {
		t.Fatal("state mismatch")
	}
	if _, err := m.Load(1); asset.CodeOf(err) != asset.STORE_ERR_SNAPSHOT_MISSING {
		t.Fatalf("expected STORE_ERR_SNAPSHOT_MISSING, got %v", err)
	}
	if err := m.Delete(0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := m.Latest(); found {
		t.Fatal("store must be empty after delete")
	}
}
