package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/sha3"

	"arkade.dev/assets/asset"
	"arkade.dev/assets/indexer"
)

var bucketSnapshots = []byte("snapshots_by_height")

// Bolt is a bbolt-backed SnapshotStore. Each snapshot is one record:
// sha3-256 checksum of the document, then the zstd-compressed document.
type Bolt struct {
	db  *bolt.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open creates or opens the snapshot database under datadir.
func Open(datadir string) (*Bolt, error) {
	if datadir == "" {
		return nil, fmt.Errorf("datadir required")
	}
	if err := os.MkdirAll(datadir, 0o750); err != nil {
		return nil, err
	}

	path := filepath.Join(datadir, "snapshots.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}

	if err := bdb.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		return err
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		_ = bdb.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return &Bolt{db: bdb, enc: enc, dec: dec}, nil
}

func (s *Bolt) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// heightKey biases heights by one so the pre-genesis snapshot (-1) sorts
// first under big-endian key order.
func heightKey(height int64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], uint64(height+1))
	return key[:]
}

func keyHeight(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key)) - 1
}

func (s *Bolt) Save(height int64, st *indexer.State) error {
	doc, err := EncodeSnapshot(st)
	if err != nil {
		return err
	}
	sum := sha3.Sum256(doc)
	compressed := s.enc.EncodeAll(doc, nil)

	value := make([]byte, 0, 32+len(compressed))
	value = append(value, sum[:]...)
	value = append(value, compressed...)

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Put(heightKey(height), value)
	})
}

func (s *Bolt) Load(height int64) (*indexer.State, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSnapshots).Get(heightKey(height))
		if v == nil {
			return nil
		}
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, asset.Errorf(asset.STORE_ERR_SNAPSHOT_MISSING, "height %d", height)
	}
	if len(value) < 32 {
		return nil, fmt.Errorf("snapshot %d: record too short", height)
	}

	doc, err := s.dec.DecodeAll(value[32:], nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot %d: decompress: %w", height, err)
	}
	sum := sha3.Sum256(doc)
	if !bytes.Equal(sum[:], value[:32]) {
		return nil, fmt.Errorf("snapshot %d: checksum mismatch", height)
	}
	return DecodeSnapshot(doc)
}

func (s *Bolt) Latest() (int64, bool, error) {
	var height int64
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		k, _ := tx.Bucket(bucketSnapshots).Cursor().Last()
		if k == nil {
			return nil
		}
		height = keyHeight(k)
		found = true
		return nil
	})
	return height, found, err
}

func (s *Bolt) Delete(height int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Delete(heightKey(height))
	})
}
