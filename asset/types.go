package asset

import (
	"encoding/hex"
	"fmt"
	"sort"
)

// AssetID names an asset by its genesis transaction and the index of the
// group that minted it inside that transaction.
type AssetID struct {
	Txid [32]byte
	Gidx uint16
}

func (id AssetID) String() string {
	return fmt.Sprintf("%s:%d", hex.EncodeToString(id.Txid[:]), id.Gidx)
}

// AssetRef reference kinds.
const (
	RefByID    = 0x01
	RefByGroup = 0x02
)

// AssetRef is either an explicit external AssetID or a forward/back reference
// to another group of the current transaction, resolved at apply time.
type AssetRef struct {
	Kind uint8
	ID   AssetID // Kind == RefByID
	Gidx uint16  // Kind == RefByGroup
}

func RefID(id AssetID) AssetRef {
	return AssetRef{Kind: RefByID, ID: id}
}

func RefGroup(gidx uint16) AssetRef {
	return AssetRef{Kind: RefByGroup, Gidx: gidx}
}

// MetadataEntry is one key/value pair of an asset metadata map.
type MetadataEntry struct {
	Key   string
	Value string
}

// Metadata is a key -> value map of UTF-8 strings. Wire order is insertion
// order; hashing uses the key-sorted view.
type Metadata []MetadataEntry

func (m Metadata) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set replaces the value for key if present, otherwise appends.
func (m Metadata) Set(key, value string) Metadata {
	for i := range m {
		if m[i].Key == key {
			m[i].Value = value
			return m
		}
	}
	return append(m, MetadataEntry{Key: key, Value: value})
}

// Sorted returns a copy ordered lexicographically by key.
func (m Metadata) Sorted() Metadata {
	out := make(Metadata, len(m))
	copy(out, m)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Clone returns an independent copy.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	copy(out, m)
	return out
}
