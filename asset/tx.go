package asset

import (
	"encoding/hex"
	"fmt"
)

// Outpoint identifies one output of a host-chain transaction.
type Outpoint struct {
	Txid [32]byte
	Vout uint32
}

func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", hex.EncodeToString(o.Txid[:]), o.Vout)
}

// TxOut is the host-supplied view of one transaction output. Only the script
// matters to this layer (marker detection); value and script semantics stay
// with the host chain.
type TxOut struct {
	N            uint32
	ScriptPubKey []byte
}

// Tx is the host-supplied transaction view consumed by the indexer.
type Tx struct {
	Txid [32]byte
	Vin  []Outpoint
	Vout []TxOut
}

// Block is the host-supplied block view.
type Block struct {
	Height       int64
	Transactions []Tx
}

// JSON interchange forms. Txids and scripts travel as hex.

type OutpointJSON struct {
	Txid string `json:"txid"`
	Vout uint32 `json:"vout"`
}

type TxOutJSON struct {
	N            uint32 `json:"n"`
	ScriptPubKey string `json:"scriptPubKey"`
}

type TxJSON struct {
	Txid string         `json:"txid"`
	Vin  []OutpointJSON `json:"vin"`
	Vout []TxOutJSON    `json:"vout"`
}

type BlockJSON struct {
	Height       int64    `json:"height"`
	Transactions []TxJSON `json:"transactions"`
}

// ParseHex32 decodes a 64-char hex string into a 32-byte array.
func ParseHex32(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("hex32: %w", err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("hex32: got %d bytes, want 32", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func Hex32(b [32]byte) string {
	return hex.EncodeToString(b[:])
}

func TxFromJSON(j TxJSON) (*Tx, error) {
	txid, err := ParseHex32(j.Txid)
	if err != nil {
		return nil, fmt.Errorf("txid: %w", err)
	}
	tx := &Tx{Txid: txid}
	for _, in := range j.Vin {
		prevTxid, err := ParseHex32(in.Txid)
		if err != nil {
			return nil, fmt.Errorf("vin txid: %w", err)
		}
		tx.Vin = append(tx.Vin, Outpoint{Txid: prevTxid, Vout: in.Vout})
	}
	for _, out := range j.Vout {
		script, err := hex.DecodeString(out.ScriptPubKey)
		if err != nil {
			return nil, fmt.Errorf("vout %d script: %w", out.N, err)
		}
		tx.Vout = append(tx.Vout, TxOut{N: out.N, ScriptPubKey: script})
	}
	return tx, nil
}

func (tx *Tx) JSON() TxJSON {
	j := TxJSON{Txid: Hex32(tx.Txid)}
	for _, in := range tx.Vin {
		j.Vin = append(j.Vin, OutpointJSON{Txid: Hex32(in.Txid), Vout: in.Vout})
	}
	for _, out := range tx.Vout {
		j.Vout = append(j.Vout, TxOutJSON{N: out.N, ScriptPubKey: hex.EncodeToString(out.ScriptPubKey)})
	}
	return j
}

func BlockFromJSON(j BlockJSON) (*Block, error) {
	blk := &Block{Height: j.Height}
	for i := range j.Transactions {
		tx, err := TxFromJSON(j.Transactions[i])
		if err != nil {
			return nil, fmt.Errorf("tx %d: %w", i, err)
		}
		blk.Transactions = append(blk.Transactions, *tx)
	}
	return blk, nil
}

func (b *Block) JSON() BlockJSON {
	j := BlockJSON{Height: b.Height}
	for i := range b.Transactions {
		j.Transactions = append(j.Transactions, b.Transactions[i].JSON())
	}
	return j
}
