package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"arkade.dev/assets/asset"
)

// Request describes the sample transaction to build. Amounts travel as
// decimal strings.
type Request struct {
	Txid    string     `json:"txid"`
	Vin     []VinJSON  `json:"vin"`
	Outputs int        `json:"outputs"`
	Packet  PacketJSON `json:"packet"`
}

type VinJSON struct {
	Txid string `json:"txid"`
	Vout uint32 `json:"vout"`
}

type PacketJSON struct {
	Groups []GroupJSON `json:"groups"`
}

type GroupJSON struct {
	AssetID        *AssetIDJSON   `json:"asset_id,omitempty"`
	Issuance       *IssuanceJSON  `json:"issuance,omitempty"`
	MetadataUpdate []MetadataJSON `json:"metadata_update,omitempty"`
	Inputs         []AssetIOJSON  `json:"inputs"`
	Outputs        []AssetIOJSON  `json:"outputs"`
}

type AssetIDJSON struct {
	Txid string `json:"txid"`
	Gidx uint16 `json:"gidx"`
}

type IssuanceJSON struct {
	ControlID    *AssetIDJSON   `json:"control_id,omitempty"`
	ControlGroup *uint16        `json:"control_group,omitempty"`
	Metadata     []MetadataJSON `json:"metadata,omitempty"`
	Immutable    bool           `json:"immutable"`
}

type MetadataJSON struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type AssetIOJSON struct {
	Index  uint16 `json:"index"`
	Amount string `json:"amount"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("arkade-make-tx", flag.ContinueOnError)
	fs.SetOutput(stderr)
	reqFile := fs.String("file", "", "request JSON file (default stdin)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	var raw []byte
	var err error
	if *reqFile != "" {
		raw, err = os.ReadFile(*reqFile)
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(stderr, "read request: %v\n", err)
		return 1
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		fmt.Fprintf(stderr, "decode request: %v\n", err)
		return 1
	}

	tx, err := buildTx(&req)
	if err != nil {
		fmt.Fprintf(stderr, "build tx: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tx.JSON()); err != nil {
		fmt.Fprintf(stderr, "encode tx: %v\n", err)
		return 1
	}
	return 0
}

func buildTx(req *Request) (*asset.Tx, error) {
	txid, err := asset.ParseHex32(req.Txid)
	if err != nil {
		return nil, fmt.Errorf("txid: %w", err)
	}
	tx := &asset.Tx{Txid: txid}

	for _, in := range req.Vin {
		prevTxid, err := asset.ParseHex32(in.Txid)
		if err != nil {
			return nil, fmt.Errorf("vin txid: %w", err)
		}
		tx.Vin = append(tx.Vin, asset.Outpoint{Txid: prevTxid, Vout: in.Vout})
	}

	packet, err := packetFromJSON(&req.Packet)
	if err != nil {
		return nil, err
	}

	// Ordinary outputs first, the marker output last.
	for n := 0; n < req.Outputs; n++ {
		tx.Vout = append(tx.Vout, asset.TxOut{N: uint32(n)})
	}
	script := asset.BuildMarkerScript(asset.EncodePacket(packet))
	tx.Vout = append(tx.Vout, asset.TxOut{N: uint32(req.Outputs), ScriptPubKey: script})
	return tx, nil
}

func packetFromJSON(j *PacketJSON) (*asset.Packet, error) {
	p := &asset.Packet{}
	for gi, gj := range j.Groups {
		var g asset.Group

		if gj.AssetID != nil {
			id, err := assetIDFromJSON(*gj.AssetID)
			if err != nil {
				return nil, fmt.Errorf("group %d asset_id: %w", gi, err)
			}
			g.AssetID = &id
		}

		if gj.Issuance != nil {
			iss := &asset.Issuance{Immutable: gj.Issuance.Immutable}
			switch {
			case gj.Issuance.ControlID != nil:
				id, err := assetIDFromJSON(*gj.Issuance.ControlID)
				if err != nil {
					return nil, fmt.Errorf("group %d control: %w", gi, err)
				}
				ref := asset.RefID(id)
				iss.ControlAsset = &ref
			case gj.Issuance.ControlGroup != nil:
				ref := asset.RefGroup(*gj.Issuance.ControlGroup)
				iss.ControlAsset = &ref
			}
			if gj.Issuance.Metadata != nil {
				iss.Metadata = metadataFromJSON(gj.Issuance.Metadata)
				iss.HasMetadata = true
			}
			g.Issuance = iss
		}

		if gj.MetadataUpdate != nil {
			g.MetaData = metadataFromJSON(gj.MetadataUpdate)
			g.HasUpdate = true
		}

		for _, in := range gj.Inputs {
			amt, err := strconv.ParseUint(in.Amount, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("group %d input amount %q: %w", gi, in.Amount, err)
			}
			g.Inputs = append(g.Inputs, asset.AssetInput{Vin: in.Index, Amt: amt})
		}
		for _, out := range gj.Outputs {
			amt, err := strconv.ParseUint(out.Amount, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("group %d output amount %q: %w", gi, out.Amount, err)
			}
			g.Outputs = append(g.Outputs, asset.AssetOutput{Vout: out.Index, Amt: amt})
		}

		p.Groups = append(p.Groups, g)
	}
	return p, nil
}

func assetIDFromJSON(j AssetIDJSON) (asset.AssetID, error) {
	txid, err := asset.ParseHex32(j.Txid)
	if err != nil {
		return asset.AssetID{}, err
	}
	return asset.AssetID{Txid: txid, Gidx: j.Gidx}, nil
}

func metadataFromJSON(entries []MetadataJSON) asset.Metadata {
	m := make(asset.Metadata, 0, len(entries))
	for _, e := range entries {
		m = append(m, asset.MetadataEntry{Key: e.Key, Value: e.Value})
	}
	return m
}
