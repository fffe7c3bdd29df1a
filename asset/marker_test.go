package asset

import (
	"bytes"
	"testing"
)

func TestPushDataFraming(t *testing.T) {
	sizes := []int{0, 1, 75, 76, 255, 256, 65535, 65536}
	for _, n := range sizes {
		data := bytes.Repeat([]byte{0xaa}, n)
		framed := AppendPushData(nil, data)
		off := 0
		got, err := ParsePushData(framed, &off)
		if err != nil {
			t.Fatalf("n=%d: parse: %v", n, err)
		}
		if !bytes.Equal(got, data) || off != len(framed) {
			t.Fatalf("n=%d: round-trip mismatch", n)
		}
	}
}

func TestParseMarkerScript(t *testing.T) {
	p := &Packet{Groups: []Group{{
		Issuance: &Issuance{},
		Outputs:  []AssetOutput{{Vout: 0, Amt: 10}},
	}}}
	script := BuildMarkerScript(EncodePacket(p))

	dec, found, err := ParseMarkerScript(script)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if len(dec.Groups) != 1 {
		t.Fatalf("groups: %d", len(dec.Groups))
	}
}

func TestParseMarkerScriptNotAMarker(t *testing.T) {
	cases := [][]byte{
		nil,
		{0x51},                                   // not OP_RETURN
		{OP_RETURN},                              // no push
		BuildMarkerScript([]byte("XYZ payload")), // wrong magic
		BuildMarkerScript([]byte("AR")),          // short payload
	}
	for i, script := range cases {
		_, found, err := ParseMarkerScript(script)
		if found || err != nil {
			t.Fatalf("case %d: found=%v err=%v", i, found, err)
		}
	}
}

func TestParseMarkerScriptMalformedPacket(t *testing.T) {
	payload := []byte(MarkerMagic)
	payload = append(payload, 0x00, 0x01, 0x80) // one group, reserved bits
	_, found, err := ParseMarkerScript(BuildMarkerScript(payload))
	if !found {
		t.Fatal("marker should be detected")
	}
	if CodeOf(err) != CODEC_ERR_RESERVED_BITS {
		t.Fatalf("expected codec error, got %v", err)
	}
}

func TestFindMarkerFirstWins(t *testing.T) {
	first := &Packet{Groups: []Group{{Issuance: &Issuance{}, Outputs: []AssetOutput{{Vout: 0, Amt: 1}}}}}
	second := &Packet{Groups: []Group{{Issuance: &Issuance{}, Outputs: []AssetOutput{{Vout: 0, Amt: 2}}}}}

	tx := &Tx{
		Txid: testTxid(0x11),
		Vout: []TxOut{
			{N: 0, ScriptPubKey: []byte{0x51}},
			{N: 1, ScriptPubKey: BuildMarkerScript(EncodePacket(first))},
			{N: 2, ScriptPubKey: BuildMarkerScript(EncodePacket(second))},
		},
	}
	p, found, err := FindMarker(tx)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if p.Groups[0].Outputs[0].Amt != 1 {
		t.Fatal("first marker must win")
	}
}

func TestFindMarkerNone(t *testing.T) {
	tx := &Tx{
		Txid: testTxid(0x12),
		Vout: []TxOut{{N: 0, ScriptPubKey: []byte{0x51}}},
	}
	_, found, err := FindMarker(tx)
	if found || err != nil {
		t.Fatalf("found=%v err=%v", found, err)
	}
}
