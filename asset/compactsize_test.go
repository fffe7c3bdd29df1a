package asset

import (
	"bytes"
	"testing"
)

func TestCompactSizeRoundTrip(t *testing.T) {
	cases := []struct {
		value uint64
		size  int
	}{
		{0, 1},
		{1, 1},
		{252, 1},
		{253, 3},
		{65535, 3},
		{65536, 5},
		{4294967295, 5},
		{4294967296, 9},
		{18446744073709551615, 9},
	}
	for _, tc := range cases {
		enc := EncodeCompactSize(tc.value)
		if len(enc) != tc.size {
			t.Fatalf("value %d: encoded %d bytes, want %d", tc.value, len(enc), tc.size)
		}
		got, used, err := DecodeCompactSize(enc)
		if err != nil {
			t.Fatalf("value %d: decode: %v", tc.value, err)
		}
		if got != tc.value || used != tc.size {
			t.Fatalf("value %d: got %d (%d bytes)", tc.value, got, used)
		}
	}
}

func TestCompactSizeTruncated(t *testing.T) {
	cases := [][]byte{
		{},
		{0xfd},
		{0xfd, 0x01},
		{0xfe, 0x01, 0x02, 0x03},
		{0xff, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
	}
	for i, buf := range cases {
		if _, _, err := DecodeCompactSize(buf); err == nil {
			t.Fatalf("case %d: expected truncation error", i)
		}
	}
}

func TestCompactSizeNonMinimal(t *testing.T) {
	cases := [][]byte{
		{0xfd, 0x10, 0x00},                                     // 16 must be 1 byte
		{0xfe, 0xff, 0xff, 0x00, 0x00},                         // 65535 must be 0xfd form
		{0xff, 0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00}, // 2^32-1 must be 0xfe form
	}
	for i, buf := range cases {
		if _, _, err := DecodeCompactSize(buf); err == nil {
			t.Fatalf("case %d: expected non-minimal rejection", i)
		}
	}
}

func TestAppendIntegers(t *testing.T) {
	b := AppendU16le(nil, 0x0201)
	if !bytes.Equal(b, []byte{0x01, 0x02}) {
		t.Fatalf("u16le: %x", b)
	}
	b = AppendU64le(nil, 0x0807060504030201)
	if !bytes.Equal(b, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}) {
		t.Fatalf("u64le: %x", b)
	}
}

func TestVarStrRoundTrip(t *testing.T) {
	b := AppendVarStr(nil, "hello")
	off := 0
	s, err := readVarStr(b, &off, 1024)
	if err != nil {
		t.Fatalf("readVarStr: %v", err)
	}
	if s != "hello" || off != len(b) {
		t.Fatalf("got %q, off %d", s, off)
	}
}

func TestVarStrInvalidUtf8(t *testing.T) {
	b := AppendCompactSize(nil, 2)
	b = append(b, 0xff, 0xfe)
	off := 0
	_, err := readVarStr(b, &off, 1024)
	if CodeOf(err) != CODEC_ERR_INVALID_UTF8 {
		t.Fatalf("expected CODEC_ERR_INVALID_UTF8, got %v", err)
	}
}
