package asset

import "unicode/utf8"

// Offset-based readers over a byte slice. Every reader advances *off past
// what it consumed and fails with CODEC_ERR_TRUNCATED instead of reading
// short.

func readBytes(b []byte, off *int, n int) ([]byte, error) {
	if n < 0 || len(b)-*off < n {
		return nil, aerrf(CODEC_ERR_TRUNCATED, "need %d bytes, have %d", n, len(b)-*off)
	}
	out := b[*off : *off+n]
	*off += n
	return out, nil
}

func readU8(b []byte, off *int) (byte, error) {
	if *off >= len(b) {
		return 0, aerr(CODEC_ERR_TRUNCATED, "end of buffer")
	}
	v := b[*off]
	*off++
	return v, nil
}

// readUintLE assembles a width-byte little-endian unsigned integer.
func readUintLE(b []byte, off *int, width int) (uint64, error) {
	raw, err := readBytes(b, off, width)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(raw[i])
	}
	return v, nil
}

func readU16le(b []byte, off *int) (uint16, error) {
	v, err := readUintLE(b, off, 2)
	return uint16(v), err
}

func readU32le(b []byte, off *int) (uint32, error) {
	v, err := readUintLE(b, off, 4)
	return uint32(v), err
}

func readU64le(b []byte, off *int) (uint64, error) {
	return readUintLE(b, off, 8)
}

// CompactSize wide-form floors: a value below the floor for its prefix has a
// shorter canonical encoding and is rejected.
var compactSizeFloor = map[byte]uint64{
	0xfd: 0xfd,
	0xfe: 0x1_0000,
	0xff: 0x1_0000_0000,
}

func readCompactSize(b []byte, off *int) (uint64, error) {
	prefix, err := readU8(b, off)
	if err != nil {
		return 0, err
	}
	if prefix < 0xfd {
		return uint64(prefix), nil
	}
	width := 2 << (prefix - 0xfd) // 0xfd=2, 0xfe=4, 0xff=8
	v, err := readUintLE(b, off, width)
	if err != nil {
		return 0, err
	}
	if v < compactSizeFloor[prefix] {
		return 0, aerrf(CODEC_ERR_TRUNCATED, "CompactSize %d not minimally encoded (prefix 0x%02x)", v, prefix)
	}
	return v, nil
}

// DecodeCompactSize reads a single CompactSize from the start of buf,
// returning the value and how many bytes it occupied. Encodings wider than
// the value requires are rejected.
func DecodeCompactSize(buf []byte) (uint64, int, error) {
	off := 0
	v, err := readCompactSize(buf, &off)
	return v, off, err
}

// readVarStr reads a CompactSize length followed by that many UTF-8 bytes.
func readVarStr(b []byte, off *int, maxLen int) (string, error) {
	nU64, err := readCompactSize(b, off)
	if err != nil {
		return "", err
	}
	if nU64 > uint64(maxLen) {
		return "", aerr(CODEC_ERR_AMOUNT_OVERFLOW, "string length overflow")
	}
	raw, err := readBytes(b, off, int(nU64))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", aerr(CODEC_ERR_INVALID_UTF8, "invalid utf-8 string")
	}
	return string(raw), nil
}
