package asset

import "encoding/binary"

// Append-style writers mirroring the readers in wire_read.go. All integers
// are little-endian on the wire.

func AppendU16le(dst []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, v)
}

func AppendU32le(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

func AppendU64le(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

// AppendCompactSize writes n in its shortest CompactSize form: a bare byte
// below 0xfd, otherwise a width prefix followed by 2, 4, or 8 LE bytes.
func AppendCompactSize(dst []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(dst, byte(n))
	case n <= 0xffff:
		return AppendU16le(append(dst, 0xfd), uint16(n))
	case n <= 0xffff_ffff:
		return AppendU32le(append(dst, 0xfe), uint32(n))
	default:
		return AppendU64le(append(dst, 0xff), n)
	}
}

// EncodeCompactSize is the allocating form of AppendCompactSize.
func EncodeCompactSize(n uint64) []byte {
	return AppendCompactSize(nil, n)
}

// AppendVarStr appends a CompactSize length followed by the raw UTF-8 bytes.
func AppendVarStr(dst []byte, s string) []byte {
	dst = AppendCompactSize(dst, uint64(len(s)))
	return append(dst, s...)
}
