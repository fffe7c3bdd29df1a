package asset

// Host-chain script opcodes the marker layer cares about.
const (
	OP_RETURN     = 0x6a
	OP_PUSHDATA1  = 0x4c
	OP_PUSHDATA2  = 0x4d
	OP_PUSHDATA4  = 0x4e
	maxDirectPush = 75
)

// AppendPushData appends data to dst framed as a script push.
func AppendPushData(dst []byte, data []byte) []byte {
	n := len(data)
	switch {
	case n <= maxDirectPush:
		dst = append(dst, byte(n))
	case n <= 0xff:
		dst = append(dst, OP_PUSHDATA1, byte(n))
	case n <= 0xffff:
		dst = append(dst, OP_PUSHDATA2)
		dst = AppendU16le(dst, uint16(n))
	default:
		dst = append(dst, OP_PUSHDATA4)
		dst = AppendU32le(dst, uint32(n))
	}
	return append(dst, data...)
}

// ParsePushData reads one script push starting at *off.
func ParsePushData(script []byte, off *int) ([]byte, error) {
	op, err := readU8(script, off)
	if err != nil {
		return nil, err
	}
	var n int
	switch {
	case op <= maxDirectPush:
		n = int(op)
	case op == OP_PUSHDATA1:
		l, err := readU8(script, off)
		if err != nil {
			return nil, err
		}
		n = int(l)
	case op == OP_PUSHDATA2:
		l, err := readU16le(script, off)
		if err != nil {
			return nil, err
		}
		n = int(l)
	case op == OP_PUSHDATA4:
		l, err := readU32le(script, off)
		if err != nil {
			return nil, err
		}
		if l > uint32(len(script)) {
			return nil, aerr(CODEC_ERR_TRUNCATED, "push length")
		}
		n = int(l)
	default:
		return nil, aerrf(CODEC_ERR_UNKNOWN_TYPE_TAG, "script opcode 0x%02x", op)
	}
	return readBytes(script, off, n)
}

// BuildMarkerScript wraps an encoded marker payload into an OP_RETURN output
// script.
func BuildMarkerScript(payload []byte) []byte {
	script := make([]byte, 0, 2+len(payload))
	script = append(script, OP_RETURN)
	return AppendPushData(script, payload)
}

// ParseMarkerScript inspects one output script. It returns (nil, false, nil)
// when the script is not an ARK marker (not OP_RETURN, unreadable push, or
// missing magic). When the marker is present but its packet is malformed the
// codec error is returned with found=true.
func ParseMarkerScript(script []byte) (*Packet, bool, error) {
	if len(script) == 0 || script[0] != OP_RETURN {
		return nil, false, nil
	}
	off := 1
	payload, err := ParsePushData(script, &off)
	if err != nil {
		return nil, false, nil
	}
	if len(payload) < 3 || string(payload[:3]) != MarkerMagic {
		return nil, false, nil
	}
	p, err := DecodePacket(payload)
	if err != nil {
		return nil, true, err
	}
	return p, true, nil
}

// FindMarker scans tx.Vout in ascending order and decodes the first ARK
// marker. Later markers in the same transaction are ignored. found=false
// means the transaction carries no marker (the implicit-burn path).
func FindMarker(tx *Tx) (*Packet, bool, error) {
	for i := range tx.Vout {
		p, found, err := ParseMarkerScript(tx.Vout[i].ScriptPubKey)
		if !found {
			continue
		}
		if err != nil {
			return nil, true, err
		}
		return p, true, nil
	}
	return nil, false, nil
}
