package asset

// MarkerMagic is the 3-byte prefix of every marker payload.
const MarkerMagic = "ARK"

func appendAssetID(dst []byte, id AssetID) []byte {
	dst = append(dst, id.Txid[:]...)
	return AppendU16le(dst, id.Gidx)
}

func appendAssetRef(dst []byte, ref AssetRef) []byte {
	dst = append(dst, ref.Kind)
	switch ref.Kind {
	case RefByID:
		return appendAssetID(dst, ref.ID)
	default:
		return AppendU16le(dst, ref.Gidx)
	}
}

func appendMetadata(dst []byte, m Metadata) []byte {
	dst = AppendCompactSize(dst, uint64(len(m)))
	for _, e := range m {
		dst = AppendVarStr(dst, e.Key)
		dst = AppendVarStr(dst, e.Value)
	}
	return dst
}

// appendCounts writes the packed count byte, escaping to the CompactSize
// form when either count exceeds 15 or both are exactly 15.
func appendCounts(dst []byte, inCount, outCount int) []byte {
	if inCount <= 15 && outCount <= 15 && !(inCount == 15 && outCount == 15) {
		return append(dst, byte(inCount<<4|outCount))
	}
	dst = append(dst, 0xff)
	dst = AppendCompactSize(dst, uint64(inCount))
	return AppendCompactSize(dst, uint64(outCount))
}

func appendGroup(dst []byte, g *Group) []byte {
	var presence byte
	if g.AssetID != nil {
		presence |= groupBitAssetID
	}
	if g.Issuance != nil {
		presence |= groupBitIssuance
	}
	if g.HasUpdate {
		presence |= groupBitUpdate
	}
	dst = append(dst, presence)

	if g.AssetID != nil {
		dst = appendAssetID(dst, *g.AssetID)
	}

	if iss := g.Issuance; iss != nil {
		var ip byte
		if iss.ControlAsset != nil {
			ip |= issueBitControl
		}
		if iss.HasMetadata {
			ip |= issueBitMetadata
		}
		if iss.Immutable {
			ip |= issueBitImmutable
		}
		dst = append(dst, ip)
		if iss.ControlAsset != nil {
			dst = appendAssetRef(dst, *iss.ControlAsset)
		}
		if iss.HasMetadata {
			dst = appendMetadata(dst, iss.Metadata)
		}
	}

	if g.HasUpdate {
		dst = appendMetadata(dst, g.MetaData)
	}

	dst = appendCounts(dst, len(g.Inputs), len(g.Outputs))
	for _, in := range g.Inputs {
		dst = append(dst, IOTypeLocal)
		dst = AppendU16le(dst, in.Vin)
		dst = AppendCompactSize(dst, in.Amt)
	}
	for _, out := range g.Outputs {
		dst = append(dst, IOTypeLocal)
		dst = AppendU16le(dst, out.Vout)
		dst = AppendCompactSize(dst, out.Amt)
	}
	return dst
}

// EncodePacket serialises p as a marker payload: "ARK" magic, the
// self-delimiting type-0x00 record, then the packet body. The output is the
// exact inverse of DecodePacket (roundtrip property).
func EncodePacket(p *Packet) []byte {
	b := make([]byte, 0, 64)
	b = append(b, MarkerMagic...)
	b = append(b, 0x00)
	b = AppendCompactSize(b, uint64(len(p.Groups)))
	for i := range p.Groups {
		b = appendGroup(b, &p.Groups[i])
	}
	return b
}
