package asset

// Parser caps. These bound allocation before any content is trusted.
const (
	MAX_GROUPS_PER_PACKET = 4_096
	MAX_IO_PER_GROUP      = 65_536
	MAX_METADATA_ENTRIES  = 4_096
	MAX_METADATA_BYTES    = 65_536
)

// Group presence bits.
const (
	groupBitAssetID  = 1 << 0
	groupBitIssuance = 1 << 1
	groupBitUpdate   = 1 << 2
	groupBitsKnown   = groupBitAssetID | groupBitIssuance | groupBitUpdate
)

// Issuance presence bits.
const (
	issueBitControl   = 1 << 0
	issueBitMetadata  = 1 << 1
	issueBitImmutable = 1 << 2
	issueBitsKnown    = issueBitControl | issueBitMetadata | issueBitImmutable
)

func readAssetID(b []byte, off *int) (AssetID, error) {
	var id AssetID
	raw, err := readBytes(b, off, 32)
	if err != nil {
		return id, err
	}
	copy(id.Txid[:], raw)
	gidx, err := readU16le(b, off)
	if err != nil {
		return id, err
	}
	id.Gidx = gidx
	return id, nil
}

func readAssetRef(b []byte, off *int) (AssetRef, error) {
	tag, err := readU8(b, off)
	if err != nil {
		return AssetRef{}, err
	}
	switch tag {
	case RefByID:
		id, err := readAssetID(b, off)
		if err != nil {
			return AssetRef{}, err
		}
		return RefID(id), nil
	case RefByGroup:
		gidx, err := readU16le(b, off)
		if err != nil {
			return AssetRef{}, err
		}
		return RefGroup(gidx), nil
	default:
		return AssetRef{}, aerrf(CODEC_ERR_UNKNOWN_TYPE_TAG, "asset_ref tag 0x%02x", tag)
	}
}

func readMetadata(b []byte, off *int) (Metadata, error) {
	countU64, err := readCompactSize(b, off)
	if err != nil {
		return nil, err
	}
	if countU64 > MAX_METADATA_ENTRIES {
		return nil, aerr(CODEC_ERR_AMOUNT_OVERFLOW, "metadata entry count overflow")
	}
	count := int(countU64)
	m := make(Metadata, 0, count)
	for i := 0; i < count; i++ {
		key, err := readVarStr(b, off, MAX_METADATA_BYTES)
		if err != nil {
			return nil, err
		}
		value, err := readVarStr(b, off, MAX_METADATA_BYTES)
		if err != nil {
			return nil, err
		}
		m = append(m, MetadataEntry{Key: key, Value: value})
	}
	return m, nil
}

// readCounts decodes the packed in/out count byte. 0xFF escapes to two
// CompactSize varints; every other byte packs (in << 4) | out.
func readCounts(b []byte, off *int) (int, int, error) {
	packed, err := readU8(b, off)
	if err != nil {
		return 0, 0, err
	}
	if packed != 0xff {
		return int(packed >> 4), int(packed & 0x0f), nil
	}
	inU64, err := readCompactSize(b, off)
	if err != nil {
		return 0, 0, err
	}
	outU64, err := readCompactSize(b, off)
	if err != nil {
		return 0, 0, err
	}
	if inU64 > MAX_IO_PER_GROUP || outU64 > MAX_IO_PER_GROUP {
		return 0, 0, aerr(CODEC_ERR_AMOUNT_OVERFLOW, "group io count overflow")
	}
	return int(inU64), int(outU64), nil
}

func readGroup(b []byte, off *int) (Group, error) {
	var g Group

	presence, err := readU8(b, off)
	if err != nil {
		return g, err
	}
	if presence&^byte(groupBitsKnown) != 0 {
		return g, aerrf(CODEC_ERR_RESERVED_BITS, "group presence 0x%02x", presence)
	}

	if presence&groupBitAssetID != 0 {
		id, err := readAssetID(b, off)
		if err != nil {
			return g, err
		}
		g.AssetID = &id
	}

	if presence&groupBitIssuance != 0 {
		iss := &Issuance{}
		ip, err := readU8(b, off)
		if err != nil {
			return g, err
		}
		if ip&^byte(issueBitsKnown) != 0 {
			return g, aerrf(CODEC_ERR_RESERVED_BITS, "issuance presence 0x%02x", ip)
		}
		if ip&issueBitControl != 0 {
			ref, err := readAssetRef(b, off)
			if err != nil {
				return g, err
			}
			iss.ControlAsset = &ref
		}
		if ip&issueBitMetadata != 0 {
			m, err := readMetadata(b, off)
			if err != nil {
				return g, err
			}
			iss.Metadata = m
			iss.HasMetadata = true
		}
		iss.Immutable = ip&issueBitImmutable != 0
		g.Issuance = iss
	}

	if presence&groupBitUpdate != 0 {
		m, err := readMetadata(b, off)
		if err != nil {
			return g, err
		}
		g.MetaData = m
		g.HasUpdate = true
	}

	inCount, outCount, err := readCounts(b, off)
	if err != nil {
		return g, err
	}

	g.Inputs = make([]AssetInput, 0, inCount)
	for i := 0; i < inCount; i++ {
		tag, err := readU8(b, off)
		if err != nil {
			return g, err
		}
		if tag != IOTypeLocal {
			return g, aerrf(CODEC_ERR_UNKNOWN_TYPE_TAG, "input tag 0x%02x", tag)
		}
		vin, err := readU16le(b, off)
		if err != nil {
			return g, err
		}
		amt, err := readCompactSize(b, off)
		if err != nil {
			return g, err
		}
		g.Inputs = append(g.Inputs, AssetInput{Vin: vin, Amt: amt})
	}

	g.Outputs = make([]AssetOutput, 0, outCount)
	for i := 0; i < outCount; i++ {
		tag, err := readU8(b, off)
		if err != nil {
			return g, err
		}
		if tag != IOTypeLocal {
			return g, aerrf(CODEC_ERR_UNKNOWN_TYPE_TAG, "output tag 0x%02x", tag)
		}
		vout, err := readU16le(b, off)
		if err != nil {
			return g, err
		}
		amt, err := readCompactSize(b, off)
		if err != nil {
			return g, err
		}
		g.Outputs = append(g.Outputs, AssetOutput{Vout: vout, Amt: amt})
	}

	return g, nil
}

// decodePacketBody parses the self-delimiting asset packet body and requires
// it to consume the buffer exactly.
func decodePacketBody(b []byte) (*Packet, error) {
	off := 0
	countU64, err := readCompactSize(b, &off)
	if err != nil {
		return nil, err
	}
	if countU64 > MAX_GROUPS_PER_PACKET {
		return nil, aerr(CODEC_ERR_AMOUNT_OVERFLOW, "group count overflow")
	}
	count := int(countU64)
	groups := make([]Group, 0, count)
	for i := 0; i < count; i++ {
		g, err := readGroup(b, &off)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if off != len(b) {
		return nil, aerr(CODEC_ERR_TRUNCATED, "trailing bytes after packet body")
	}
	return &Packet{Groups: groups}, nil
}

// DecodePacket parses a marker payload ("ARK" magic plus TLV records) and
// returns the asset packet carried by the type-0x00 record. A payload whose
// records never include type 0x00 yields an empty packet.
func DecodePacket(payload []byte) (*Packet, error) {
	off := 0
	magic, err := readBytes(payload, &off, 3)
	if err != nil {
		return nil, err
	}
	if string(magic) != MarkerMagic {
		return nil, aerr(CODEC_ERR_BAD_MAGIC, "missing ARK magic")
	}

	for off < len(payload) {
		tlvType, err := readU8(payload, &off)
		if err != nil {
			return nil, err
		}
		if tlvType == 0x00 {
			// Self-delimiting: the remainder of the payload is the body.
			return decodePacketBody(payload[off:])
		}
		if tlvType < 0x40 {
			return nil, aerrf(CODEC_ERR_UNKNOWN_TYPE_TAG, "tlv type 0x%02x", tlvType)
		}
		recLenU64, err := readCompactSize(payload, &off)
		if err != nil {
			return nil, err
		}
		if recLenU64 > uint64(len(payload)-off) {
			return nil, aerr(CODEC_ERR_TRUNCATED, "tlv record length")
		}
		off += int(recLenU64)
	}

	// Marker present, no asset packet record.
	return &Packet{}, nil
}
