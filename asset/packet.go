package asset

// Input/output wire type tags. Only Local (0x01) is accepted; the record
// form leaves room for future kinds behind fresh tags.
const (
	IOTypeLocal = 0x01
)

// AssetInput consumes Amt of the group's asset from the host transaction's
// vin[Vin].
type AssetInput struct {
	Vin uint16
	Amt uint64
}

// AssetOutput credits Amt of the group's asset to the host transaction's
// vout[Vout].
type AssetOutput struct {
	Vout uint16
	Amt  uint64
}

// Issuance is present only in a genesis group.
type Issuance struct {
	ControlAsset *AssetRef
	Metadata     Metadata
	HasMetadata  bool
	Immutable    bool
}

// Group is a per-asset movement record within a packet. A group either names
// an existing asset via AssetID or omits it (genesis; the effective id is
// (txid, group index)).
type Group struct {
	AssetID   *AssetID
	Issuance  *Issuance
	MetaData  Metadata // update form; replaces the stored map
	HasUpdate bool
	Inputs    []AssetInput
	Outputs   []AssetOutput
}

// Packet is the ordered list of groups carried by a marker output. Group
// index is the namespace for ByGroup control references.
type Packet struct {
	Groups []Group
}
