package asset

import "bytes"

const (
	merkleLeafTag   = "ArkadeAssetLeaf"
	merkleBranchTag = "ArkadeAssetBranch"

	merkleLeafVersion = 0x00
)

// MetadataLeaf hashes one key/value entry.
func MetadataLeaf(key, value string) [32]byte {
	msg := make([]byte, 0, 2+len(key)+len(value)+10)
	msg = append(msg, merkleLeafVersion)
	msg = AppendVarStr(msg, key)
	msg = AppendVarStr(msg, value)
	return TaggedHash(merkleLeafTag, msg)
}

// merkleBranch combines two nodes. Siblings are sorted lexicographically, so
// the tree is order-independent at each level.
func merkleBranch(a, b [32]byte) [32]byte {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	msg := make([]byte, 0, 64)
	msg = append(msg, a[:]...)
	msg = append(msg, b[:]...)
	return TaggedHash(merkleBranchTag, msg)
}

func metadataLeaves(m Metadata) [][32]byte {
	sorted := m.Sorted()
	leaves := make([][32]byte, 0, len(sorted))
	for _, e := range sorted {
		leaves = append(leaves, MetadataLeaf(e.Key, e.Value))
	}
	return leaves
}

// MetadataRoot computes the Merkle commitment over m viewed as a key-sorted
// sequence. The empty map commits to SHA256 of the empty string.
func MetadataRoot(m Metadata) [32]byte {
	if len(m) == 0 {
		return Sha256(nil)
	}
	level := metadataLeaves(m)
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); {
			if i == len(level)-1 {
				// Odd promotion rule: carry forward unchanged.
				next = append(next, level[i])
				i++
				continue
			}
			next = append(next, merkleBranch(level[i], level[i+1]))
			i += 2
		}
		level = next
	}
	return level[0]
}

// MetadataProof returns the ordered sibling hashes proving key's membership.
// Lone promotions contribute nothing; a single-entry map has an empty proof.
func MetadataProof(m Metadata, key string) ([][32]byte, bool) {
	sorted := m.Sorted()
	idx := -1
	for i, e := range sorted {
		if e.Key == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	var proof [][32]byte
	level := metadataLeaves(m)
	for len(level) > 1 {
		sib := idx ^ 1
		if sib < len(level) {
			proof = append(proof, level[sib])
		}
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); {
			if i == len(level)-1 {
				next = append(next, level[i])
				i++
				continue
			}
			next = append(next, merkleBranch(level[i], level[i+1]))
			i += 2
		}
		level = next
		idx /= 2
	}
	return proof, true
}

// VerifyMetadataProof folds proof over leaf and compares against root.
func VerifyMetadataProof(leaf [32]byte, proof [][32]byte, root [32]byte) bool {
	acc := leaf
	for _, sib := range proof {
		acc = merkleBranch(acc, sib)
	}
	return acc == root
}
