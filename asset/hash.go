package asset

import "crypto/sha256"

// Sha256 returns the SHA-256 digest of b.
func Sha256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// TaggedHash computes the BIP-340 style tagged hash
// SHA256(SHA256(tag) || SHA256(tag) || msg).
func TaggedHash(tag string, msg []byte) [32]byte {
	tagHash := sha256.Sum256([]byte(tag))
	buf := make([]byte, 0, 64+len(msg))
	buf = append(buf, tagHash[:]...)
	buf = append(buf, tagHash[:]...)
	buf = append(buf, msg...)
	return sha256.Sum256(buf)
}
