// Package crypto provides the cryptographic primitive the trie engine
// relies on: Keccak-256, the hash function Ethereum uses to key trie nodes.
package crypto

import "golang.org/x/crypto/sha3"

// Keccak256 calculates the Keccak-256 hash of the concatenation of the
// given byte slices.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Array is like Keccak256 but returns the digest as a fixed-size
// array, convenient for callers that key maps or store fixed-width hashes.
func Keccak256Array(data ...[]byte) [32]byte {
	var out [32]byte
	copy(out[:], Keccak256(data...))
	return out
}
