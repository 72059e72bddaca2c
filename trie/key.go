package trie

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
)

// NodeKey is the 32-byte identifier of a finalized trie node: the
// keccak-256 hash of its RLP encoding. It doubles as a NodeTag, a 256-bit
// ordinal over the leaf-path space (§3, §4.7).
type NodeKey [32]byte

// IsZero reports whether k is the all-zero key.
func (k NodeKey) IsZero() bool { return k == NodeKey{} }

func (k NodeKey) String() string { return fmt.Sprintf("%x", k[:]) }

// Tag interprets the key as a NodeTag (big-endian 256-bit unsigned int).
func (k NodeKey) Tag() NodeTag {
	var t NodeTag
	t.Int = *new(uint256.Int).SetBytes(k[:])
	return t
}

// ProvisionalKey is a 33-byte placeholder for a node that has not yet been
// hashed. Byte 0 is a tag: 0 means bytes 1..32 embed a real NodeKey (a
// "resolved" provisional reference); any non-zero value means the key was
// freshly generated by the store's id counter and has no corresponding
// NodeKey yet. The counter value is stored in the last 8 bytes for
// legibility when a non-zero tag is used.
type ProvisionalKey [33]byte

// freshProvisionalKey builds a fresh (never-hashed) provisional key from a
// monotonically increasing counter. Tag byte is fixed to 1 ("fresh").
func freshProvisionalKey(counter uint64) ProvisionalKey {
	var pk ProvisionalKey
	pk[0] = 1
	binary.BigEndian.PutUint64(pk[25:33], counter)
	return pk
}

// resolvedProvisionalKey wraps an already-known NodeKey in provisional-key
// form (tag byte 0), used when a node is logically addressed provisionally
// but its eventual key is already known (e.g. re-pointing during a split).
func resolvedProvisionalKey(k NodeKey) ProvisionalKey {
	var pk ProvisionalKey
	copy(pk[1:], k[:])
	return pk
}

// IsFresh reports whether pk was generated by the counter and does not yet
// embed a resolved NodeKey.
func (pk ProvisionalKey) IsFresh() bool { return pk[0] != 0 }

// ResolvedKey returns the embedded NodeKey and true if pk is not fresh.
func (pk ProvisionalKey) ResolvedKey() (NodeKey, bool) {
	if pk.IsFresh() {
		return NodeKey{}, false
	}
	var k NodeKey
	copy(k[:], pk[1:])
	return k, true
}

// Key is a sum-type-by-convention over the two key spaces: exactly one of
// Hash/Fresh is meaningful, discriminated by IsHash.
type Key struct {
	isHash bool
	hash   NodeKey
	fresh  ProvisionalKey
}

// HashKey builds a Key from a finalized NodeKey.
func HashKey(k NodeKey) Key { return Key{isHash: true, hash: k} }

// FreshKey builds a Key from a freshly-generated ProvisionalKey.
func FreshKey(pk ProvisionalKey) Key { return Key{isHash: false, fresh: pk} }

// IsHashKey reports whether this Key is a resolved NodeKey.
func (k Key) IsHashKey() bool { return k.isHash }

// MustHash returns the embedded NodeKey; panics if this key is provisional.
// Used at call sites the spec treats as invariant-protected (e.g. a commit
// path that has already checked IsHashKey).
func (k Key) MustHash() NodeKey {
	if !k.isHash {
		panic("trie: MustHash on provisional key")
	}
	return k.hash
}

// Provisional returns the embedded ProvisionalKey; panics if this key is a
// hash key.
func (k Key) Provisional() ProvisionalKey {
	if k.isHash {
		panic("trie: Provisional on hash key")
	}
	return k.fresh
}

func (k Key) String() string {
	if k.isHash {
		return k.hash.String()
	}
	return fmt.Sprintf("prov(%x)", k.fresh[:])
}

// NodeState is the in-memory lifecycle state of a stored node (§3).
// Only Mutable and TmpRoot nodes may be rewritten; Static and Locked nodes
// are immutable and their key equals the hash of their encoding.
type NodeState int

const (
	// Static nodes were inserted from an authoritative proof.
	Static NodeState = iota
	// Locked nodes were inserted on the fly but have since been verified
	// by hash (the interpolator's Phase B promotes Mutable -> Locked).
	Locked
	// Mutable nodes are pending interpolation and may be rewritten.
	Mutable
	// TmpRoot is the mutable root placeholder used while a fresh trie is
	// being interpolated with no prior root.
	TmpRoot
)

func (s NodeState) String() string {
	switch s {
	case Static:
		return "static"
	case Locked:
		return "locked"
	case Mutable:
		return "mutable"
	case TmpRoot:
		return "tmproot"
	default:
		return "unknown"
	}
}

// Writable reports whether a node in this state may be rewritten in place.
func (s NodeState) Writable() bool { return s == Mutable || s == TmpRoot }
