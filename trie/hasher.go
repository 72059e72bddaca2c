// hasher.go implements the encode side of the node codec (C2) and the
// interpolator's bottom-up hash recomputation (C8 Phase B): RLP-encoding a
// Node per §6's wire formats and computing its keccak-256 NodeKey.
//
// Unlike a general-purpose MPT implementation, this codec never inlines
// small child nodes: every Branch/Extension child link is either the empty
// blob or a full 32-byte hash (§4.2), since the spec's node records always
// address children by Key, never by embedded structure.
package trie

import (
	"github.com/ethsync/triecore/crypto"
	"github.com/ethsync/triecore/rlp"
)

// encodeNode RLP-encodes n per §6. Returns a zero-length slice (not an
// error) if n references a provisional (non-hash) child or is itself not
// yet resolvable -- callers treat that as "cannot finalize yet" (§4.2).
func encodeNode(n *Node) ([]byte, error) {
	switch n.Kind {
	case KindBranch:
		return encodeBranch(n)
	case KindExtension:
		return encodeExtension(n)
	case KindLeaf:
		return encodeLeaf(n)
	default:
		return nil, ErrGarbledNode
	}
}

func encodeBranch(n *Node) ([]byte, error) {
	var payload []byte
	for i := 0; i < 16; i++ {
		enc, ok := encodeChildRef(n.Children[i])
		if !ok {
			return nil, nil
		}
		payload = append(payload, enc...)
	}
	dataEnc, err := rlp.EncodeToBytes(n.Data)
	if err != nil {
		return nil, err
	}
	payload = append(payload, dataEnc...)
	return rlp.WrapList(payload), nil
}

func encodeExtension(n *Node) ([]byte, error) {
	keyEnc, err := rlp.EncodeToBytes(hexToCompact(n.Prefix))
	if err != nil {
		return nil, err
	}
	childEnc, ok := encodeChildRef(n.Child)
	if !ok {
		return nil, nil
	}
	return rlp.WrapList(append(keyEnc, childEnc...)), nil
}

func encodeLeaf(n *Node) ([]byte, error) {
	leafKey := append(append([]byte{}, n.Prefix...), terminatorByte)
	keyEnc, err := rlp.EncodeToBytes(hexToCompact(leafKey))
	if err != nil {
		return nil, err
	}
	valEnc, err := rlp.EncodeToBytes(n.Value)
	if err != nil {
		return nil, err
	}
	return rlp.WrapList(append(keyEnc, valEnc...)), nil
}

// encodeChildRef encodes a branch/extension child reference: the empty
// blob if absent, or the 32-byte hash if present. ok is false iff the
// child is present but still provisional (§4.2: "MUST NOT be emitted").
// This sits on the hot path of every hash recomputation, so it uses the
// rlp package's reflection-free writers.
func encodeChildRef(c childRef) (enc []byte, ok bool) {
	if c.Empty() {
		return rlp.AppendBytes(nil, nil), true
	}
	if !c.key.IsHashKey() {
		return nil, false
	}
	return rlp.EncodeBytes32(c.key.MustHash()), true
}

// HashNode computes n's NodeKey as keccak256 of its RLP encoding. It
// returns ErrUnresolvedRepairNode if n cannot yet be encoded because one of
// its children is still provisional.
func HashNode(n *Node) (NodeKey, error) {
	enc, err := encodeNode(n)
	if err != nil {
		return NodeKey{}, err
	}
	if len(enc) == 0 {
		return NodeKey{}, ErrUnresolvedRepairNode
	}
	return crypto.Keccak256Array(enc), nil
}
