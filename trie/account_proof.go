// account_proof.go supplements the core with the account/storage proof
// convenience wrappers the teacher's eth2030 trie package provides
// (account_proof.go): thin callers of the path resolver (C4) and node
// codec (C2) for the common case of proving a single account or storage
// slot, adapted from the teacher's pointer-tree Trie/Prove API to this
// module's store-addressed Path walk.
package trie

import (
	"errors"
	"math/big"

	"github.com/ethsync/triecore/crypto"
	"github.com/ethsync/triecore/rlp"
)

// ErrProofVerifyFailed is returned when an account or storage proof fails
// to verify against the claimed root.
var ErrProofVerifyFailed = errors.New("trie: proof verification failed")

// AccountProof is a presence-or-absence Merkle proof for a single 32-byte
// key (an address hash or storage slot hash) against a trie root.
type AccountProof struct {
	KeyHash [32]byte
	Value   []byte   // nil if the key is provably absent
	Nodes   [][]byte // RLP-encoded nodes on the path from root, root first
}

// GenerateAccountProof walks db from root to keyHash's full 64-nibble path
// and collects the RLP encoding of every node visited. Value is nil (an
// absence proof) if the walk does not terminate in a Leaf whose full
// prefix matches keyHash exactly.
func GenerateAccountProof(db *Database, root Key, keyHash [32]byte) (*AccountProof, error) {
	nibbles := keybytesToHex(keyHash[:])
	nibbles = nibbles[:len(nibbles)-1] // strip the keybytesToHex terminator; HexaryPath wants a raw path

	p := HexaryPath(nibbles, root, db)
	proof := &AccountProof{KeyHash: keyHash}

	for _, step := range p.Steps {
		if step.Node == nil {
			continue
		}
		enc, err := encodeNode(step.Node)
		if err != nil || len(enc) == 0 {
			return nil, ErrUnresolvedRepairNode
		}
		proof.Nodes = append(proof.Nodes, enc)
	}

	if len(p.Tail) == 0 {
		if last := p.LastNode(); last != nil && last.Kind == KindLeaf {
			proof.Value = append([]byte{}, last.Value...)
		}
	}
	return proof, nil
}

// VerifyAccountProof re-derives the claimed value for keyHash from proof,
// checking that each node's declared child hash matches the keccak-256 of
// the next node in the list and that the first node's hash equals root.
// It returns the leaf value (nil for a verified absence proof) or
// ErrProofVerifyFailed if the chain does not hold together.
func VerifyAccountProof(root NodeKey, keyHash [32]byte, proof *AccountProof) ([]byte, error) {
	if len(proof.Nodes) == 0 {
		return nil, ErrProofVerifyFailed
	}
	nibbles := keybytesToHex(keyHash[:])
	nibbles = nibbles[:len(nibbles)-1]

	want := root
	tail := nibbles
	for i, enc := range proof.Nodes {
		if crypto.Keccak256Array(enc) != want {
			return nil, ErrProofVerifyFailed
		}
		n, err := decodeNode(enc)
		if err != nil {
			return nil, ErrProofVerifyFailed
		}
		last := i == len(proof.Nodes)-1

		switch n.Kind {
		case KindLeaf:
			if !nibblesEqual(tail, n.Prefix) {
				if last {
					return nil, nil // verified absence: leaf diverges from the claimed key
				}
				return nil, ErrProofVerifyFailed
			}
			if !last {
				return nil, ErrProofVerifyFailed
			}
			return n.Value, nil

		case KindExtension:
			if len(tail) < len(n.Prefix) || !nibblesEqual(tail[:len(n.Prefix)], n.Prefix) {
				if last {
					return nil, nil
				}
				return nil, ErrProofVerifyFailed
			}
			tail = tail[len(n.Prefix):]
			if n.Child.Empty() {
				if last {
					return nil, nil
				}
				return nil, ErrProofVerifyFailed
			}
			if last {
				return nil, ErrProofVerifyFailed // proof ended mid-walk
			}
			want = n.Child.key.MustHash()

		case KindBranch:
			if len(tail) == 0 {
				if last {
					return nil, nil
				}
				return nil, ErrProofVerifyFailed
			}
			child := n.Children[tail[0]]
			tail = tail[1:]
			if child.Empty() {
				if last {
					return nil, nil
				}
				return nil, ErrProofVerifyFailed
			}
			if last {
				return nil, ErrProofVerifyFailed
			}
			want = child.key.MustHash()
		}
	}
	return nil, ErrProofVerifyFailed
}

// EncodeAccountFields RLP-encodes the standard 4-field Ethereum account
// body: [nonce, balance, storageRoot, codeHash].
func EncodeAccountFields(nonce uint64, balance *big.Int, storageRoot, codeHash [32]byte) []byte {
	if balance == nil {
		balance = new(big.Int)
	}
	data, _ := rlp.EncodeToBytes(struct {
		Nonce       uint64
		Balance     *big.Int
		StorageRoot []byte
		CodeHash    []byte
	}{
		Nonce:       nonce,
		Balance:     balance,
		StorageRoot: storageRoot[:],
		CodeHash:    codeHash[:],
	})
	return data
}

// DecodeAccountFields decodes an account body produced by
// EncodeAccountFields back into its fields.
func DecodeAccountFields(data []byte) (nonce uint64, balance *big.Int, storageRoot, codeHash [32]byte, err error) {
	elems, derr := decodeNodeList(data)
	if derr != nil {
		err = derr
		return
	}
	if len(elems) != 4 {
		err = errors.New("trie: invalid account encoding: expected 4 fields")
		return
	}
	nonce = bytesToUint64(elems[0])
	balance = new(big.Int)
	if len(elems[1]) > 0 {
		balance.SetBytes(elems[1])
	}
	if len(elems[2]) == 32 {
		copy(storageRoot[:], elems[2])
	}
	copy(codeHash[:], elems[3])
	return
}

func bytesToUint64(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}
