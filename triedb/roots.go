// roots.go implements the state-root registry (§4.10, §6): a singly-linked
// chain of saved state roots, each entry carrying a pointer to its
// predecessor and a small payload (e.g. the pivot header plus accumulated
// progress counters). The entry under the all-zero key points at the head
// of the chain. Grounded on the teacher's schema.go header-pointer style
// (a fixed sentinel key holding a pointer to mutable "current" state) and
// encoded with this module's own rlp package, per §6's
// `[predecessor_key_32, payload_bytes]` wire shape.
package triedb

import (
	"errors"

	"github.com/ethsync/triecore/rlp"
	"github.com/ethsync/triecore/trie"
)

// ErrNoRoots is returned when the registry has never had an entry appended.
var ErrNoRoots = errors.New("triedb: root registry is empty")

// zeroKey is the sentinel head-pointer row.
var zeroKey trie.NodeKey

// RootRecord is one entry in the state-root registry.
type RootRecord struct {
	Predecessor trie.NodeKey
	Payload     []byte
}

type rootRecordWire struct {
	Predecessor []byte
	Payload     []byte
}

func encodeRootRecord(r RootRecord) []byte {
	payload := rlp.EncodeBytes32(r.Predecessor)
	payload = rlp.AppendBytes(payload, r.Payload)
	return rlp.WrapList(payload)
}

func decodeRootRecord(data []byte) (RootRecord, error) {
	var w rootRecordWire
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return RootRecord{}, err
	}
	var rec RootRecord
	copy(rec.Predecessor[:], w.Predecessor)
	rec.Payload = w.Payload
	return rec, nil
}

// RootRegistry is a thin, stateless wrapper: every method takes the backend
// explicitly, matching the C10 contract's "caller supplies get/put" shape
// rather than owning a connection itself.
type RootRegistry struct{}

// backend is the minimal read/write contract the registry needs.
type backend interface {
	trie.NodeReader
	trie.NodeWriter
}

// Head returns the most recently appended root key. ok is false if the
// registry has no entries yet.
func (RootRegistry) Head(store backend) (head trie.NodeKey, ok bool, err error) {
	raw, err := store.GetNode(zeroKey)
	if err != nil {
		return trie.NodeKey{}, false, err
	}
	if len(raw) == 0 {
		return trie.NodeKey{}, false, nil
	}
	rec, err := decodeRootRecord(raw)
	if err != nil {
		return trie.NodeKey{}, false, err
	}
	return rec.Predecessor, true, nil
}

// Get returns the registry entry for root, or (_, false, nil) if absent.
func (RootRegistry) Get(store backend, root trie.NodeKey) (RootRecord, bool, error) {
	raw, err := store.GetNode(root)
	if err != nil {
		return RootRecord{}, false, err
	}
	if len(raw) == 0 {
		return RootRecord{}, false, nil
	}
	rec, err := decodeRootRecord(raw)
	if err != nil {
		return RootRecord{}, false, err
	}
	return rec, true, nil
}

// Append records newRoot as the new head of the chain, pointing back at
// whatever the previous head was, and advances the zero-key sentinel to
// point at newRoot.
func (reg RootRegistry) Append(store backend, newRoot trie.NodeKey, payload []byte) error {
	prevHead, _, err := reg.Head(store)
	if err != nil {
		return err
	}
	if err := store.PutNode(newRoot, encodeRootRecord(RootRecord{Predecessor: prevHead, Payload: payload})); err != nil {
		return err
	}
	return store.PutNode(zeroKey, encodeRootRecord(RootRecord{Predecessor: newRoot}))
}

// Walk visits the chain backward starting at from (inclusive), calling
// visit(root, record) for each entry until visit returns false, the chain
// reaches the zero key, or an entry is missing.
func (reg RootRegistry) Walk(store backend, from trie.NodeKey, visit func(trie.NodeKey, RootRecord) bool) error {
	cur := from
	for !cur.IsZero() {
		rec, ok, err := reg.Get(store, cur)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if !visit(cur, rec) {
			return nil
		}
		cur = rec.Predecessor
	}
	return nil
}
