// memstore.go provides an in-memory NodeReader/NodeWriter/BulkIngester,
// grounded on the teacher's MemoryKVStore (pkg/core/rawdb/key_value_store.go):
// a plain mutex-guarded map, used here for tests and for callers that don't
// need a real disk tier.
package triedb

import (
	"sort"
	"sync"

	"github.com/ethsync/triecore/trie"
)

// MemoryStore is an in-memory implementation of the C10 backend contracts.
// Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[[32]byte][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[[32]byte][]byte)}
}

// GetNode implements trie.NodeReader. A missing key returns (nil, nil),
// matching the "zero-length result means not present" contract (§4.10).
func (m *MemoryStore) GetNode(key trie.NodeKey) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// PutNode implements trie.NodeWriter.
func (m *MemoryStore) PutNode(key trie.NodeKey, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp
	return nil
}

// Len returns the number of stored nodes.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// OpenBulkSession implements trie.BulkIngester: the in-memory equivalent
// of the spec's "rocksdb-style ingest" (§4.10, §9), enforcing the same
// sorted-by-NodeTag, hash-keys-only discipline a real SST ingest would
// require, without actually building an SST.
func (m *MemoryStore) OpenBulkSession() (trie.BulkSession, error) {
	return &memBulkSession{store: m}, nil
}

type memBulkItem struct {
	key   trie.NodeKey
	value []byte
}

type memBulkSession struct {
	store *MemoryStore
	items []memBulkItem
}

// AddItem stages an item. The batch as a whole is validated for sort order
// at Commit time (the spec requires the caller to add items in order; this
// also catches a caller bug rather than silently reordering).
func (s *memBulkSession) AddItem(key trie.NodeKey, value []byte) error {
	s.items = append(s.items, memBulkItem{key: key, value: value})
	return nil
}

func (s *memBulkSession) Commit() error {
	if !sort.SliceIsSorted(s.items, func(i, j int) bool {
		return s.items[i].key.Tag().Less(s.items[j].key.Tag())
	}) {
		return trie.ErrAddBulkItemFailed
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, it := range s.items {
		cp := make([]byte, len(it.value))
		copy(cp, it.value)
		s.store.data[it.key] = cp
	}
	return nil
}
