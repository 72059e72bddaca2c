// refcount.go adapts the teacher's RefCountDB (pkg/trie/refcount_db.go) into
// an optional GC companion for the persistent backend: it tracks how many
// saved state-root generations reference each node and makes unreferenced
// nodes (from superseded generations) available for collection. The spec's
// Non-goals exclude "a mutable trie that supports delete" as a core
// operation, but don't exclude the backend adapter from offering garbage
// collection of old roots -- a distinct, backend-level concern layered on
// top of C10 rather than a C1-C9 algorithm.
package triedb

import (
	"errors"
	"sync"

	"github.com/ethsync/triecore/trie"
)

// ErrRefCountNegative is returned when a dereference would take a node's
// count below zero.
var ErrRefCountNegative = errors.New("triedb: reference count went negative")

// RefCountGC tracks reference counts per node key across trie generations.
// It does not itself delete anything from a backend; UnreferencedNodes reports
// which keys are safe to delete and it is the caller's responsibility to
// remove them (and call Forget) from the physical store, since only the
// caller knows whether the backend in use supports deletion at all (pebble
// does; a write-once SST tier might not).
type RefCountGC struct {
	mu    sync.RWMutex
	refs  map[trie.NodeKey]int64
	size  map[trie.NodeKey]int
	total int64
}

// NewRefCountGC returns an empty reference-counting tracker.
func NewRefCountGC() *RefCountGC {
	return &RefCountGC{refs: make(map[trie.NodeKey]int64), size: make(map[trie.NodeKey]int)}
}

// Track registers key as known to the GC with the given encoded size,
// starting its reference count at zero if not already tracked.
func (g *RefCountGC) Track(key trie.NodeKey, size int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.refs[key]; !ok {
		g.refs[key] = 0
		g.size[key] = size
		g.total += int64(size)
	}
}

// Reference increments key's count, e.g. when a newly committed generation
// includes it (directly, or by inheriting it unchanged from a prior root).
func (g *RefCountGC) Reference(key trie.NodeKey) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refs[key]++
}

// ReferenceAll increments the count for every key reachable from a
// generation's CommitSubtree walk. Callers typically pass the key set
// collected while committing a new root.
func (g *RefCountGC) ReferenceAll(keys []trie.NodeKey) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, k := range keys {
		g.refs[k]++
	}
}

// Dereference decrements key's count when a generation referencing it is
// superseded. Returns true if the count reached zero.
func (g *RefCountGC) Dereference(key trie.NodeKey) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.refs[key]
	if !ok {
		return false, nil
	}
	c--
	if c < 0 {
		return false, ErrRefCountNegative
	}
	g.refs[key] = c
	return c == 0, nil
}

// DereferenceAll is the batch form of Dereference, returning the subset of
// keys that reached zero.
func (g *RefCountGC) DereferenceAll(keys []trie.NodeKey) ([]trie.NodeKey, error) {
	var zeroed []trie.NodeKey
	for _, k := range keys {
		z, err := g.Dereference(k)
		if err != nil {
			return zeroed, err
		}
		if z {
			zeroed = append(zeroed, k)
		}
	}
	return zeroed, nil
}

// RefCount returns the current reference count for key.
func (g *RefCountGC) RefCount(key trie.NodeKey) int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.refs[key]
}

// Forget drops key from tracking entirely, e.g. after the caller has
// physically deleted it from the backend.
func (g *RefCountGC) Forget(key trie.NodeKey) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if sz, ok := g.size[key]; ok {
		g.total -= int64(sz)
	}
	delete(g.refs, key)
	delete(g.size, key)
}

// UnreferencedNodes returns all tracked keys with a zero reference count.
func (g *RefCountGC) UnreferencedNodes() []trie.NodeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []trie.NodeKey
	for k, c := range g.refs {
		if c == 0 {
			out = append(out, k)
		}
	}
	return out
}

// Stats summarizes the tracker's current state.
type Stats struct {
	TotalNodes      int
	ReferencedNodes int
	UnreferencedCnt int
	TotalSize       int64
}

// Stats returns a snapshot of the tracker's bookkeeping.
func (g *RefCountGC) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s := Stats{TotalNodes: len(g.refs), TotalSize: g.total}
	for _, c := range g.refs {
		if c > 0 {
			s.ReferencedNodes++
		} else {
			s.UnreferencedCnt++
		}
	}
	return s
}
