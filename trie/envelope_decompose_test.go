package trie

import "testing"

// buildExtensionStraddledTrie builds a root Extension (prefix 5,0,1) into a
// branch with leaves at slots 0, 2, 9, and 15 (full nibble paths
// 5,0,1,0 / 5,0,1,2 / 5,0,1,9 / 5,0,1,15). This is the shape the review
// flagged: a 3-nibble partial path that ends exactly at the boundary
// between the Extension step and the Branch step, which a step-index-based
// walk (rather than a nibble-count-based one) misindexes entirely.
func buildExtensionStraddledTrie(t *testing.T) (*Database, NodeKey) {
	t.Helper()
	db := NewDatabase()

	put := func(n *Node) Key {
		h, err := HashNode(n)
		if err != nil {
			t.Fatalf("HashNode: %v", err)
		}
		k := HashKey(h)
		db.Put(k, n)
		return k
	}

	leafZ := put(NewLeaf(nil, []byte("Z"), Static)) // 5,0,1,0
	leafA := put(NewLeaf(nil, []byte("A"), Static)) // 5,0,1,2
	leafB := put(NewLeaf(nil, []byte("B"), Static)) // 5,0,1,9
	leafW := put(NewLeaf(nil, []byte("W"), Static)) // 5,0,1,15

	branch := NewBranch(Static)
	branch.Children[0] = linkTo(leafZ)
	branch.Children[2] = linkTo(leafA)
	branch.Children[9] = linkTo(leafB)
	branch.Children[15] = linkTo(leafW)
	branchKey := put(branch)

	ext := NewExtension([]byte{5, 0, 1}, branchKey, Static)
	extHash, err := HashNode(ext)
	if err != nil {
		t.Fatalf("HashNode(ext): %v", err)
	}
	root := HashKey(extHash)
	db.Put(root, ext)

	return db, extHash
}

func TestEnvelopeDecompose_StraddlesExtensionStep(t *testing.T) {
	db, root := buildExtensionStraddledTrie(t)

	// iv is the boundary-proven interval covering exactly leaf A's path
	// (5,0,1,2); path (5,0,1) spans the whole Extension/Branch subtree, so
	// the decomposition must surface every other leaf under that branch:
	// Z (slot 0, left of the boundary) and B, W (slots 9, 15, right of it).
	path := []byte{5, 0, 1}
	iv := Envelope([]byte{5, 0, 1, 2})

	specs, err := EnvelopeDecompose(path, root, iv, db)
	if err != nil {
		t.Fatalf("EnvelopeDecompose: %v", err)
	}

	byPath := map[string]NodeSpec{}
	for _, s := range specs {
		byPath[string(s.Path)] = s
	}
	wantPaths := []string{
		string([]byte{5, 0, 1, 0}),
		string([]byte{5, 0, 1, 9}),
		string([]byte{5, 0, 1, 15}),
	}
	if len(specs) != len(wantPaths) {
		t.Fatalf("EnvelopeDecompose returned %d specs %+v, want %d covering %v",
			len(specs), specs, len(wantPaths), wantPaths)
	}
	for _, p := range wantPaths {
		s, ok := byPath[p]
		if !ok {
			t.Fatalf("missing decomposition entry for path %v; got %+v", []byte(p), specs)
		}
		if !s.HasKey {
			t.Fatalf("spec for path %v has no resolved key: %+v", []byte(p), s)
		}
	}
}

func TestEnvelopeDecompose_Disjunct(t *testing.T) {
	db, root := buildExtensionStraddledTrie(t)
	path := []byte{5, 0, 1, 2} // leaf A only
	// An interval entirely outside envelope([5,0,1,2]).
	iv := Envelope([]byte{6})
	if _, err := EnvelopeDecompose(path, root, iv, db); err != ErrDisjunct {
		t.Fatalf("EnvelopeDecompose = %v, want ErrDisjunct", err)
	}
}

func TestEnvelopeDecompose_Degenerated(t *testing.T) {
	db, root := buildExtensionStraddledTrie(t)
	path := []byte{5, 0, 1, 2}
	iv := Envelope(path) // iv == env(path) exactly
	if _, err := EnvelopeDecompose(path, root, iv, db); err != ErrDegenerated {
		t.Fatalf("EnvelopeDecompose = %v, want ErrDegenerated", err)
	}
}

func TestEnvelopeDecompose_OneSidedLeft(t *testing.T) {
	db, root := buildExtensionStraddledTrie(t)
	path := []byte{5, 0, 1}
	// iv's Hi reaches the envelope's own Hi exactly, so only a left-side
	// decomposition is needed (leaf Z at slot 0).
	env := Envelope(path)
	iv := NodeTagRange{Lo: Envelope([]byte{5, 0, 1, 2}).Lo, Hi: env.Hi}

	specs, err := EnvelopeDecompose(path, root, iv, db)
	if err != nil {
		t.Fatalf("EnvelopeDecompose: %v", err)
	}
	if len(specs) != 1 || string(specs[0].Path) != string([]byte{5, 0, 1, 0}) {
		t.Fatalf("specs = %+v, want exactly one entry at path {5,0,1,0}", specs)
	}
}
