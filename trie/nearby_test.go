package trie

import "testing"

// buildThreeLeafTrie builds a root branch with leaves at full nibble paths
// 1,0,0,0 / 5,0,0,0 / 5,8,0,0 (all under branch slots 1 and 5; slot 5 has a
// nested branch splitting 0 vs 8).
func buildThreeLeafTrie(t *testing.T) (*Database, Key) {
	t.Helper()
	db := NewDatabase()

	leafA := NewLeaf([]byte{0, 0, 0}, []byte("A"), Static) // full path 1,0,0,0
	leafAHash, err := HashNode(leafA)
	if err != nil {
		t.Fatalf("HashNode(leafA): %v", err)
	}
	leafAKey := HashKey(leafAHash)
	db.Put(leafAKey, leafA)

	leafB := NewLeaf([]byte{0, 0}, []byte("B"), Static) // under slot5 branch, slot 0, full 5,0,0,0
	leafBHash, err := HashNode(leafB)
	if err != nil {
		t.Fatalf("HashNode(leafB): %v", err)
	}
	leafBKey := HashKey(leafBHash)
	db.Put(leafBKey, leafB)

	leafC := NewLeaf([]byte{0, 0}, []byte("C"), Static) // under slot5 branch, slot 8, full 5,8,0,0
	leafCHash, err := HashNode(leafC)
	if err != nil {
		t.Fatalf("HashNode(leafC): %v", err)
	}
	leafCKey := HashKey(leafCHash)
	db.Put(leafCKey, leafC)

	inner := NewBranch(Static)
	inner.Children[0] = linkTo(leafBKey)
	inner.Children[8] = linkTo(leafCKey)
	innerHash, err := HashNode(inner)
	if err != nil {
		t.Fatalf("HashNode(inner): %v", err)
	}
	innerKey := HashKey(innerHash)
	db.Put(innerKey, inner)

	root := NewBranch(Static)
	root.Children[1] = linkTo(leafAKey)
	root.Children[5] = linkTo(innerKey)
	rootHash, err := HashNode(root)
	if err != nil {
		t.Fatalf("HashNode(root): %v", err)
	}
	rootKey := HashKey(rootHash)
	db.Put(rootKey, root)

	return db, rootKey
}

func TestHexaryNearbyRight_FindsSuccessor(t *testing.T) {
	db, root := buildThreeLeafTrie(t)
	p := Path{RootKey: root, Tail: []byte{2}} // between leaf A (1,...) and leaf B (5,...)
	got, err := HexaryNearbyRight(p, db)
	if err != nil {
		t.Fatalf("HexaryNearbyRight: %v", err)
	}
	last := got.LastNode()
	if last == nil || string(last.Value) != "B" {
		t.Fatalf("HexaryNearbyRight landed on %+v, want leaf B", last)
	}
}

func TestHexaryNearbyLeft_FindsPredecessor(t *testing.T) {
	db, root := buildThreeLeafTrie(t)
	p := Path{RootKey: root, Tail: []byte{2}}
	got, err := HexaryNearbyLeft(p, db)
	if err != nil {
		t.Fatalf("HexaryNearbyLeft: %v", err)
	}
	last := got.LastNode()
	if last == nil || string(last.Value) != "A" {
		t.Fatalf("HexaryNearbyLeft landed on %+v, want leaf A", last)
	}
}

func TestHexaryNearbyRight_PicksLeftmostWithinBranch(t *testing.T) {
	db, root := buildThreeLeafTrie(t)
	// Tail {5} lands exactly at the inner branch; successor must descend
	// least-first to leaf B (slot 0), not leaf C (slot 8).
	p := Path{RootKey: root, Tail: []byte{5}}
	got, err := HexaryNearbyRight(p, db)
	if err != nil {
		t.Fatalf("HexaryNearbyRight: %v", err)
	}
	if last := got.LastNode(); last == nil || string(last.Value) != "B" {
		t.Fatalf("landed on %+v, want leaf B", last)
	}
}

func TestHexaryNearbyRight_NoSuccessorPastEnd(t *testing.T) {
	db, root := buildThreeLeafTrie(t)
	p := Path{RootKey: root, Tail: []byte{9}} // past the last leaf
	if _, err := HexaryNearbyRight(p, db); err != ErrFailed {
		t.Fatalf("HexaryNearbyRight = %v, want ErrFailed", err)
	}
}

func TestHexaryNearbyLeft_NoPredecessorBeforeStart(t *testing.T) {
	db, root := buildThreeLeafTrie(t)
	p := Path{RootKey: root, Tail: []byte{0}} // before the first leaf
	if _, err := HexaryNearbyLeft(p, db); err != ErrFailed {
		t.Fatalf("HexaryNearbyLeft = %v, want ErrFailed", err)
	}
}

func TestHexaryNearbyRightMissing(t *testing.T) {
	db, root := buildThreeLeafTrie(t)

	missing, err := HexaryNearbyRightMissing(Path{RootKey: root, Tail: []byte{9}}, db)
	if err != nil {
		t.Fatalf("HexaryNearbyRightMissing: %v", err)
	}
	if !missing {
		t.Fatal("expected no strictly-greater leaf past the end")
	}

	missing, err = HexaryNearbyRightMissing(Path{RootKey: root, Tail: []byte{2}}, db)
	if err != nil {
		t.Fatalf("HexaryNearbyRightMissing: %v", err)
	}
	if missing {
		t.Fatal("expected a strictly-greater leaf to exist between A and B")
	}
}

func TestHexaryNearbyRightMissing_EmptyTailIsError(t *testing.T) {
	db, root := buildThreeLeafTrie(t)
	if _, err := HexaryNearbyRightMissing(Path{RootKey: root}, db); err != ErrPathTail {
		t.Fatalf("HexaryNearbyRightMissing(empty tail) = %v, want ErrPathTail", err)
	}
}

func TestHexaryNearby_EmptyPathIsError(t *testing.T) {
	db, root := buildThreeLeafTrie(t)
	_, err := HexaryNearbyRight(Path{RootKey: root}, db)
	if err != ErrEmptyPath {
		t.Fatalf("HexaryNearbyRight(empty) = %v, want ErrEmptyPath", err)
	}
	_, err = HexaryNearbyLeft(Path{RootKey: root}, db)
	if err != ErrEmptyPath {
		t.Fatalf("HexaryNearbyLeft(empty) = %v, want ErrEmptyPath", err)
	}
}
