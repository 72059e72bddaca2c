// interpolator.go implements the interpolator (C8, §4.8): growing a
// partial trie from a sorted list of leaf-specs against a store
// pre-populated with proof nodes, then recomputing hashes bottom-up to
// finalize every freshly-created node from a provisional key to its real
// NodeKey.
//
// Phase A's copy-on-write insert is grounded on the teacher's recursive
// Trie.insert (trie.go): same shortNode-split/fullNode-copy shape, adapted
// to the store-addressed Key/Database model -- a recursive call returns
// the (possibly new) Key for its subtree instead of a node pointer, and
// the caller re-links its own child slot to that Key.
package trie

import "errors"

// LeafSpec is one leaf to interpolate: its full 64-nibble path and value.
type LeafSpec struct {
	Path  []byte
	Value []byte
}

type interpState struct {
	db      *Database
	repairs map[NodeKey]Key // claimed hash of a dangling subtree -> surrogate provisional root under reconstruction
}

// HexaryInterpolate grows the trie rooted at rootKey in db with leaves (a
// list sorted strictly by path), returning the finalized root Key. bootstrap
// allows creating rootKey's node from scratch when rootKey is not yet
// present in db (no proof, the leaves constitute the entire trie).
func HexaryInterpolate(db *Database, rootKey Key, leaves []LeafSpec, bootstrap bool) (Key, error) {
	root := rootKey
	if _, ok := db.Get(root); !ok {
		if !bootstrap {
			return root, ErrNodeNotFound
		}
		fresh := db.FreshKey()
		db.Put(fresh, NewBranch(TmpRoot))
		root = fresh
	}

	st := &interpState{db: db, repairs: make(map[NodeKey]Key)}
	for _, leaf := range leaves {
		newRoot, err := insertLeafRec(st, root, leaf.Path, leaf.Value)
		if err != nil {
			return root, err
		}
		root = newRoot
	}

	finalRoot, err := finalizeFrom(db, root)
	if err != nil {
		return root, err
	}
	root = finalRoot

	blocked, err := finalizeRepairs(st)
	if err != nil {
		return root, err
	}
	for len(blocked) > 0 {
		next, err := finalizeRepairs(st)
		if err != nil {
			return root, err
		}
		if len(next) >= len(blocked) {
			errs := make([]error, 0, len(next)+1)
			errs = append(errs, ErrBoundaryProofFailed)
			for _, b := range next {
				errs = append(errs, b)
			}
			return root, errors.Join(errs...)
		}
		blocked = next
	}
	return root, nil
}

// insertLeafRec inserts value at tail under key, returning the (possibly
// new, if key's node had to be copied or replaced) Key for this subtree.
// A non-empty child link that the store cannot resolve is treated as a
// free-standing repair target (§4.8): the leaf is grown in a surrogate
// provisional subtree instead of erroring, to be checked against the
// ancestor's claimed hash in Phase B.
func insertLeafRec(st *interpState, key Key, tail []byte, value []byte) (Key, error) {
	n, ok := st.db.Get(key)
	if !ok {
		return key, ErrDanglingLink
	}

	switch n.Kind {
	case KindLeaf:
		match := prefixLen(tail, n.Prefix)
		if match == len(n.Prefix) && match == len(tail) {
			newLeaf := n
			if !n.St.Writable() {
				newLeaf = n.Copy()
				newLeaf.St = Mutable
			}
			newLeaf.Value = append([]byte{}, value...)
			if newLeaf == n {
				return key, nil
			}
			nk := st.db.FreshKey()
			st.db.Put(nk, newLeaf)
			return nk, nil
		}
		if match == len(n.Prefix) || match == len(tail) {
			// One path is a strict prefix of the other: in this domain every
			// leaf path is exactly 64 nibbles, so two distinct leaves always
			// diverge before either is exhausted.
			return key, ErrGarbledNode
		}
		newLeafKey := st.db.FreshKey()
		st.db.Put(newLeafKey, NewLeaf(tail[match+1:], value, Mutable))
		oldLeafKey := st.db.FreshKey()
		st.db.Put(oldLeafKey, NewLeaf(n.Prefix[match+1:], n.Value, Mutable))
		branch := NewBranch(Mutable)
		branch.Children[n.Prefix[match]] = linkTo(oldLeafKey)
		branch.Children[tail[match]] = linkTo(newLeafKey)
		branchKey := st.db.FreshKey()
		st.db.Put(branchKey, branch)
		if match > 0 {
			extKey := st.db.FreshKey()
			st.db.Put(extKey, NewExtension(tail[:match], branchKey, Mutable))
			return extKey, nil
		}
		return branchKey, nil

	case KindExtension:
		match := prefixLen(tail, n.Prefix)
		if match == len(n.Prefix) {
			if n.Child.Empty() {
				return key, ErrExtensionError
			}
			childKey, err := insertLeafRec(st, n.Child.key, tail[match:], value)
			if err != nil {
				return key, err
			}
			newExt := n
			if !n.St.Writable() {
				newExt = n.Copy()
				newExt.St = Mutable
			}
			newExt.Child = linkTo(childKey)
			if newExt == n {
				return key, nil
			}
			nk := st.db.FreshKey()
			st.db.Put(nk, newExt)
			return nk, nil
		}

		// Split: shared-prefix Extension (if L>0) -> middle Branch ->
		// {shortened original node, new Leaf}.
		if n.Child.Empty() {
			return key, ErrExtensionError
		}
		var shortenedKey Key
		if match+1 == len(n.Prefix) {
			shortenedKey = n.Child.key
		} else {
			shortened := NewExtension(n.Prefix[match+1:], n.Child.key, Mutable)
			sk := st.db.FreshKey()
			st.db.Put(sk, shortened)
			shortenedKey = sk
		}
		newLeafKey := st.db.FreshKey()
		st.db.Put(newLeafKey, NewLeaf(tail[match+1:], value, Mutable))
		branch := NewBranch(Mutable)
		branch.Children[n.Prefix[match]] = linkTo(shortenedKey)
		branch.Children[tail[match]] = linkTo(newLeafKey)
		branchKey := st.db.FreshKey()
		st.db.Put(branchKey, branch)
		if match > 0 {
			extKey := st.db.FreshKey()
			st.db.Put(extKey, NewExtension(tail[:match], branchKey, Mutable))
			return extKey, nil
		}
		return branchKey, nil

	case KindBranch:
		if len(tail) == 0 {
			return key, ErrBranchError
		}
		nib := tail[0]
		child := n.Children[nib]

		var childKey Key
		switch {
		case child.Empty():
			lk := st.db.FreshKey()
			st.db.Put(lk, NewLeaf(tail[1:], value, Mutable))
			childKey = lk

		default:
			if _, ok := st.db.Get(child.key); ok {
				var err error
				childKey, err = insertLeafRec(st, child.key, tail[1:], value)
				if err != nil {
					return key, err
				}
			} else {
				// Dangling link under a (necessarily Static/Locked) branch:
				// grow a surrogate subtree off to the side instead of
				// mutating this branch's already-committed child slot.
				if !child.key.IsHashKey() {
					return key, ErrDanglingLink
				}
				claimed := child.key.MustHash()
				surrogate, exists := st.repairs[claimed]
				if !exists {
					lk := st.db.FreshKey()
					st.db.Put(lk, NewLeaf(tail[1:], value, Mutable))
					st.repairs[claimed] = lk
				} else {
					newSurrogate, err := insertLeafRec(st, surrogate, tail[1:], value)
					if err != nil {
						return key, err
					}
					st.repairs[claimed] = newSurrogate
				}
				return key, nil // branch itself untouched
			}
		}

		newBranch := n
		if !n.St.Writable() {
			newBranch = n.Copy()
			newBranch.St = Mutable
		}
		newBranch.Children[nib] = linkTo(childKey)
		if newBranch == n {
			return key, nil
		}
		nk := st.db.FreshKey()
		st.db.Put(nk, newBranch)
		return nk, nil
	}
	return key, ErrUnexpectedNode
}

// finalizeFrom recursively hashes a provisional (Mutable/TmpRoot) subtree
// bottom-up, replacing each node's provisional key with its real NodeKey
// and promoting it to Locked. Already-finalized (Static/Locked) subtrees
// are left untouched.
func finalizeFrom(db *Database, key Key) (Key, error) {
	n, ok := db.Get(key)
	if !ok {
		return key, ErrNodeNotFound
	}
	if n.St == Static || n.St == Locked {
		return key, nil
	}

	switch n.Kind {
	case KindExtension:
		if n.Child.Empty() {
			return key, ErrExtensionError
		}
		childKey, err := finalizeFrom(db, n.Child.key)
		if err != nil {
			return key, err
		}
		n.Child = linkTo(childKey)
	case KindBranch:
		for i, c := range n.Children {
			if c.Empty() {
				continue
			}
			childKey, err := finalizeFrom(db, c.key)
			if err != nil {
				return key, err
			}
			n.Children[i] = linkTo(childKey)
		}
	}

	hk, err := HashNode(n)
	if err != nil {
		return key, err
	}
	n.St = Locked
	finalKey := HashKey(hk)
	db.Put(finalKey, n)
	if finalKey != key {
		db.Delete(key)
	}
	return finalKey, nil
}

// finalizeRepairs attempts to finalize every outstanding dangling-subtree
// repair, comparing each recomputed hash against the ancestor's claimed
// hash (§4.8). Repairs that already match are removed from st.repairs;
// the returned slice carries one RepairBlockedError per claimed hash still
// blocked, keyed by the tag the caller's retry loop needs.
func finalizeRepairs(st *interpState) ([]*RepairBlockedError, error) {
	var blocked []*RepairBlockedError
	for claimed, surrogateKey := range st.repairs {
		finalKey, err := finalizeFrom(st.db, surrogateKey)
		if err != nil {
			return nil, err
		}
		if !finalKey.IsHashKey() {
			return nil, ErrUnresolvedRepairNode
		}
		if finalKey.MustHash() != claimed {
			st.repairs[claimed] = finalKey
			blocked = append(blocked, &RepairBlockedError{PathTag: claimed.Tag()})
			continue
		}
		delete(st.repairs, claimed)
	}
	return blocked, nil
}
