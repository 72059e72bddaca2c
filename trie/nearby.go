// nearby.go implements the nearby navigator (C5): given a path, find the
// nearest leaf at-or-after (right) or at-or-before (left) the path's tail
// in nibble order.
//
// Rather than the spec's backtrack-from-path walk (§4.5 steps 1-5), this
// implements the same documented contract as a direct successor/
// predecessor search over the store: starting at the root, at each Branch
// try the bound's leading nibble first, then (right) every greater sibling
// or (left) every lesser sibling, descending least-first / most-first into
// whichever subtree is chosen. The two formulations compute identical
// results; the recursive form is simpler to verify against the spec's
// testable properties (§8 navigation monotonicity).
package trie

// maxWalkDepth bounds the node count of any root-to-leaf walk: 64 nibbles
// with branches and extensions interleaved can't exceed it in a well-formed
// trie, so crossing it means the store is cyclic or malformed.
const maxWalkDepth = 130

// HexaryNearbyRight extends path to the leaf immediately at or after the
// path's tail in nibble order (§4.5).
func HexaryNearbyRight(p Path, store *Database) (Path, error) {
	if len(p.Steps) == 0 && len(p.Tail) == 0 {
		return p, ErrEmptyPath
	}
	if last := p.LastNode(); last != nil && last.Kind == KindLeaf && len(p.Tail) == 0 {
		return p, nil
	}
	steps, ok, err := successor(p.RootKey, p.FullNibbles(), store, false, 0)
	if err != nil {
		return Path{}, err
	}
	if !ok {
		return Path{}, ErrFailed
	}
	return Path{RootKey: p.RootKey, Steps: steps}, nil
}

// HexaryNearbyLeft is the mirror image: the leaf immediately at or before
// the path's tail, found by preferring lesser siblings and descending
// most-first (greatest nibble first) to a leaf.
func HexaryNearbyLeft(p Path, store *Database) (Path, error) {
	if len(p.Steps) == 0 && len(p.Tail) == 0 {
		return p, ErrEmptyPath
	}
	if last := p.LastNode(); last != nil && last.Kind == KindLeaf && len(p.Tail) == 0 {
		return p, nil
	}
	steps, ok, err := predecessor(p.RootKey, p.FullNibbles(), store, false, 0)
	if err != nil {
		return Path{}, err
	}
	if !ok {
		return Path{}, ErrFailed
	}
	return Path{RootKey: p.RootKey, Steps: steps}, nil
}

// HexaryNearbyRightMissing decides whether there is NO leaf strictly to
// the right of an extended path whose tail is non-empty (§4.5, the core of
// left-bound proof verification).
func HexaryNearbyRightMissing(p Path, store *Database) (bool, error) {
	if len(p.Tail) == 0 {
		return false, ErrPathTail
	}
	_, ok, err := successor(p.RootKey, p.FullNibbles(), store, true, 0)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// successor finds the leftmost leaf whose full nibble path is >= bound
// (or > bound if strict), returning the step chain from root to that leaf.
func successor(key Key, bound []byte, store *Database, strict bool, depth int) ([]Step, bool, error) {
	if depth > maxWalkDepth {
		return nil, false, ErrNestingTooDeep
	}
	n, ok := store.Get(key)
	if !ok {
		return nil, false, ErrDanglingLink
	}
	switch n.Kind {
	case KindLeaf:
		if strict {
			if nibblesLess(bound, n.Prefix) {
				return []Step{{Key: key, Node: n, Nibble: -1}}, true, nil
			}
			return nil, false, nil
		}
		if nibblesLessOrEqual(bound, n.Prefix) {
			return []Step{{Key: key, Node: n, Nibble: -1}}, true, nil
		}
		return nil, false, nil

	case KindExtension:
		k := len(n.Prefix)
		m := len(bound)
		common := prefixLen(bound, n.Prefix)
		if common >= minInt(k, m) {
			if m <= k {
				// bound fully consumed by (a prefix of) the extension: the
				// whole subtree beneath qualifies, descend leftmost.
				childSteps, ok, err := leastLeaf(n.Child.key, store, depth+1)
				if err != nil {
					return nil, false, err
				}
				if !ok {
					return nil, false, nil
				}
				return append([]Step{{Key: key, Node: n, Nibble: -1}}, childSteps...), true, nil
			}
			childSteps, ok, err := successor(n.Child.key, bound[k:], store, strict, depth+1)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
			return append([]Step{{Key: key, Node: n, Nibble: -1}}, childSteps...), true, nil
		}
		var bv byte
		if common < m {
			bv = bound[common]
		}
		if bv < n.Prefix[common] {
			childSteps, ok, err := leastLeaf(n.Child.key, store, depth+1)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
			return append([]Step{{Key: key, Node: n, Nibble: -1}}, childSteps...), true, nil
		}
		return nil, false, nil

	case KindBranch:
		if len(bound) == 0 {
			return leastLeaf(key, store, depth)
		}
		nib := bound[0]
		if c := n.Children[nib]; !c.Empty() {
			childSteps, ok, err := successor(c.key, bound[1:], store, strict, depth+1)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return append([]Step{{Key: key, Node: n, Nibble: int(nib)}}, childSteps...), true, nil
			}
		}
		for idx := int(nib) + 1; idx < 16; idx++ {
			c := n.Children[idx]
			if c.Empty() {
				continue
			}
			childSteps, ok, err := leastLeaf(c.key, store, depth+1)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return append([]Step{{Key: key, Node: n, Nibble: idx}}, childSteps...), true, nil
			}
		}
		return nil, false, nil
	}
	return nil, false, ErrUnexpectedNode
}

// predecessor mirrors successor: leftmost-becomes-rightmost, >= becomes <=.
func predecessor(key Key, bound []byte, store *Database, strict bool, depth int) ([]Step, bool, error) {
	if depth > maxWalkDepth {
		return nil, false, ErrNestingTooDeep
	}
	n, ok := store.Get(key)
	if !ok {
		return nil, false, ErrDanglingLink
	}
	switch n.Kind {
	case KindLeaf:
		if strict {
			if nibblesLess(n.Prefix, bound) {
				return []Step{{Key: key, Node: n, Nibble: -1}}, true, nil
			}
			return nil, false, nil
		}
		if nibblesLessOrEqual(n.Prefix, bound) {
			return []Step{{Key: key, Node: n, Nibble: -1}}, true, nil
		}
		return nil, false, nil

	case KindExtension:
		k := len(n.Prefix)
		m := len(bound)
		common := prefixLen(bound, n.Prefix)
		if common >= minInt(k, m) {
			if m <= k {
				childSteps, ok, err := greatestLeaf(n.Child.key, store, depth+1)
				if err != nil {
					return nil, false, err
				}
				if !ok {
					return nil, false, nil
				}
				return append([]Step{{Key: key, Node: n, Nibble: -1}}, childSteps...), true, nil
			}
			childSteps, ok, err := predecessor(n.Child.key, bound[k:], store, strict, depth+1)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
			return append([]Step{{Key: key, Node: n, Nibble: -1}}, childSteps...), true, nil
		}
		var bv byte
		if common < m {
			bv = bound[common]
		}
		if bv > n.Prefix[common] {
			childSteps, ok, err := greatestLeaf(n.Child.key, store, depth+1)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
			return append([]Step{{Key: key, Node: n, Nibble: -1}}, childSteps...), true, nil
		}
		return nil, false, nil

	case KindBranch:
		if len(bound) == 0 {
			return greatestLeaf(key, store, depth)
		}
		nib := bound[0]
		if c := n.Children[nib]; !c.Empty() {
			childSteps, ok, err := predecessor(c.key, bound[1:], store, strict, depth+1)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return append([]Step{{Key: key, Node: n, Nibble: int(nib)}}, childSteps...), true, nil
			}
		}
		for idx := int(nib) - 1; idx >= 0; idx-- {
			c := n.Children[idx]
			if c.Empty() {
				continue
			}
			childSteps, ok, err := greatestLeaf(c.key, store, depth+1)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return append([]Step{{Key: key, Node: n, Nibble: idx}}, childSteps...), true, nil
			}
		}
		return nil, false, nil
	}
	return nil, false, ErrUnexpectedNode
}

func leastLeaf(key Key, store *Database, depth int) ([]Step, bool, error) {
	if depth > maxWalkDepth {
		return nil, false, ErrNestingTooDeep
	}
	n, ok := store.Get(key)
	if !ok {
		return nil, false, ErrDanglingLink
	}
	switch n.Kind {
	case KindLeaf:
		return []Step{{Key: key, Node: n, Nibble: -1}}, true, nil
	case KindExtension:
		childSteps, ok, err := leastLeaf(n.Child.key, store, depth+1)
		if err != nil || !ok {
			return nil, ok, err
		}
		return append([]Step{{Key: key, Node: n, Nibble: -1}}, childSteps...), true, nil
	case KindBranch:
		for idx := 0; idx < 16; idx++ {
			c := n.Children[idx]
			if c.Empty() {
				continue
			}
			childSteps, ok, err := leastLeaf(c.key, store, depth+1)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return append([]Step{{Key: key, Node: n, Nibble: idx}}, childSteps...), true, nil
			}
		}
		return nil, false, nil
	}
	return nil, false, ErrUnexpectedNode
}

func greatestLeaf(key Key, store *Database, depth int) ([]Step, bool, error) {
	if depth > maxWalkDepth {
		return nil, false, ErrNestingTooDeep
	}
	n, ok := store.Get(key)
	if !ok {
		return nil, false, ErrDanglingLink
	}
	switch n.Kind {
	case KindLeaf:
		return []Step{{Key: key, Node: n, Nibble: -1}}, true, nil
	case KindExtension:
		childSteps, ok, err := greatestLeaf(n.Child.key, store, depth+1)
		if err != nil || !ok {
			return nil, ok, err
		}
		return append([]Step{{Key: key, Node: n, Nibble: -1}}, childSteps...), true, nil
	case KindBranch:
		for idx := 15; idx >= 0; idx-- {
			c := n.Children[idx]
			if c.Empty() {
				continue
			}
			childSteps, ok, err := greatestLeaf(c.key, store, depth+1)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return append([]Step{{Key: key, Node: n, Nibble: idx}}, childSteps...), true, nil
			}
		}
		return nil, false, nil
	}
	return nil, false, ErrUnexpectedNode
}

func nibblesLess(a, b []byte) bool {
	return nibblesLessOrEqual(a, b) && !nibblesEqualPadded(a, b)
}

func nibblesEqualPadded(a, b []byte) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var av, bv byte
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			return false
		}
	}
	return true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
