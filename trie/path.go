// path.go implements the path resolver (C4): walking the longest matching
// path from a starting nibble sequence down through the trie store.
package trie

// Step records one node visited along a Path: the node's Key, the node
// itself (for convenience, avoiding a re-fetch), and the nibble selected
// to descend further (-1 if this step is not a Branch selection, i.e. an
// Extension consumption or the terminal step).
type Step struct {
	Key    Key
	Node   *Node
	Nibble int
}

// Path is a walk down from RootKey through Steps, plus any nibbles of the
// original target that could not be consumed (Tail).
type Path struct {
	RootKey Key
	Steps   []Step
	Tail    []byte
}

// LastKey returns the Key of the last step, or RootKey if Steps is empty.
func (p Path) LastKey() Key {
	if len(p.Steps) == 0 {
		return p.RootKey
	}
	return p.Steps[len(p.Steps)-1].Key
}

// LastNode returns the Node of the last step, or nil if Steps is empty.
func (p Path) LastNode() *Node {
	if len(p.Steps) == 0 {
		return nil
	}
	return p.Steps[len(p.Steps)-1].Node
}

// FullNibbles reassembles the nibble sequence walked so far (the branch
// selections and extension prefixes consumed) followed by the unresolved
// tail.
func (p Path) FullNibbles() []byte {
	var out []byte
	for _, s := range p.Steps {
		if s.Node == nil {
			continue
		}
		switch s.Node.Kind {
		case KindExtension, KindLeaf:
			out = append(out, s.Node.Prefix...)
		case KindBranch:
			if s.Nibble >= 0 {
				out = append(out, byte(s.Nibble))
			}
		}
	}
	return append(out, p.Tail...)
}

// HexaryPath consumes nibbles from start, descending from rootKey through
// store (§4.4). The walk stops when: the target is fully consumed; a
// Branch's selected child link is empty; an Extension's prefix does not
// match the remaining tail; a Leaf's prefix does not match the remaining
// tail exactly; or the next child is absent from the store (a dangling
// link, the tail then records what could not be resolved).
func HexaryPath(start []byte, rootKey Key, store *Database) Path {
	p := Path{RootKey: rootKey, Tail: append([]byte{}, start...)}

	curKey := rootKey
	for {
		n, ok := store.Get(curKey)
		if !ok {
			return p
		}
		switch n.Kind {
		case KindLeaf:
			if nibblesEqual(p.Tail, n.Prefix) {
				p.Steps = append(p.Steps, Step{Key: curKey, Node: n, Nibble: -1})
				p.Tail = nil
			} else {
				p.Steps = append(p.Steps, Step{Key: curKey, Node: n, Nibble: -1})
			}
			return p

		case KindExtension:
			if len(p.Tail) >= len(n.Prefix) && nibblesEqual(p.Tail[:len(n.Prefix)], n.Prefix) {
				p.Steps = append(p.Steps, Step{Key: curKey, Node: n, Nibble: -1})
				p.Tail = p.Tail[len(n.Prefix):]
				if n.Child.Empty() {
					return p
				}
				curKey = n.Child.key
				continue
			}
			p.Steps = append(p.Steps, Step{Key: curKey, Node: n, Nibble: -1})
			return p

		case KindBranch:
			if len(p.Tail) == 0 {
				p.Steps = append(p.Steps, Step{Key: curKey, Node: n, Nibble: -1})
				return p
			}
			nib := p.Tail[0]
			child := n.Children[nib]
			p.Steps = append(p.Steps, Step{Key: curKey, Node: n, Nibble: int(nib)})
			if child.Empty() {
				return p
			}
			p.Tail = p.Tail[1:]
			curKey = child.key
			continue
		}
	}
}

// HexaryPathNodeKey is a convenience over HexaryPath returning the Key of
// the exact node addressed by the partial path, and -- when the walk
// stopped at a present-but-unresolved child link (a dangling link) -- that
// child's Key as a "fetch this next" hint.
func HexaryPathNodeKey(start []byte, rootKey Key, store *Database) (resolved Key, missingChild Key, hasMissing bool) {
	p := HexaryPath(start, rootKey, store)
	resolved = p.LastKey()
	if len(p.Tail) == 0 || len(p.Steps) == 0 {
		return resolved, Key{}, false
	}
	last := p.Steps[len(p.Steps)-1]
	if last.Node == nil {
		return resolved, Key{}, false
	}
	switch last.Node.Kind {
	case KindBranch:
		if last.Nibble >= 0 {
			c := last.Node.Children[last.Nibble]
			if !c.Empty() {
				return resolved, c.key, true
			}
		}
	case KindExtension:
		if !last.Node.Child.Empty() {
			return resolved, last.Node.Child.key, true
		}
	}
	return resolved, Key{}, false
}

func nibblesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
