// envelope.go implements the envelope algebra (C7): converting partial
// paths into 256-bit NodeTag intervals, and decomposing an envelope against
// a boundary-proven interval into a minimal covering list of sub-envelopes.
package trie

import (
	"sort"

	"github.com/holiman/uint256"
)

// NodeTag is a 256-bit unsigned ordinal over the leaf-path space.
type NodeTag struct {
	uint256.Int
}

// NodeTagFromKey reinterprets a NodeKey as a NodeTag.
func NodeTagFromKey(k NodeKey) NodeTag { return k.Tag() }

// Cmp orders two tags; -1/0/1 as uint256.Int.Cmp.
func (t NodeTag) Cmp(o NodeTag) int { return t.Int.Cmp(&o.Int) }

// Less reports t < o.
func (t NodeTag) Less(o NodeTag) bool { return t.Cmp(o) < 0 }

// LessOrEqual reports t <= o.
func (t NodeTag) LessOrEqual(o NodeTag) bool { return t.Cmp(o) <= 0 }

// AddOne returns t+1, saturating at the maximum NodeTag.
func (t NodeTag) AddOne() NodeTag {
	var one uint256.Int
	one.SetOne()
	var sum uint256.Int
	_, overflow := sum.AddOverflow(&t.Int, &one)
	if overflow {
		return MaxNodeTag()
	}
	return NodeTag{sum}
}

// MaxNodeTag returns the maximum representable NodeTag (all bits set).
func MaxNodeTag() NodeTag {
	var m uint256.Int
	m.Not(&m) // Not(0) = all-ones
	return NodeTag{m}
}

// NodeTagRange is a closed interval [Lo, Hi], Lo <= Hi.
type NodeTagRange struct {
	Lo, Hi NodeTag
}

// Contains reports whether t falls within the range, inclusive.
func (r NodeTagRange) Contains(t NodeTag) bool {
	return r.Lo.LessOrEqual(t) && t.LessOrEqual(r.Hi)
}

// Overlaps reports whether r and o share at least one point.
func (r NodeTagRange) Overlaps(o NodeTagRange) bool {
	return r.Lo.LessOrEqual(o.Hi) && o.Lo.LessOrEqual(r.Hi)
}

// Envelope computes the closed NodeTag interval [pad(p,0x00), pad(p,0xff)]
// generated by a partial (hex-prefix decoded, terminator-stripped) nibble
// path. A length-64 path yields a singleton interval.
func Envelope(nibbles []byte) NodeTagRange {
	lo := padNibblesToKey(nibbles, 0x00).Tag()
	hi := padNibblesToKey(nibbles, 0xff).Tag()
	return NodeTagRange{Lo: lo, Hi: hi}
}

// envelopeItem pairs a partial path with its precomputed envelope, used by
// EnvelopeUnique and EnvelopeDecompose.
type envelopeItem struct {
	path []byte
	env  NodeTagRange
}

// EnvelopeUnique sorts envelopes by low endpoint and drops any envelope
// strictly contained within another, preserving only outermost envelopes
// (§4.7). Implemented via the sweep-line hint in the spec: enter/exit
// markers ordered by position, emitting on transition into nesting depth 0.
func EnvelopeUnique(paths [][]byte) [][]byte {
	if len(paths) == 0 {
		return nil
	}
	items := make([]envelopeItem, len(paths))
	for i, p := range paths {
		items[i] = envelopeItem{path: p, env: Envelope(p)}
	}

	type marker struct {
		pos   NodeTag
		enter bool
		idx   int
	}
	markers := make([]marker, 0, len(items)*2)
	for i, it := range items {
		markers = append(markers, marker{pos: it.env.Lo, enter: true, idx: i})
		markers = append(markers, marker{pos: it.env.Hi, enter: false, idx: i})
	}
	sort.SliceStable(markers, func(i, j int) bool {
		c := markers[i].pos.Cmp(markers[j].pos)
		if c != 0 {
			return c < 0
		}
		// At a tie, process exits of wider (earlier-opened) envelopes after
		// entries, so a contained envelope's exit doesn't prematurely close
		// its container's nesting level. Enters before exits at same pos.
		if markers[i].enter != markers[j].enter {
			return markers[i].enter
		}
		return false
	})

	var out [][]byte
	depth := 0
	for _, m := range markers {
		if m.enter {
			if depth == 0 {
				out = append(out, items[m.idx].path)
			}
			depth++
		} else {
			depth--
		}
	}
	return out
}

// EnvelopeTouchedBy returns exactly the ranges in rangeSet that have
// non-empty intersection with the envelope of path (§4.7).
func EnvelopeTouchedBy(rangeSet []NodeTagRange, path []byte) []NodeTagRange {
	env := Envelope(path)
	var out []NodeTagRange
	for _, r := range rangeSet {
		if r.Overlaps(env) {
			out = append(out, r)
		}
	}
	return out
}

// NodeSpec identifies a child node reachable from the decomposition: its
// key (possibly unresolved if dangling) and the partial path addressing it.
type NodeSpec struct {
	ChildKey NodeKey
	HasKey   bool
	Path     []byte
}

// EnvelopeDecompose computes the list of partial paths whose envelopes
// jointly cover exactly Envelope(path) \ iv, given that iv is known to be
// boundary-proven under root (§4.7). Returns ErrDisjunct if iv does not
// overlap the envelope at all (when that makes the requested decomposition
// meaningless), or ErrDegenerated if the envelope is already contained in
// iv.
func EnvelopeDecompose(path []byte, rootKey NodeKey, iv NodeTagRange, store *Database) ([]NodeSpec, error) {
	env := Envelope(path)

	if !env.Overlaps(iv) {
		return nil, ErrDisjunct
	}
	if iv.Lo.LessOrEqual(env.Lo) && env.Hi.LessOrEqual(iv.Hi) {
		return nil, ErrDegenerated
	}

	var specs []NodeSpec

	if env.Lo.Less(iv.Lo) {
		left, err := decomposeSide(path, rootKey, iv.Lo, store, true)
		if err != nil {
			return nil, err
		}
		specs = append(specs, left...)
	}
	if iv.Hi.Less(env.Hi) {
		right, err := decomposeSide(path, rootKey, iv.Hi, store, false)
		if err != nil {
			return nil, err
		}
		specs = append(specs, right...)
	}
	return specs, nil
}

// decomposeSide walks the common prefix between path and the boundary tag
// (approached from the left via nearby-left of boundary, or the right via
// nearby-right), collecting sibling children that fall strictly outside
// the proven interval on the requested side.
func decomposeSide(path []byte, rootKey NodeKey, boundary NodeTag, store *Database, left bool) ([]NodeSpec, error) {
	boundaryBytes := boundary.Bytes32()
	bn := bytesToNibblesAll(boundaryBytes[:])

	rootAsKey := HashKey(rootKey)
	var boundaryPath Path
	var err error
	if left {
		boundaryPath, err = HexaryNearbyRight(Path{RootKey: rootAsKey, Tail: bn}, store)
	} else {
		boundaryPath, err = HexaryNearbyLeft(Path{RootKey: rootAsKey, Tail: bn}, store)
	}
	if err != nil {
		return nil, err
	}

	common := prefixLen(path, boundaryPath.FullNibbles())
	var specs []NodeSpec
	consumed := 0
	for i, step := range boundaryPath.Steps {
		before := consumed
		consumed += stepNibbleCount(step)
		// A step's nibble span can cover more than one nibble (an Extension's
		// Prefix), so the step that straddles the common-prefix depth must be
		// found by running nibble count, not by step index (§4.4/§4.7).
		if before < common {
			continue
		}
		if step.Node == nil || step.Node.Kind != KindBranch {
			continue
		}
		boundaryNibble := step.Nibble
		for nib := 0; nib < 16; nib++ {
			if left && nib >= boundaryNibble {
				continue
			}
			if !left && nib <= boundaryNibble {
				continue
			}
			child := step.Node.Children[nib]
			if child.Empty() {
				continue
			}
			childPath := append(append([]byte{}, nibblesThroughStep(boundaryPath, i)...), byte(nib))
			spec := NodeSpec{Path: childPath}
			if child.key.IsHashKey() {
				spec.ChildKey = child.key.MustHash()
				spec.HasKey = true
			}
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

// stepNibbleCount returns how many nibbles of the parent's tail s consumed:
// len(Prefix) for an Extension or terminal Leaf step, 1 for a Branch step
// that selected a child, 0 for a Branch step reached with an empty tail.
func stepNibbleCount(s Step) int {
	if s.Node == nil {
		return 0
	}
	switch s.Node.Kind {
	case KindExtension, KindLeaf:
		return len(s.Node.Prefix)
	case KindBranch:
		if s.Nibble >= 0 {
			return 1
		}
	}
	return 0
}

// nibblesThroughStep reassembles the nibble sequence consumed by
// boundaryPath.Steps[:upTo], mirroring Path.FullNibbles but truncated.
func nibblesThroughStep(p Path, upTo int) []byte {
	var out []byte
	for _, s := range p.Steps[:upTo] {
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
	return out
}

func bytesToNibblesAll(b []byte) []byte {
	nibbles := make([]byte, len(b)*2)
	for i, v := range b {
		nibbles[i*2] = v >> 4
		nibbles[i*2+1] = v & 0x0f
	}
	return nibbles
}
