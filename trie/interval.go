// interval.go implements the IntervalSet over NodeTag space (§3): an
// ordered set of disjoint closed NodeTagRanges. Higher layers use it to
// track which leaf-path intervals a sync has already fetched and proven;
// the envelope algebra (C7) consumes it through EnvelopeTouchedBy.
package trie

import "github.com/holiman/uint256"

// SubOne returns t-1, saturating at zero.
func (t NodeTag) SubOne() NodeTag {
	if t.Int.IsZero() {
		return t
	}
	var one uint256.Int
	one.SetOne()
	var diff uint256.Int
	diff.Sub(&t.Int, &one)
	return NodeTag{diff}
}

// IntervalSet is an ordered set of disjoint closed NodeTagRanges, kept
// sorted by low endpoint with adjacent ranges merged. The zero value is an
// empty set. Not safe for concurrent mutation (§5: single-writer
// discipline, same as the trie store itself).
type IntervalSet struct {
	ranges []NodeTagRange
}

// NewIntervalSet returns an empty set.
func NewIntervalSet() *IntervalSet { return &IntervalSet{} }

// Len returns the number of disjoint ranges in the set.
func (s *IntervalSet) Len() int { return len(s.ranges) }

// Ranges returns a copy of the set's ranges in ascending order.
func (s *IntervalSet) Ranges() []NodeTagRange {
	out := make([]NodeTagRange, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Insert adds r to the set, merging it with any overlapping or adjacent
// ranges. A range with Hi < Lo is ignored.
func (s *IntervalSet) Insert(r NodeTagRange) {
	if r.Hi.Less(r.Lo) {
		return
	}
	out := make([]NodeTagRange, 0, len(s.ranges)+1)
	placed := false
	for _, cur := range s.ranges {
		switch {
		case touching(cur, r):
			r = mergeRanges(cur, r)
		case cur.Hi.Less(r.Lo):
			out = append(out, cur)
		default:
			if !placed {
				out = append(out, r)
				placed = true
			}
			out = append(out, cur)
		}
	}
	if !placed {
		out = append(out, r)
	}
	s.ranges = out
}

// Remove subtracts r from the set, splitting any range it partially covers.
func (s *IntervalSet) Remove(r NodeTagRange) {
	if r.Hi.Less(r.Lo) {
		return
	}
	out := make([]NodeTagRange, 0, len(s.ranges)+1)
	for _, cur := range s.ranges {
		if !cur.Overlaps(r) {
			out = append(out, cur)
			continue
		}
		if cur.Lo.Less(r.Lo) {
			out = append(out, NodeTagRange{Lo: cur.Lo, Hi: r.Lo.SubOne()})
		}
		if r.Hi.Less(cur.Hi) {
			out = append(out, NodeTagRange{Lo: r.Hi.AddOne(), Hi: cur.Hi})
		}
	}
	s.ranges = out
}

// Union inserts every range of o into s.
func (s *IntervalSet) Union(o *IntervalSet) {
	for _, r := range o.ranges {
		s.Insert(r)
	}
}

// Difference removes every range of o from s.
func (s *IntervalSet) Difference(o *IntervalSet) {
	for _, r := range o.ranges {
		s.Remove(r)
	}
}

// Contains reports whether t is covered by the set.
func (s *IntervalSet) Contains(t NodeTag) bool {
	r, ok := s.LE(t)
	return ok && t.LessOrEqual(r.Hi)
}

// ContainsRange reports whether all of r is covered by a single range of
// the set (by construction any fully-covered interval lies within one
// merged range).
func (s *IntervalSet) ContainsRange(r NodeTagRange) bool {
	c, ok := s.LE(r.Lo)
	return ok && r.Hi.LessOrEqual(c.Hi)
}

// LE returns the rightmost range whose low endpoint is at or below t: the
// range covering t if t is covered, otherwise the nearest covered range
// entirely below t. ok is false if every range starts above t.
func (s *IntervalSet) LE(t NodeTag) (NodeTagRange, bool) {
	for i := len(s.ranges) - 1; i >= 0; i-- {
		if s.ranges[i].Lo.LessOrEqual(t) {
			return s.ranges[i], true
		}
	}
	return NodeTagRange{}, false
}

// GE returns the leftmost range whose high endpoint is at or above t: the
// range covering t if t is covered, otherwise the nearest covered range
// entirely above t. ok is false if every range ends below t.
func (s *IntervalSet) GE(t NodeTag) (NodeTagRange, bool) {
	for _, r := range s.ranges {
		if t.LessOrEqual(r.Hi) {
			return r, true
		}
	}
	return NodeTagRange{}, false
}

// Coverage returns the total number of NodeTags covered by the set. The
// full 256-bit space holds 2^256 points, one more than uint256 can
// represent, so a set covering everything saturates at the all-ones value.
func (s *IntervalSet) Coverage() uint256.Int {
	var total uint256.Int
	var one uint256.Int
	one.SetOne()
	for _, r := range s.ranges {
		var span uint256.Int
		span.Sub(&r.Hi.Int, &r.Lo.Int)
		if _, ov := span.AddOverflow(&span, &one); ov {
			return *new(uint256.Int).Not(new(uint256.Int))
		}
		if _, ov := total.AddOverflow(&total, &span); ov {
			return *new(uint256.Int).Not(new(uint256.Int))
		}
	}
	return total
}

// TouchedBy returns exactly the set's ranges intersecting the envelope of
// the partial path (§4.7).
func (s *IntervalSet) TouchedBy(path []byte) []NodeTagRange {
	return EnvelopeTouchedBy(s.ranges, path)
}

// touching reports whether a and b overlap or sit immediately adjacent
// (so that their union is a single closed range). AddOne's saturation at
// the maximum tag keeps the adjacency test correct at the top of the space.
func touching(a, b NodeTagRange) bool {
	return a.Lo.LessOrEqual(b.Hi.AddOne()) && b.Lo.LessOrEqual(a.Hi.AddOne())
}

func mergeRanges(a, b NodeTagRange) NodeTagRange {
	out := a
	if b.Lo.Less(out.Lo) {
		out.Lo = b.Lo
	}
	if out.Hi.Less(b.Hi) {
		out.Hi = b.Hi
	}
	return out
}
