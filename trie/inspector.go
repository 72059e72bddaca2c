// inspector.go implements the width-first dangling-link inspector (C6,
// §4.6): a search for every non-leaf node reachable from a root whose
// child link references a key not present in the store, suspendable and
// resumable across calls via an explicit resume context (never a
// coroutine, per §6 "suspension points: none within a single call").
package trie

// Dangling is one reported dangling link: the partial path addressing it
// and, when the link carries a resolved hash key, that key.
type Dangling struct {
	Path     []byte
	ChildKey NodeKey
	HasKey   bool
}

// InspectReport is the result of one inspect call.
type InspectReport struct {
	Danglings []Dangling
	Visited   int
	MaxDepth  int
	Stopped   bool
	Resume    *ResumeContext
}

// ResumeContext is the explicit re-entry handle for a suspended inspect
// run: the remainder of the width-first frontier plus running totals.
type ResumeContext struct {
	pending  []inspectItem
	visited  int
	maxDepth int
}

// inspectItem is one frontier entry: a link still to be classified. Seed
// and root items (fromLink false) are fetched from the store even when
// provisionally keyed; discovered child links (fromLink true) with a
// provisional key are reported as danglings without a fetch, per §4.6's
// four-way classification.
type inspectItem struct {
	key      Key
	path     []byte
	depth    int
	fromLink bool
}

// HexaryInspect runs (or resumes) a width-first dangling-link search under
// rootKey. seeds, when non-empty and resume is nil, seeds the frontier
// with the nodes addressed by each partial path instead of the root
// itself; resume, when non-nil, ignores seeds and continues a prior run.
// suspendAfter/stopAtLevel/maxDangling <= 0 disable that cap. Whenever a
// cap triggers, the entire unprocessed remainder of the frontier is moved
// into the returned resume context, so the union of danglings across
// resumed calls stays exactly the reachable set (§4.6, §8).
func HexaryInspect(rootKey Key, seeds [][]byte, resume *ResumeContext, suspendAfter, stopAtLevel, maxDangling int, store *Database) (*InspectReport, error) {
	var toVisit []inspectItem
	visited := 0
	visitedThisRun := 0
	maxDepthSeen := 0

	switch {
	case resume != nil:
		toVisit = append(toVisit, resume.pending...)
		visited = resume.visited
		maxDepthSeen = resume.maxDepth
	case len(seeds) == 0:
		toVisit = []inspectItem{{key: rootKey, path: nil, depth: 0}}
	default:
		for _, seed := range seeds {
			p := HexaryPath(seed, rootKey, store)
			if len(p.Tail) != 0 {
				// The seed path itself doesn't resolve to a present node;
				// nothing to seed from here.
				continue
			}
			toVisit = append(toVisit, inspectItem{key: p.LastKey(), path: append([]byte{}, seed...), depth: 0})
		}
	}

	var danglings []Dangling
	var toVisitNext []inspectItem
	stopped := false

	for len(toVisit) > 0 {
		// suspendAfter is a per-run cap (§4.6): count only this call's
		// visits, so repeated resumption with the same cap still drains
		// the frontier a slice at a time instead of stalling.
		if suspendAfter > 0 && visitedThisRun >= suspendAfter {
			toVisitNext = append(toVisitNext, toVisit...)
			break
		}
		item := toVisit[0]
		toVisit = toVisit[1:]

		if stopAtLevel > 0 && item.depth >= stopAtLevel {
			// Depth-capped items are parked, not dropped: a resumed call with
			// a deeper (or disabled) stopAtLevel picks them back up, keeping
			// the across-calls completeness guarantee (§4.6).
			stopped = true
			toVisitNext = append(toVisitNext, item)
			continue
		}

		if item.fromLink && !item.key.IsHashKey() {
			danglings = append(danglings, Dangling{Path: item.path})
			if maxDangling > 0 && len(danglings) >= maxDangling {
				toVisitNext = append(toVisitNext, toVisit...)
				break
			}
			continue
		}

		n, ok := store.Get(item.key)
		if !ok {
			if item.fromLink {
				danglings = append(danglings, Dangling{Path: item.path, ChildKey: item.key.MustHash(), HasKey: true})
				if maxDangling > 0 && len(danglings) >= maxDangling {
					toVisitNext = append(toVisitNext, toVisit...)
					break
				}
			}
			continue
		}
		visited++
		visitedThisRun++
		if item.depth > maxDepthSeen {
			maxDepthSeen = item.depth
		}

		switch n.Kind {
		case KindExtension:
			if !n.Child.Empty() {
				toVisit = append(toVisit, inspectItem{
					key:      n.Child.key,
					path:     append(append([]byte{}, item.path...), n.Prefix...),
					depth:    item.depth + 1,
					fromLink: true,
				})
			}
		case KindBranch:
			for nib := 0; nib < 16; nib++ {
				if n.Children[nib].Empty() {
					continue
				}
				toVisit = append(toVisit, inspectItem{
					key:      n.Children[nib].key,
					path:     append(append([]byte{}, item.path...), byte(nib)),
					depth:    item.depth + 1,
					fromLink: true,
				})
			}
		}
	}

	report := &InspectReport{
		Danglings: danglings,
		Visited:   visited,
		MaxDepth:  maxDepthSeen,
		Stopped:   stopped,
	}
	if len(toVisitNext) > 0 {
		report.Resume = &ResumeContext{pending: toVisitNext, visited: visited, maxDepth: maxDepthSeen}
	}
	return report, nil
}
