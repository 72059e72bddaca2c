// range.go implements the range engine (C9, §4.9): paging through a
// trie's leaves under a NodeTag interval and byte budget, assembling a
// minimal boundary proof alongside the returned leaves.
package trie

import "github.com/ethsync/triecore/rlp"

// RangeLeaf is one leaf returned by RangeLeafsProof.
type RangeLeaf struct {
	Path  []byte
	Tag   NodeTag
	Value []byte
}

// RangeProof is the result of RangeLeafsProof: a contiguous page of
// leaves, the proof nodes needed to validate it, and their wire sizes.
type RangeProof struct {
	BaseTag   NodeTag
	HasBase   bool
	Leafs     []RangeLeaf
	LeafsSize int
	Proof     [][]byte
	ProofSize int
}

// RangeLeafsProof extracts leaves with NodeTag in iv, stopping at iv.Hi or
// byteBudget, and assembles the boundary proof: the non-leaf nodes on the
// path from root to base (the leaf immediately <= iv.Lo, if any) union the
// path from root to the last leaf emitted.
func RangeLeafsProof(db *Database, rootKey Key, iv NodeTagRange, byteBudget int) (*RangeProof, error) {
	report := &RangeProof{}

	lowBytes := iv.Lo.Bytes32()
	basePath, baseErr := HexaryNearbyLeft(Path{RootKey: rootKey, Tail: bytesToNibblesAll(lowBytes[:])}, db)
	switch baseErr {
	case nil:
		report.HasBase = true
		report.BaseTag = nibblesToTag(basePath.FullNibbles())
	case ErrFailed:
		report.HasBase = false
	default:
		// The left boundary can't be established (dangling link, garbled
		// node) -- without it the proof can't show the page is leftmost.
		return nil, ErrLowerBoundProofError
	}

	cursor := iv.Lo
	var lastLeafPath Path
	haveLast := false
	var prevTag NodeTag
	havePrev := false

	for cursor.LessOrEqual(iv.Hi) {
		cb := cursor.Bytes32()
		p, err := HexaryNearbyRight(Path{RootKey: rootKey, Tail: bytesToNibblesAll(cb[:])}, db)
		if err == ErrFailed {
			break // no more leaves at or after the cursor
		}
		if err != nil {
			// Dangling links, garbled nodes etc. must reach the caller
			// rather than silently truncating the page (§7).
			return nil, err
		}
		leaf := p.LastNode()
		if leaf == nil || leaf.Kind != KindLeaf {
			return nil, ErrLeafExpected
		}
		full := p.FullNibbles()
		tag := nibblesToTag(full)
		if !tag.LessOrEqual(iv.Hi) {
			break
		}
		if havePrev && !prevTag.Less(tag) {
			return nil, ErrFailedNextNode
		}

		pairSize, total := rangeRlpLeafListSize(len(leaf.Value), report.LeafsSize)
		_ = pairSize
		if len(report.Leafs) > 0 && total >= byteBudget {
			break
		}

		report.Leafs = append(report.Leafs, RangeLeaf{Path: full, Tag: tag, Value: leaf.Value})
		report.LeafsSize = total
		lastLeafPath = p
		haveLast = true
		prevTag = tag
		havePrev = true
		cursor = tag.AddOne()

		if total >= byteBudget {
			break
		}
	}

	proofSet := make(map[NodeKey][]byte)
	if report.HasBase {
		if err := collectProofPath(basePath, proofSet); err != nil {
			return nil, err
		}
	}
	if haveLast {
		if err := collectProofPath(lastLeafPath, proofSet); err != nil {
			return nil, err
		}
	}

	for k, enc := range proofSet {
		_ = k
		report.Proof = append(report.Proof, enc)
		report.ProofSize += rangeRlpSize(len(enc))
	}
	return report, nil
}

// EncodeLeafPairs RLP-encodes the page as the outer leaf list of a range
// reply (§6): a list of [key, value] pairs, each key the 32-byte padded
// leaf path. The pair sizes match the rangeRlpLeafListSize arithmetic the
// byte-budget loop runs, so an encoded page never exceeds what the budget
// admitted. Built on the rlp package's append writers rather than the
// reflective encoder, since this runs once per reply over every leaf.
func (p *RangeProof) EncodeLeafPairs() []byte {
	var pairs []byte
	for _, l := range p.Leafs {
		key := l.Tag.Bytes32()
		pair := rlp.EncodeBytes32(key)
		pair = rlp.AppendBytes(pair, l.Value)
		pairs = rlp.AppendListHeader(pairs, len(pair))
		pairs = append(pairs, pair...)
	}
	out := rlp.AppendListHeader(nil, len(pairs))
	return append(out, pairs...)
}

// collectProofPath adds every non-leaf node along p to set, keyed by its
// hash NodeKey, encoded per the wire codec (§6).
func collectProofPath(p Path, set map[NodeKey][]byte) error {
	for _, step := range p.Steps {
		if step.Node == nil || step.Node.Kind == KindLeaf {
			continue
		}
		if !step.Key.IsHashKey() {
			continue
		}
		hk := step.Key.MustHash()
		if _, ok := set[hk]; ok {
			continue
		}
		enc, err := encodeNode(step.Node)
		if err != nil || len(enc) == 0 {
			return ErrUnresolvedRepairNode
		}
		set[hk] = enc
	}
	return nil
}

func nibblesToNodeKey(nibbles []byte) NodeKey {
	var out NodeKey
	decodeNibbles(nibbles, out[:])
	return out
}

func nibblesToTag(nibbles []byte) NodeTag { return nibblesToNodeKey(nibbles).Tag() }

// rangeRlpSize mirrors RLP string-length encoding: a length-prefix byte
// (plus extra length-of-length bytes once blobLen >= 56) followed by the
// blob itself.
func rangeRlpSize(blobLen int) int {
	if blobLen < 56 {
		return blobLen + 1
	}
	n := 0
	for l := blobLen; l > 0; l >>= 8 {
		n++
	}
	return blobLen + 1 + n
}

// rangeRlpLeafListSize computes the RLP size of one [key, blob] pair (key
// is always a 32-byte string) and the new running total of the enclosing
// leaf list after appending it.
func rangeRlpLeafListSize(blobLen, currentListLen int) (pairSize, totalListSize int) {
	keySize := rangeRlpSize(32)
	payload := keySize + rangeRlpSize(blobLen)
	pairSize = rangeRlpSize(payload)
	return pairSize, currentListLen + pairSize
}
