// decoder.go implements the decode side of the node codec (C2, §4.2, §6).
package trie

import (
	"bytes"
	"io"

	"github.com/ethsync/triecore/rlp"
)

// decodeNode decodes an RLP-encoded Branch/Extension/Leaf. Decoded nodes
// are always Static (they came from wire bytes, hence authoritative).
func decodeNode(data []byte) (*Node, error) {
	if len(data) == 0 {
		return nil, ErrGarbledNode
	}
	elems, err := decodeNodeList(data)
	if err != nil {
		return nil, err
	}
	switch len(elems) {
	case 17:
		return decodeBranch(elems)
	case 2:
		return decodeShort(elems)
	default:
		return nil, ErrGarbledNode
	}
}

func decodeBranch(elems [][]byte) (*Node, error) {
	n := &Node{Kind: KindBranch, St: Static}
	for i := 0; i < 16; i++ {
		ref, err := decodeChildRef(elems[i])
		if err != nil {
			return nil, err
		}
		n.Children[i] = ref
	}
	n.Data = elems[16]
	return n, nil
}

func decodeShort(elems [][]byte) (*Node, error) {
	compact := elems[0]
	nibbles := compactToHex(compact)
	if hasTerm(nibbles) {
		return &Node{Kind: KindLeaf, St: Static, Prefix: nibbles[:len(nibbles)-1], Value: elems[1]}, nil
	}
	ref, err := decodeChildRef(elems[1])
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindExtension, St: Static, Prefix: nibbles, Child: ref}, nil
}

func decodeChildRef(b []byte) (childRef, error) {
	if len(b) == 0 {
		return noChild(), nil
	}
	if len(b) != 32 {
		return childRef{}, ErrGarbledNode
	}
	var k NodeKey
	copy(k[:], b)
	return linkTo(HashKey(k)), nil
}

// decodeNodeList decodes the outermost RLP list in data into the raw
// content bytes of each element (every element of a Branch/Extension/Leaf
// encoding is itself an RLP string, never a nested list).
func decodeNodeList(data []byte) ([][]byte, error) {
	s := rlp.NewStream(bytes.NewReader(data))
	if _, err := s.List(); err != nil {
		return nil, ErrRlpEncoding
	}
	var elems [][]byte
	for {
		if _, _, err := s.Kind(); err != nil {
			if err == io.EOF {
				break
			}
			return nil, ErrRlpEncoding
		}
		b, err := s.Bytes()
		if err != nil {
			return nil, ErrRlpEncoding
		}
		elems = append(elems, b)
	}
	if err := s.ListEnd(); err != nil {
		return nil, ErrRlpEncoding
	}
	return elems, nil
}
