// append.go provides reflection-free fast paths for building RLP payloads
// incrementally: append-style string and list-header writers, plus a fixed
// 32-byte string encoder for hashes. The general Encode/EncodeToBytes path
// covers everything else; these exist for the hot encode loops (node
// hashing, proof assembly, registry records) where per-value reflection
// would dominate.
package rlp

// AppendBytes appends the RLP encoding of a byte slice to dst and returns
// the extended slice.
func AppendBytes(dst, data []byte) []byte {
	n := len(data)
	if n == 1 && data[0] <= 0x7f {
		return append(dst, data[0])
	}
	if n <= 55 {
		dst = append(dst, 0x80+byte(n))
		return append(dst, data...)
	}
	lb := putUintBigEndian(uint64(n))
	dst = append(dst, 0xb7+byte(len(lb)))
	dst = append(dst, lb...)
	return append(dst, data...)
}

// AppendListHeader appends an RLP list header for a payload of the given
// size to dst. The caller is responsible for appending exactly payloadSize
// bytes of encoded list items afterward.
func AppendListHeader(dst []byte, payloadSize int) []byte {
	if payloadSize <= 55 {
		return append(dst, 0xc0+byte(payloadSize))
	}
	lb := putUintBigEndian(uint64(payloadSize))
	dst = append(dst, 0xf7+byte(len(lb)))
	return append(dst, lb...)
}

// EncodeBytes32 encodes a fixed 32-byte value (hash, key) without
// reflection. It writes a 33-byte result: [0xa0 (0x80+32), data[32]].
func EncodeBytes32(data [32]byte) []byte {
	buf := make([]byte, 33)
	buf[0] = 0x80 + 32
	copy(buf[1:], data[:])
	return buf
}
