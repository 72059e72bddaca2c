package rlp

import (
	"bytes"
	"testing"
)

func TestAppendBytes_MatchesEncodeToBytes(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		{0x00},
		{0x7f},
		{0x80},
		[]byte("dog"),
		bytes.Repeat([]byte{0xAB}, 55),
		bytes.Repeat([]byte{0xCD}, 56),
		bytes.Repeat([]byte{0xEF}, 300),
	}
	for _, c := range cases {
		want, err := EncodeToBytes(c)
		if err != nil {
			t.Fatalf("EncodeToBytes(%x): %v", c, err)
		}
		got := AppendBytes(nil, c)
		if !bytes.Equal(got, want) {
			t.Fatalf("AppendBytes(%x) = %x, want %x", c, got, want)
		}
	}
}

func TestAppendBytes_ExtendsDst(t *testing.T) {
	dst := []byte{0xFE}
	out := AppendBytes(dst, []byte("cat"))
	want := append([]byte{0xFE}, 0x83, 'c', 'a', 't')
	if !bytes.Equal(out, want) {
		t.Fatalf("AppendBytes = %x, want %x", out, want)
	}
}

func TestAppendListHeader_MatchesWrapList(t *testing.T) {
	for _, n := range []int{0, 1, 55, 56, 300, 70000} {
		payload := bytes.Repeat([]byte{0x01}, n)
		want := WrapList(payload)
		got := append(AppendListHeader(nil, n), payload...)
		if !bytes.Equal(got, want) {
			t.Fatalf("AppendListHeader(%d)+payload: %d bytes, want %d", n, len(got), len(want))
		}
	}
}

func TestEncodeBytes32_MatchesEncodeToBytes(t *testing.T) {
	var v [32]byte
	for i := range v {
		v[i] = byte(i)
	}
	want, err := EncodeToBytes(v[:])
	if err != nil {
		t.Fatalf("EncodeToBytes: %v", err)
	}
	got := EncodeBytes32(v)
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeBytes32 = %x, want %x", got, want)
	}
	if len(got) != 33 || got[0] != 0xa0 {
		t.Fatalf("EncodeBytes32 shape = %x, want 0xa0-prefixed 33 bytes", got)
	}
}
