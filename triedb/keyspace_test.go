package triedb

import "testing"

func TestRowKey_PrefixAndLength(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = byte(i)
	}

	cases := []struct {
		name string
		fn   func([32]byte) []byte
		want byte
	}{
		{"accounts", AccountsRowKey, accountsPrefix},
		{"storage", StorageRowKey, storagePrefix},
		{"roots", RootsRowKey, rootsPrefix},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			row := c.fn(key)
			if len(row) != 33 {
				t.Fatalf("row key length = %d, want 33", len(row))
			}
			if row[0] != c.want {
				t.Fatalf("prefix = %x, want %x", row[0], c.want)
			}
			for i := 0; i < 32; i++ {
				if row[i+1] != key[i] {
					t.Fatalf("byte %d mismatch: got %x want %x", i, row[i+1], key[i])
				}
			}
		})
	}
}

func TestRowKey_DistinctFamiliesDistinctRows(t *testing.T) {
	var key [32]byte
	key[0] = 0x42

	a := AccountsRowKey(key)
	s := StorageRowKey(key)
	r := RootsRowKey(key)

	if a[0] == s[0] || a[0] == r[0] || s[0] == r[0] {
		t.Fatalf("family prefixes collide: accounts=%x storage=%x roots=%x", a[0], s[0], r[0])
	}
}
