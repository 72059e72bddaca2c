package trie

import "testing"

func TestNodeKey_IsZero(t *testing.T) {
	var k NodeKey
	if !k.IsZero() {
		t.Fatal("zero-value NodeKey should report IsZero")
	}
	k[31] = 1
	if k.IsZero() {
		t.Fatal("non-zero NodeKey should not report IsZero")
	}
}

func TestNodeKey_Tag_RoundTripsBigEndian(t *testing.T) {
	var k NodeKey
	k[31] = 7
	tag := k.Tag()
	if tag.Int.Uint64() != 7 {
		t.Fatalf("Tag() = %v, want 7", tag.Int.Uint64())
	}
}

func TestProvisionalKey_FreshVsResolved(t *testing.T) {
	fresh := freshProvisionalKey(42)
	if !fresh.IsFresh() {
		t.Fatal("freshProvisionalKey should report IsFresh")
	}
	if _, ok := fresh.ResolvedKey(); ok {
		t.Fatal("a fresh key must not resolve to a NodeKey")
	}

	var hk NodeKey
	hk[0] = 0xAB
	resolved := resolvedProvisionalKey(hk)
	if resolved.IsFresh() {
		t.Fatal("resolvedProvisionalKey should not report IsFresh")
	}
	got, ok := resolved.ResolvedKey()
	if !ok || got != hk {
		t.Fatalf("ResolvedKey() = (%v, %v), want (%v, true)", got, ok, hk)
	}
}

func TestKey_HashKeyAndFreshKey(t *testing.T) {
	var hk NodeKey
	hk[0] = 1
	k := HashKey(hk)
	if !k.IsHashKey() {
		t.Fatal("HashKey should produce a hash key")
	}
	if k.MustHash() != hk {
		t.Fatalf("MustHash() = %v, want %v", k.MustHash(), hk)
	}

	pk := freshProvisionalKey(1)
	fk := FreshKey(pk)
	if fk.IsHashKey() {
		t.Fatal("FreshKey should not be a hash key")
	}
	if fk.Provisional() != pk {
		t.Fatalf("Provisional() = %v, want %v", fk.Provisional(), pk)
	}
}

func TestKey_MustHash_PanicsOnProvisional(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustHash to panic on a provisional key")
		}
	}()
	FreshKey(freshProvisionalKey(1)).MustHash()
}

func TestKey_Provisional_PanicsOnHash(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Provisional to panic on a hash key")
		}
	}()
	HashKey(NodeKey{}).Provisional()
}

func TestKey_UsableAsMapKey(t *testing.T) {
	var a, b NodeKey
	a[0] = 1
	b[0] = 2
	m := map[Key]int{HashKey(a): 1, HashKey(b): 2}
	if m[HashKey(a)] != 1 || m[HashKey(b)] != 2 {
		t.Fatal("Key must compare equal/distinct correctly as a map key")
	}
}

func TestNodeState_Writable(t *testing.T) {
	cases := map[NodeState]bool{
		Static:  false,
		Locked:  false,
		Mutable: true,
		TmpRoot: true,
	}
	for st, want := range cases {
		if got := st.Writable(); got != want {
			t.Fatalf("%v.Writable() = %v, want %v", st, got, want)
		}
	}
}
