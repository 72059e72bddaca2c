package triedb

import "testing"

func TestRefCountGC_TrackReferenceDereference(t *testing.T) {
	gc := NewRefCountGC()
	k := mustKey(1)

	gc.Track(k, 100)
	if gc.RefCount(k) != 0 {
		t.Fatalf("fresh track should start at 0 refs, got %d", gc.RefCount(k))
	}

	gc.Reference(k)
	gc.Reference(k)
	if gc.RefCount(k) != 2 {
		t.Fatalf("RefCount = %d, want 2", gc.RefCount(k))
	}

	zero, err := gc.Dereference(k)
	if err != nil {
		t.Fatalf("Dereference: %v", err)
	}
	if zero {
		t.Fatal("should not be zero yet")
	}
	zero, err = gc.Dereference(k)
	if err != nil {
		t.Fatalf("Dereference: %v", err)
	}
	if !zero {
		t.Fatal("expected count to reach zero")
	}
}

func TestRefCountGC_DereferenceBelowZero(t *testing.T) {
	gc := NewRefCountGC()
	k := mustKey(1)
	gc.Track(k, 10)

	if _, err := gc.Dereference(k); err != ErrRefCountNegative {
		t.Fatalf("expected ErrRefCountNegative, got %v", err)
	}
}

func TestRefCountGC_UnreferencedNodes(t *testing.T) {
	gc := NewRefCountGC()
	a, b := mustKey(1), mustKey(2)
	gc.Track(a, 10)
	gc.Track(b, 20)
	gc.Reference(a)

	unref := gc.UnreferencedNodes()
	if len(unref) != 1 || unref[0] != b {
		t.Fatalf("UnreferencedNodes = %v, want [%v]", unref, b)
	}
}

func TestRefCountGC_Stats(t *testing.T) {
	gc := NewRefCountGC()
	a, b := mustKey(1), mustKey(2)
	gc.Track(a, 10)
	gc.Track(b, 20)
	gc.Reference(a)

	stats := gc.Stats()
	if stats.TotalNodes != 2 || stats.ReferencedNodes != 1 || stats.UnreferencedCnt != 1 || stats.TotalSize != 30 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRefCountGC_Forget(t *testing.T) {
	gc := NewRefCountGC()
	k := mustKey(1)
	gc.Track(k, 50)
	gc.Forget(k)

	if gc.Stats().TotalNodes != 0 {
		t.Fatalf("expected Forget to remove tracking, stats = %+v", gc.Stats())
	}
}
