package gtid

import "testing"

func TestSetAddAndEncode(t *testing.T) {
	s := NewSet()
	s.AddRange("A", 1, 5)
	s.AddRange("B", 10, 12)

	want := "A:1-5,B:10-12"
	if got := s.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestSetDecodeEncodeRoundTrip(t *testing.T) {
	repr := "A:1-5:7-8,B:10-12,C:1"
	s, err := DecodeSet(repr)
	if err != nil {
		t.Fatalf("DecodeSet(%q): %v", repr, err)
	}
	if got := s.String(); got != repr {
		t.Fatalf("round-trip mismatch: got %q, want %q", got, repr)
	}
}

func TestDecodeSetEmpty(t *testing.T) {
	s, err := DecodeSet("")
	if err != nil {
		t.Fatalf("DecodeSet(\"\"): %v", err)
	}
	if len(s.UUIDSets()) != 0 {
		t.Fatalf("DecodeSet(\"\") produced %d uuid-sets, want 0", len(s.UUIDSets()))
	}
}

func TestDecodeSetAggregatesErrors(t *testing.T) {
	_, err := DecodeSet("A:1-5,B:bogus,C:5-1")
	if err == nil {
		t.Fatal("DecodeSet with two malformed fragments succeeded, want error")
	}
}

func TestSetMergeIsUnion(t *testing.T) {
	a := NewSet()
	a.AddRange("A", 1, 5)
	a.AddRange("B", 1, 2)

	b := NewSet()
	b.AddRange("A", 6, 10)
	b.AddRange("C", 1, 3)

	added := a.Merge(b)
	if added != 8 { // 5 new in A (6-10) + 3 new in C
		t.Fatalf("Merge returned %d newly covered, want 8", added)
	}

	want := "A:1-10,B:1-2,C:1-3"
	if got := a.String(); got != want {
		t.Fatalf("String() after merge = %q, want %q", got, want)
	}
}

func TestSetDiffIsSetDifference(t *testing.T) {
	a := NewSet()
	a.AddRange("A", 1, 10)
	a.AddRange("B", 1, 5)

	b := NewSet()
	b.AddRange("A", 3, 6)

	removed := a.Diff(b)
	if removed != 4 {
		t.Fatalf("Diff returned %d removed, want 4", removed)
	}

	want := "A:1-2:7-10,B:1-5"
	if got := a.String(); got != want {
		t.Fatalf("String() after diff = %q, want %q", got, want)
	}
}

func TestRelated(t *testing.T) {
	a := NewSet()
	a.AddRange("A", 1, 5)
	b := NewSet()
	b.AddRange("B", 1, 5)
	c := NewSet()
	c.AddRange("A", 6, 9)

	if Related(a, b) {
		t.Fatal("Related(a, b) = true, want false (disjoint uuids)")
	}
	if !Related(a, c) {
		t.Fatal("Related(a, c) = false, want true (shared uuid)")
	}
}

func TestEqual(t *testing.T) {
	a := NewSet()
	a.AddRange("A", 1, 5)
	a.AddRange("B", 1, 2)

	b := NewSet()
	b.AddRange("B", 1, 2)
	b.AddRange("A", 1, 5)

	if !Equal(a, b) {
		t.Fatal("Equal(a, b) = false, want true (same coverage, different insertion order)")
	}

	c := NewSet()
	c.AddRange("A", 1, 6)
	if Equal(a, c) {
		t.Fatal("Equal(a, c) = true, want false (different coverage)")
	}
}

func TestSetStats(t *testing.T) {
	s := NewSet()
	s.AddRange("A", 1, 5)
	s.AddRange("A", 10, 12)
	s.AddRange("B", 1, 100)

	stat := s.Stats()
	if stat.UUIDCount != 2 {
		t.Fatalf("UUIDCount = %d, want 2", stat.UUIDCount)
	}
	if stat.GapCount != 3 {
		t.Fatalf("GapCount = %d, want 3", stat.GapCount)
	}
	if stat.GNOCount != 5+3+100 {
		t.Fatalf("GNOCount = %d, want %d", stat.GNOCount, 5+3+100)
	}
}

func TestSetDup(t *testing.T) {
	s := NewSet()
	s.AddRange("A", 1, 5)

	dup := s.Dup()
	dup.AddRange("A", 6, 10)

	if s.String() == dup.String() {
		t.Fatal("mutating Dup() also mutated the original")
	}
	if want := "A:1-5"; s.String() != want {
		t.Fatalf("original String() = %q, want %q", s.String(), want)
	}
}
