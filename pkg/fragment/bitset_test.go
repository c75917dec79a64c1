package fragment

import "testing"

func TestBitsetSetGetClear(t *testing.T) {
	b := newBitset(20)

	for i := uint32(0); i < 20; i++ {
		if b.get(i) {
			t.Fatalf("bit %d set before any Set call", i)
		}
	}

	b.set(3)
	b.set(17)
	if !b.get(3) || !b.get(17) {
		t.Fatal("expected bits 3 and 17 to be set")
	}
	if b.get(4) {
		t.Fatal("bit 4 should not be set")
	}

	b.clear(3)
	if b.get(3) {
		t.Fatal("bit 3 should be cleared")
	}
	if !b.get(17) {
		t.Fatal("clearing bit 3 should not affect bit 17")
	}
}

func TestBitsetPopCount(t *testing.T) {
	b := newBitset(64)
	indices := []uint32{0, 1, 8, 9, 31, 32, 63}
	for _, i := range indices {
		b.set(i)
	}
	if got := b.popCount(); got != uint32(len(indices)) {
		t.Fatalf("popCount() = %d, want %d", got, len(indices))
	}
}

func TestBitsetSizing(t *testing.T) {
	cases := []struct {
		n        uint32
		wantLen  int
	}{
		{0, 0},
		{1, 1},
		{8, 1},
		{9, 2},
		{16, 2},
		{17, 3},
	}
	for _, tc := range cases {
		b := newBitset(tc.n)
		if len(b.bits) != tc.wantLen {
			t.Errorf("newBitset(%d): byte length = %d, want %d", tc.n, len(b.bits), tc.wantLen)
		}
	}
}
