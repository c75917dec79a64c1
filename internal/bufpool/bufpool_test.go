package bufpool

import "testing"

func TestGetSizeReturnsRequestedLength(t *testing.T) {
	for _, n := range []int{0, 1, defaultCapacity, defaultCapacity * 4} {
		buf := GetSize(n)
		if len(buf) != n {
			t.Fatalf("GetSize(%d) returned length %d", n, len(buf))
		}
		Put(buf)
	}
}

func TestPutAllowsReuse(t *testing.T) {
	buf := GetSize(64)
	for i := range buf {
		buf[i] = 0xFF
	}
	Put(buf)

	reused := GetSize(32)
	if len(reused) != 32 {
		t.Fatalf("expected length 32, got %d", len(reused))
	}
}
