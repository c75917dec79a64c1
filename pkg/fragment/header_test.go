package fragment

import (
	"bytes"
	"testing"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		h    Header
	}{
		{
			name: "zero value",
			h:    Header{},
		},
		{
			name: "seq fragment",
			h: Header{
				GroupIndex: 0xAABBCCDD11223344,
				ProtocolID: ProtocolSeq,
				BlockCount: 10,
				BlockBytes: 1024,
				BlockPos:   4096,
				GroupBytes: 102400,
			},
		},
		{
			name: "xor fragment with large block index",
			h: Header{
				GroupIndex: 1,
				ProtocolID: ProtocolXor,
				BlockCount: maxBlockIndex,
				BlockBytes: 1,
				BlockPos:   0,
				GroupBytes: 1,
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if tc.h.BlockCount > 0 {
				tc.h.SetBlockIndex(tc.h.BlockCount - 1)
			}

			buf := make([]byte, HeaderSize)
			tc.h.Encode(buf)
			got := DecodeHeader(buf)

			if got != tc.h {
				t.Fatalf("round-trip mismatch: got %+v, want %+v", got, tc.h)
			}
		})
	}
}

func TestHeaderEncodeIsBigEndian(t *testing.T) {
	h := Header{GroupIndex: 1, GroupBytes: 1}
	buf := make([]byte, HeaderSize)
	h.Encode(buf)

	// The low-order byte of a big-endian uint64 encoding of 1 is the
	// last byte of its 8-byte field.
	want := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	if !bytes.Equal(buf[0:8], want) {
		t.Fatalf("group_index not big-endian: got %x", buf[0:8])
	}
}

func TestBlockIndexSplit(t *testing.T) {
	tests := []uint32{0, 1, 255, 256, 65535, 65536, maxBlockIndex}
	for _, idx := range tests {
		var h Header
		h.SetBlockIndex(idx)
		if got := h.BlockIndex(); got != idx {
			t.Errorf("SetBlockIndex(%d) then BlockIndex() = %d", idx, got)
		}
	}
}
