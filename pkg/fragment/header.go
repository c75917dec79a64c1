package fragment

import "encoding/binary"

// Wire protocol_id values. 0xE9 carries original payload bytes; 0xEA
// carries XOR parity of two adjacent sequence fragments.
const (
	ProtocolSeq byte = 0xE9
	ProtocolXor byte = 0xEA
)

// HeaderSize is the fixed, big-endian, on-the-wire header size: the field
// table sums group_index(8) + protocol_id(1) + block_idx_h(1) +
// block_idx_l(2) + block_count(4) + block_bytes(4) + block_pos(4) +
// group_bytes(4) = 28 bytes. This also matches the original C++
// block_t (#pragma pack(push,1)), which is the ground truth this
// implementation follows.
const HeaderSize = 28

// maxBlockIndex is the largest value representable by the 24-bit
// block_idx_h/block_idx_l pair (2^24 - 1).
const maxBlockIndex = 1<<24 - 1

// Header is the per-fragment header described in §3: group_index,
// protocol_id, a 24-bit block index split across block_idx_h/block_idx_l,
// block_count, block_bytes, block_pos and group_bytes.
type Header struct {
	GroupIndex  uint64
	ProtocolID  byte
	BlockIdxH   byte
	BlockIdxL   uint16
	BlockCount  uint32
	BlockBytes  uint32
	BlockPos    uint32
	GroupBytes  uint32
}

// BlockIndex returns the composite 24-bit fragment index.
func (h Header) BlockIndex() uint32 {
	return uint32(h.BlockIdxH)<<16 | uint32(h.BlockIdxL)
}

// SetBlockIndex splits idx across BlockIdxH/BlockIdxL. idx must be <=
// maxBlockIndex; callers that computed block_count <= 2^24-1 (per
// ErrConfigError in encode) are always within range.
func (h *Header) SetBlockIndex(idx uint32) {
	h.BlockIdxH = byte(idx >> 16)
	h.BlockIdxL = uint16(idx)
}

// Encode writes h into buf[0:HeaderSize] in big-endian layout. buf must be
// at least HeaderSize bytes long.
func (h Header) Encode(buf []byte) {
	binary.BigEndian.PutUint64(buf[0:8], h.GroupIndex)
	buf[8] = h.ProtocolID
	buf[9] = h.BlockIdxH
	binary.BigEndian.PutUint16(buf[10:12], h.BlockIdxL)
	binary.BigEndian.PutUint32(buf[12:16], h.BlockCount)
	binary.BigEndian.PutUint32(buf[16:20], h.BlockBytes)
	binary.BigEndian.PutUint32(buf[20:24], h.BlockPos)
	binary.BigEndian.PutUint32(buf[24:28], h.GroupBytes)
}

// DecodeHeader parses the first HeaderSize bytes of buf. The caller is
// responsible for the structural checks in Phase A; DecodeHeader itself
// never fails, matching §4.3 ("malformed frames are caught by Phase A's
// validation rather than here").
func DecodeHeader(buf []byte) Header {
	return Header{
		GroupIndex: binary.BigEndian.Uint64(buf[0:8]),
		ProtocolID: buf[8],
		BlockIdxH:  buf[9],
		BlockIdxL:  binary.BigEndian.Uint16(buf[10:12]),
		BlockCount: binary.BigEndian.Uint32(buf[12:16]),
		BlockBytes: binary.BigEndian.Uint32(buf[16:20]),
		BlockPos:   binary.BigEndian.Uint32(buf[20:24]),
		GroupBytes: binary.BigEndian.Uint32(buf[24:28]),
	}
}
