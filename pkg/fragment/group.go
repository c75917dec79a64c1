package fragment

import (
	"time"

	"github.com/appnet-org/xorframe/internal/bufpool"
)

// group is the receiver-side reassembly state for one group_index, per
// §3 "Reassembly group (receiver-side)".
type group struct {
	groupIndex     uint64
	groupBytes     uint32
	needBlockCount uint32
	recvBlockCount uint32
	seqBitmap      bitset
	xorBitmap      bitset
	data           []byte
	deadline       time.Time

	// parityWidth is the wire payload width of this group's XOR
	// fragments (always max_payload on the sender side), set from the
	// payload length of each XOR fragment that passes the duplicate
	// check. It is the
	// "XOR-frame payload length" §4.2 calls the working width for all
	// recovery arithmetic, independent of any individual sequence
	// fragment's own (possibly shorter, last-fragment) block_bytes.
	parityWidth uint32
}

func newGroup(h Header, now time.Time, maxDelayUs uint64) *group {
	size := h.GroupBytes
	if need := h.BlockPos + h.BlockBytes; need > size {
		size = need
	}
	delay := maxDelayUs * (uint64(h.BlockCount)/100 + 1)
	data := bufpool.GetSize(int(size))
	zeroFill(data, 0)
	return &group{
		groupIndex:     h.GroupIndex,
		groupBytes:     h.GroupBytes,
		needBlockCount: h.BlockCount,
		seqBitmap:      newBitset(h.BlockCount),
		xorBitmap:      newBitset(h.BlockCount),
		data:           data,
		deadline:       now.Add(time.Duration(delay) * time.Microsecond),
	}
}

// complete reports whether every sequence fragment has been received or
// recovered.
func (g *group) complete() bool {
	return g.recvBlockCount == g.needBlockCount
}

// ensureCapacity grows g.data so [0, n) is addressable, zero-filling the
// newly addressable tail so staged-parity reads past a short last
// fragment see zero padding rather than stale pooled bytes.
func (g *group) ensureCapacity(n uint32) {
	if uint32(len(g.data)) >= n {
		return
	}
	grown := bufpool.GetSize(int(n))
	copy(grown, g.data)
	zeroFill(grown, len(g.data))
	bufpool.Put(g.data)
	g.data = grown
}

func zeroFill(b []byte, from int) {
	for i := from; i < len(b); i++ {
		b[i] = 0
	}
}

func (g *group) readAt(pos, width uint32) []byte {
	g.ensureCapacity(pos + width)
	out := make([]byte, width)
	copy(out, g.data[pos:pos+width])
	return out
}

func (g *group) writeAt(pos uint32, payload []byte) {
	g.ensureCapacity(pos + uint32(len(payload)))
	copy(g.data[pos:], payload)
}

func padTo(b []byte, w uint32) []byte {
	if uint32(len(b)) == w {
		return b
	}
	out := make([]byte, w)
	copy(out, b)
	return out
}

func xorBytes(a, b []byte) []byte {
	n := len(a)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// pendingInsert is one (index, pos, payload) recovery to apply, used by
// the iterative work-queue form of the insert procedure described in §9
// as equivalent to, and safer than, unbounded recursion for very large
// groups.
type pendingInsert struct {
	index   uint32
	pos     uint32
	payload []byte
}

// insertFragment runs the Insert Procedure of §4.2 for one freshly
// admitted fragment, recursively discharging any XOR recovery it enables
// on its neighbors via an explicit work queue rather than the call stack.
// Recovered neighbors are always reinserted as SEQ fragments, per §4.2.
func (g *group) insertFragment(h Header, payload []byte) error {
	var queue []pendingInsert
	var err error

	if h.ProtocolID == ProtocolXor {
		queue, err = g.insertXor(h.BlockIndex(), h.BlockPos, payload)
	} else {
		queue, err = g.insertSeq(h.BlockIndex(), h.BlockPos, payload)
	}
	if err != nil {
		return err
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		more, _ := g.insertSeq(item.index, item.pos, item.payload)
		queue = append(queue, more...)
	}
	return nil
}

// insertSeq implements the "incoming fragment is SEQ" branch of the
// Insert Procedure, returning any further recoveries it discharges.
func (g *group) insertSeq(i, pos uint32, payload []byte) ([]pendingInsert, error) {
	if g.seqBitmap.get(i) {
		return nil, ErrDuplicateFragment
	}

	var follow []pendingInsert
	w := g.parityWidth

	if i > 0 && g.xorBitmap.get(i) {
		staged := g.readAt(pos, w)
		recovered := xorBytes(staged, padTo(payload, w))
		g.xorBitmap.clear(i)
		follow = append(follow, pendingInsert{index: i - 1, pos: pos - w, payload: recovered})
	}

	g.xorBitmap.clear(i)
	g.seqBitmap.set(i)
	g.recvBlockCount++
	g.writeAt(pos, payload)

	n := i + 1
	if n < g.needBlockCount && g.xorBitmap.get(n) {
		staged := g.readAt(pos+w, w)
		recovered := xorBytes(staged, padTo(payload, w))
		g.xorBitmap.clear(n)
		follow = append(follow, pendingInsert{index: n, pos: pos + w, payload: recovered})
	}

	return follow, nil
}

// insertXor implements the "incoming fragment is XOR" branch.
func (g *group) insertXor(i, pos uint32, payload []byte) ([]pendingInsert, error) {
	if g.xorBitmap.get(i) {
		return nil, ErrDuplicateFragment
	}
	g.parityWidth = uint32(len(payload))
	w := g.parityWidth
	p := i - 1

	if g.seqBitmap.get(i) {
		if g.seqBitmap.get(p) {
			return nil, ErrDuplicateFragment
		}
		stored := g.readAt(pos, w)
		recovered := xorBytes(stored, payload)
		return []pendingInsert{{index: p, pos: pos - w, payload: recovered}}, nil
	}

	if g.seqBitmap.get(p) {
		stored := g.readAt(pos-w, w)
		recovered := xorBytes(stored, payload)
		return []pendingInsert{{index: i, pos: pos, payload: recovered}}, nil
	}

	g.xorBitmap.set(i)
	g.writeAt(pos, payload)
	return nil, nil
}
