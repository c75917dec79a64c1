package fragment

import (
	"math"

	"go.uber.org/zap"

	"github.com/appnet-org/xorframe/internal/bufpool"
	"github.com/appnet-org/xorframe/pkg/logging"
)

// DecodeSink receives one reassembled message at a time, in group-index
// order, the callback-variant counterpart to the list-returning Decode.
type DecodeSink func(message []byte)

// UnifierOption configures a Unifier at construction time.
type UnifierOption func(*Unifier)

// WithExpireMillis overrides the default 15ms base per-group deadline.
func WithExpireMillis(ms uint32) UnifierOption {
	return func(u *Unifier) { u.maxDelayUs = uint64(ms) * 1000 }
}

// WithFaultToleranceRate overrides the default 0 (no partial delivery).
func WithFaultToleranceRate(rate float64) UnifierOption {
	return func(u *Unifier) { u.faultToleranceRate = rate }
}

// WithClock overrides the real wall clock, for deterministic deadline
// tests driven by a ManualClock.
func WithClock(c Clock) UnifierOption {
	return func(u *Unifier) { u.clock = c }
}

// Unifier reassembles fragments produced by a Divider. It is
// single-threaded, holds no resources shared with any other Unifier
// instance, and never suspends: deadlines are only evaluated inside
// Decode/DecodeFunc/Tick.
type Unifier struct {
	maxDelayUs         uint64
	faultToleranceRate float64

	minGroupIndex uint64
	groups        map[uint64]*group
	timerQueue    []uint64

	clock Clock
}

// NewUnifier constructs a Unifier with the defaults from the original
// implementation (expire_millis=15, fault_tolerance_rate=0.0), overridable
// via options.
func NewUnifier(opts ...UnifierOption) *Unifier {
	u := &Unifier{
		maxDelayUs: 15000,
		groups:     make(map[uint64]*group),
		clock:      realClock{},
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.maxDelayUs < 500 {
		u.maxDelayUs = 500
	}
	if u.faultToleranceRate < 0 {
		u.faultToleranceRate = 0
	}
	if u.faultToleranceRate > 1 {
		u.faultToleranceRate = 1
	}
	return u
}

// Reset clears all groups, timers and min_group_index.
func (u *Unifier) Reset() {
	for _, g := range u.groups {
		bufpool.Put(g.data)
	}
	u.groups = make(map[uint64]*group)
	u.timerQueue = nil
	u.minGroupIndex = 0
}

// Decode runs one fragment through the three phases of §4.2 and returns
// every message released as a result, in group-index order. Pass a nil or
// empty frame to poll the expiry sweep alone.
func (u *Unifier) Decode(frame []byte) ([][]byte, bool) {
	var out [][]byte
	delivered := u.DecodeFunc(frame, func(m []byte) {
		out = append(out, m)
	})
	return out, delivered
}

// DecodeFunc is the callback-sink variant of Decode. It returns true iff
// at least one message was released during the call.
func (u *Unifier) DecodeFunc(frame []byte, sink DecodeSink) bool {
	if len(frame) > 0 {
		if h, payload, err := u.admit(frame); err != nil {
			logging.Debug("unifier: dropping frame", zap.Error(err))
		} else {
			u.insert(h, payload)
		}
	}
	// Phase C always runs, regardless of the Phase A/B outcome above, so
	// that callers can poll the expiry sweep with an empty frame.
	return u.sweep(sink)
}

// Tick runs Phase C alone, for callers that want to poll expiry without
// feeding a new frame.
func (u *Unifier) Tick() ([][]byte, bool) {
	return u.Decode(nil)
}

// Recognizable runs the structural checks of Phase A (steps 1-5) without
// any receiver state, for transport-level demultiplexing.
func Recognizable(frame []byte) bool {
	if len(frame) < HeaderSize {
		return false
	}
	h := DecodeHeader(frame)
	return checkStructure(h, uint32(len(frame))) == nil
}

// checkStructure implements Phase A steps 2-5: protocol_id validity, XOR
// block_index >= 1, block_index < block_count and the last/non-last frame
// size rules.
func checkStructure(h Header, frameLen uint32) error {
	if h.ProtocolID != ProtocolSeq && h.ProtocolID != ProtocolXor {
		return ErrMalformedHeader
	}
	idx := h.BlockIndex()
	if h.ProtocolID == ProtocolXor && idx == 0 {
		return ErrMalformedHeader
	}
	if idx >= h.BlockCount {
		return ErrMalformedHeader
	}
	last := idx+1 == h.BlockCount
	if last {
		if HeaderSize+h.BlockBytes > frameLen {
			return ErrMalformedHeader
		}
		if h.BlockPos+h.BlockBytes < h.GroupBytes {
			return ErrMalformedHeader
		}
	} else {
		if HeaderSize+h.BlockBytes != frameLen {
			return ErrMalformedHeader
		}
		if h.BlockPos+h.BlockBytes > h.GroupBytes {
			return ErrMalformedHeader
		}
	}
	return nil
}

// admit runs Phase A in full: structural checks plus the stale-group
// check that requires receiver state. It returns the parsed header and
// the fragment's working payload slice.
//
// For a SEQ fragment the working payload is exactly block_bytes, since a
// short last fragment's frame may carry trailing bytes beyond its real
// payload. For an XOR fragment the working payload is the frame's entire
// remaining byte range: XOR frames always carry the encoder's
// max_payload width, and the header's block_bytes field (copied from the
// paired data fragment) is not representative of that width.
func (u *Unifier) admit(frame []byte) (Header, []byte, error) {
	if len(frame) < HeaderSize {
		return Header{}, nil, ErrMalformedHeader
	}
	h := DecodeHeader(frame)
	frameLen := uint32(len(frame))
	if err := checkStructure(h, frameLen); err != nil {
		return h, nil, err
	}
	if h.GroupIndex < u.minGroupIndex {
		return h, nil, ErrStaleGroup
	}

	if h.ProtocolID == ProtocolXor {
		return h, frame[HeaderSize:], nil
	}
	return h, frame[HeaderSize : HeaderSize+h.BlockBytes], nil
}

// insert runs Phase B: look up or create the group, reject mismatches,
// then run the Insert Procedure.
func (u *Unifier) insert(h Header, payload []byte) {
	g, exists := u.groups[h.GroupIndex]
	if !exists {
		g = newGroup(h, u.clock.Now(), u.maxDelayUs)
		u.groups[h.GroupIndex] = g
		u.timerQueue = append(u.timerQueue, h.GroupIndex)
	} else {
		if g.groupBytes != h.GroupBytes || g.needBlockCount != h.BlockCount {
			logging.Debug("unifier: group header mismatch", zap.Uint64("groupIndex", h.GroupIndex), zap.Error(ErrGroupMismatch))
			return
		}
		if g.complete() {
			logging.Debug("unifier: fragment for already-complete group", zap.Uint64("groupIndex", h.GroupIndex), zap.Error(ErrDuplicateFragment))
			return
		}
	}

	if err := g.insertFragment(h, payload); err != nil {
		logging.Debug("unifier: dropping fragment",
			zap.Uint64("groupIndex", h.GroupIndex),
			zap.Uint32("blockIndex", h.BlockIndex()),
			zap.Error(err))
	}
}

// sweep implements Phase C: walk the deadline queue from its head,
// releasing complete groups and retiring expired ones, stopping at the
// first entry that is neither.
func (u *Unifier) sweep(sink DecodeSink) bool {
	delivered := false
	now := u.clock.Now()

sweepLoop:
	for len(u.timerQueue) > 0 {
		gi := u.timerQueue[0]
		g, ok := u.groups[gi]
		if !ok {
			u.timerQueue = u.timerQueue[1:]
			continue
		}

		switch {
		case g.complete():
			sink(g.data[:g.groupBytes])
			delivered = true
			u.retire(gi)
		case !now.Before(g.deadline):
			if u.faultToleranceRate > 0 {
				threshold := uint32(math.Floor(float64(g.needBlockCount) * (1 - u.faultToleranceRate)))
				if g.recvBlockCount >= threshold {
					sink(g.data[:g.groupBytes])
					delivered = true
				} else {
					bufpool.Put(g.data)
				}
			} else {
				bufpool.Put(g.data)
				logging.Debug("unifier: dropping expired group", zap.Uint64("groupIndex", gi), zap.Error(ErrDeadlineExpired))
			}
			u.retire(gi)
		default:
			break sweepLoop
		}
	}

	u.purgeStaleGroups()
	return delivered
}

// retire deletes group gi, pops its timer entry and advances
// min_group_index past it.
func (u *Unifier) retire(gi uint64) {
	delete(u.groups, gi)
	u.timerQueue = u.timerQueue[1:]
	if gi+1 > u.minGroupIndex {
		u.minGroupIndex = gi + 1
	}
}

// purgeStaleGroups is the defensive prefix-erase pass the original
// implementation runs separately from the timer-list walk, for any group
// whose index fell below min_group_index without its own timer entry
// being reached yet.
func (u *Unifier) purgeStaleGroups() {
	for gi, g := range u.groups {
		if gi < u.minGroupIndex {
			bufpool.Put(g.data)
			delete(u.groups, gi)
		}
	}
}
