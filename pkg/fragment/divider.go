package fragment

import (
	"go.uber.org/multierr"

	"github.com/appnet-org/xorframe/pkg/logging"
	"go.uber.org/zap"
)

// EncodeSink receives one emitted frame at a time, in emission order, the
// callback-variant counterpart to the list-returning Encode.
type EncodeSink func(frame []byte)

// Divider splits a message into fixed-size fragments and, optionally,
// interleaved XOR parity fragments. It is single-threaded and holds no
// resources shared with any other Divider instance.
type Divider struct {
	maxBlockSize   uint32
	maxPayload     uint32
	useXor         bool
	nextGroupIndex uint64
}

// NewDivider configures a Divider. maxBlockSize is coerced up to at least
// HeaderSize+1 so every Divider can always emit at least one payload byte
// per fragment.
func NewDivider(maxBlockSize uint32, useXor bool) *Divider {
	if maxBlockSize < HeaderSize+1 {
		maxBlockSize = HeaderSize + 1
	}
	return &Divider{
		maxBlockSize: maxBlockSize,
		maxPayload:   maxBlockSize - HeaderSize,
		useXor:       useXor,
	}
}

// Reset rewinds the group counter to 0. Receivers that share state with
// this Divider must reset in lockstep.
func (d *Divider) Reset() {
	d.nextGroupIndex = 0
}

// validateMessage aggregates every violated §7 ConfigError constraint into
// a single error via multierr, rather than stopping at the first one.
func (d *Divider) validateMessage(message []byte) (blockCount uint32, err error) {
	var errs error
	if len(message) == 0 {
		errs = multierr.Append(errs, ErrConfigError)
	}
	if d.maxBlockSize <= HeaderSize {
		errs = multierr.Append(errs, ErrConfigError)
	}
	if errs != nil {
		return 0, errs
	}

	blockCount = (uint32(len(message)) + d.maxPayload - 1) / d.maxPayload
	if blockCount > maxBlockIndex {
		return 0, ErrConfigError
	}
	return blockCount, nil
}

// Encode splits message into frames and returns them as a slice, in
// emission order.
func (d *Divider) Encode(message []byte) ([][]byte, error) {
	var frames [][]byte
	err := d.EncodeFunc(message, func(frame []byte) {
		frames = append(frames, frame)
	})
	if err != nil {
		return nil, err
	}
	return frames, nil
}

// EncodeFunc is the callback-sink variant of Encode: sink is invoked once
// per emitted frame, in emission order.
func (d *Divider) EncodeFunc(message []byte, sink EncodeSink) error {
	blockCount, err := d.validateMessage(message)
	if err != nil {
		logging.Debug("divider: rejecting message", zap.Int("len", len(message)), zap.Error(err))
		return err
	}

	groupIndex := d.nextGroupIndex
	groupBytes := uint32(len(message))

	var prev []byte
	for i := uint32(0); i < blockCount; i++ {
		start := i * d.maxPayload
		end := start + d.maxPayload
		if end > groupBytes {
			end = groupBytes
		}
		payload := message[start:end]

		h := Header{
			GroupIndex: groupIndex,
			ProtocolID: ProtocolSeq,
			BlockCount: blockCount,
			BlockBytes: uint32(len(payload)),
			BlockPos:   start,
			GroupBytes: groupBytes,
		}
		h.SetBlockIndex(i)

		frame := make([]byte, HeaderSize+len(payload))
		h.Encode(frame)
		copy(frame[HeaderSize:], payload)
		sink(frame)

		if !d.useXor || blockCount == 1 {
			continue
		}

		if i == 0 {
			prev = payload
			continue
		}

		xorPayload := xorPadded(prev, payload, d.maxPayload)
		xh := h
		xh.ProtocolID = ProtocolXor
		xframe := make([]byte, HeaderSize+len(xorPayload))
		xh.Encode(xframe)
		copy(xframe[HeaderSize:], xorPayload)
		sink(xframe)

		prev = payload
	}

	d.nextGroupIndex++
	logging.Debug("divider: encoded message",
		zap.Uint64("groupIndex", groupIndex),
		zap.Uint32("blockCount", blockCount),
		zap.Bool("useXor", d.useXor))
	return nil
}

// xorPadded XORs a and b byte-wise after zero-padding both to width w.
func xorPadded(a, b []byte, w uint32) []byte {
	out := make([]byte, w)
	for i := range out {
		var av, bv byte
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		out[i] = av ^ bv
	}
	return out
}
