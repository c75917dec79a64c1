// Package bufpool pools the byte buffers used for group reassembly and
// per-fragment payload staging, the way pkg/transport's DataReassembler in
// this repo's lineage pools buffers via a BufferPool.
package bufpool

import (
	"github.com/colega/zeropool"
)

const defaultCapacity = 2048

var pool = zeropool.New(func() []byte {
	return make([]byte, 0, defaultCapacity)
})

// GetSize returns a buffer with length n, reused from the pool when its
// capacity is large enough, otherwise freshly allocated.
func GetSize(n int) []byte {
	buf := pool.Get()
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}

// Put returns buf to the pool for reuse. Callers must not touch buf after
// calling Put.
func Put(buf []byte) {
	pool.Put(buf[:0])
}
