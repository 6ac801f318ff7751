package engine

import (
	"sync"
)

// DefaultLineBufferSize bounds a single line of process output. rsync
// progress lines are short; file listings of deep trees are the long ones.
const DefaultLineBufferSize = 64 * 1024

// BufferPool manages reusable scan buffers for the stdout and stderr readers
// of every worker, so a busy queue does not allocate two fresh buffers per
// transfer.
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a new BufferPool that allocates buffers of the specified size.
// If size is <= 0, DefaultLineBufferSize is used.
func NewBufferPool(size int) *BufferPool {
	if size <= 0 {
		size = DefaultLineBufferSize
	}
	return &BufferPool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, size)
				return &b
			},
		},
	}
}

// Size is the length of every buffer handed out.
func (bp *BufferPool) Size() int { return bp.size }

// Get retrieves a reusable byte buffer from the pool.
// The caller should defer calling Put on this buffer once finished.
func (bp *BufferPool) Get() *[]byte {
	return bp.pool.Get().(*[]byte)
}

// Put returns the byte buffer to the pool so it can be reused.
func (bp *BufferPool) Put(b *[]byte) {
	if b != nil {
		bp.pool.Put(b)
	}
}
