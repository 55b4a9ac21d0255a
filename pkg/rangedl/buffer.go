package rangedl

import (
	"io"

	"github.com/cognusion/go-recyclable"
)

// Buffer is the narrow capability the engine needs from whatever
// reference-counted byte buffer backs a Range Request's payload. It is
// intentionally small: spec.md §1 names the buffer allocator as an
// external collaborator, not something the engine should know the
// internals of.
type Buffer interface {
	io.Writer
	// Bytes returns the buffer's current contents. The returned slice is
	// only valid until the next Write or Close.
	Bytes() []byte
	// Len returns the number of bytes currently held.
	Len() int
	// Close releases the buffer back to its allocator. Safe to call once
	// both the parser and the Writer Loop are done with it.
	Close() error
}

// BufferAllocator mirrors the spec.md §6 contract:
// `GetFreeBuffer(capacity) -> Buffer`.
type BufferAllocator interface {
	GetFreeBuffer(capacity int) Buffer
}

// recyclableAllocator is the default BufferAllocator, backed by
// cognusion/go-recyclable's pool -- the same reference-counted buffer
// pool cognusion-go-rangetripper uses to hold in-memory chunk downloads
// (see `rPool = recyclable.NewBufferPool()` in that repo's rt.go).
type recyclableAllocator struct {
	pool *recyclable.BufferPool
}

// NewRecyclableAllocator constructs the default BufferAllocator.
func NewRecyclableAllocator() BufferAllocator {
	return &recyclableAllocator{pool: recyclable.NewBufferPool()}
}

// GetFreeBuffer fetches a buffer from the pool. capacity is not used:
// the buffer is returned as the pool hands it out, with no space
// reserved for the range's payload.
func (a *recyclableAllocator) GetFreeBuffer(capacity int) Buffer {
	buf := a.pool.Get()
	return buf
}
