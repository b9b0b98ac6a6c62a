package alloc

import "errors"

var (
	// ErrOutOfMemory indicates the backing region could not be obtained, or
	// the request (plus alignment padding) does not fit the remaining
	// capacity, any single free block, or the free block count.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrBadAlignment indicates an alignment that is negative, not a power of
	// two, or larger than MaxAlignment.
	ErrBadAlignment = errors.New("alloc: bad alignment")

	// ErrInvalidSize indicates a negative request size or an unusable
	// construction size.
	ErrInvalidSize = errors.New("alloc: invalid size")

	// ErrClosed indicates an allocation on an allocator that has been closed.
	ErrClosed = errors.New("alloc: allocator closed")
)
