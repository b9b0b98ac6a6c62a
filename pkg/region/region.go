// Package region acquires and releases the contiguous memory regions that back
// the allocators. A Region is exclusively owned by one allocator for its whole
// lifetime and is released exactly once.
package region

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/joshuapare/memkit/internal/format"
)

var (
	// ErrAcquire indicates the provider could not obtain the requested region.
	ErrAcquire = errors.New("region: cannot acquire memory")

	// ErrBadRequest indicates a non-positive size or an unusable alignment.
	ErrBadRequest = errors.New("region: bad request")
)

// Provider is the capability to obtain size- and alignment-specified memory.
type Provider interface {
	// Acquire returns a region of exactly size bytes whose first byte is
	// aligned to alignment.
	Acquire(size, alignment int) (*Region, error)
}

// Region is an owned, contiguous block of memory.
type Region struct {
	data     []byte
	base     uintptr
	release  func() error
	released bool
}

func newRegion(data []byte, release func() error) *Region {
	return &Region{
		data:    data,
		base:    uintptr(unsafe.Pointer(unsafe.SliceData(data))),
		release: release,
	}
}

// Bytes returns the region's memory. The slice is nil after Release.
func (r *Region) Bytes() []byte { return r.data }

// Base returns the absolute address of the first byte.
func (r *Region) Base() uintptr { return r.base }

// Len returns the size of the region in bytes.
func (r *Region) Len() int { return len(r.data) }

// Released reports whether Release has been called.
func (r *Region) Released() bool { return r.released }

// Release returns the memory to its provider. Calling it more than once is a no-op.
func (r *Region) Release() error {
	if r.released {
		return nil
	}
	r.released = true
	r.data = nil
	if r.release == nil {
		return nil
	}
	return r.release()
}

func checkRequest(size, alignment int) error {
	if size <= 0 {
		return fmt.Errorf("%w: size %d", ErrBadRequest, size)
	}
	if !format.IsPow2(alignment) {
		return fmt.Errorf("%w: alignment %d is not a power of two", ErrBadRequest, alignment)
	}
	return nil
}
