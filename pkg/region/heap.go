package region

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/memkit/internal/format"
)

// DefaultHeapLimit caps a Heap region when Heap.Limit is zero. The runtime
// aborts the process, rather than returning an error, when the heap cannot
// grow, so requests must be bounded before make is called.
const DefaultHeapLimit = 1 << 30

// Heap obtains regions from the Go heap. The Go collector never moves heap
// objects, so the base address of a region is stable for its lifetime.
type Heap struct {
	// Limit caps the size of a single region. Zero means DefaultHeapLimit.
	Limit int
}

// Acquire over-allocates by alignment-1 bytes and slices at the first aligned
// byte.
func (h Heap) Acquire(size, alignment int) (*Region, error) {
	if err := checkRequest(size, alignment); err != nil {
		return nil, err
	}
	limit := h.Limit
	if limit <= 0 {
		limit = DefaultHeapLimit
	}
	if size > limit || alignment > limit {
		return nil, fmt.Errorf("%w: %d bytes (align %d) exceeds heap limit %d", ErrAcquire, size, alignment, limit)
	}

	raw := make([]byte, size+alignment-1)
	pad := format.Padding(uintptr(unsafe.Pointer(unsafe.SliceData(raw))), alignment)
	data := raw[pad : pad+size : pad+size]

	return newRegion(data, nil), nil
}
