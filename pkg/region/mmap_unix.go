//go:build unix

package region

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/memkit/internal/format"
)

// Default is the provider used when callers do not configure one. A failed
// anonymous mapping comes back as an error, so oversized requests fail
// cleanly instead of exhausting the Go heap.
var Default Provider = Mmap{}

// Mmap obtains regions from anonymous private mappings. Mappings are page
// aligned; larger alignments are met by over-mapping and slicing.
type Mmap struct{}

// maxMapping keeps size+alignment from overflowing.
const maxMapping = 1 << 47

// Acquire maps size bytes rounded up to whole pages.
func (Mmap) Acquire(size, alignment int) (*Region, error) {
	if err := checkRequest(size, alignment); err != nil {
		return nil, err
	}
	if uint64(size) > maxMapping || uint64(alignment) > maxMapping {
		return nil, fmt.Errorf("%w: %d bytes (align %d)", ErrAcquire, size, alignment)
	}

	length := size
	if alignment > format.PageSize {
		length += alignment - format.PageSize
	}
	mapping, err := unix.Mmap(-1, 0, format.AlignPage(length),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %v", ErrAcquire, size, err)
	}

	release := func() error {
		err := unix.Munmap(mapping)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	pad := format.Padding(uintptr(unsafe.Pointer(unsafe.SliceData(mapping))), alignment)
	return newRegion(mapping[pad:pad+size:pad+size], release), nil
}
