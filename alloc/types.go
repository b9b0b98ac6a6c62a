package alloc

import (
	"fmt"

	"github.com/joshuapare/memkit/internal/format"
)

// Ref is the byte offset of an allocation from the base of its allocator's
// region. Refs are only meaningful to the allocator that returned them.
type Ref uint64

// NilRef terminates intrusive lists. No allocation ever has this ref.
const NilRef Ref = ^Ref(0)

const (
	// DefaultAlignment is used when a caller passes alignment 0.
	DefaultAlignment = format.MaxAlign

	// MaxAlignment bounds accepted alignments so padding always fits the
	// 32-bit adjust field of a free-list allocation header.
	MaxAlignment = 1 << 30
)

// Arena is implemented by the variable-size strategies: LinearAllocator,
// StackAllocator and FreeListAllocator.
type Arena interface {
	// Allocate returns the ref of an alignment-aligned block of size bytes
	// and the payload slice covering it.
	Allocate(size, alignment int) (Ref, []byte, error)

	// Reset reclaims the whole region. Every outstanding ref becomes invalid.
	Reset()

	// Close reports leaks and releases the region.
	Close() error

	// Stats returns a snapshot of the allocator counters.
	Stats() Stats
}

// Freer is implemented by allocators that accept per-ref deallocation.
// Invalid refs are reported to the logger and otherwise ignored.
type Freer interface {
	Deallocate(ref Ref)
}

// Stats holds allocator counters for diagnostics and tests.
type Stats struct {
	Capacity int // Bytes in the owned region
	Used     int // Bytes currently consumed
	Peak     int // Highest Used since construction

	Allocs        int // Successful Allocate calls
	AllocFailures int // Allocate calls that returned an error
	Frees         int // Accepted Deallocate calls
	FreeRejects   int // Deallocate calls rejected as invalid or unsupported
	Resets        int // Reset calls

	Splits    int // Free blocks shrunk in place (free list only)
	Coalesces int // Neighbor merges on deallocate (free list only)
}

// Available returns Capacity - Used.
func (s Stats) Available() int { return s.Capacity - s.Used }

func (s *Stats) use(n int) {
	s.Used += n
	if s.Used > s.Peak {
		s.Peak = s.Used
	}
}

// checkAlignment resolves alignment 0 to def and validates the rest.
func checkAlignment(alignment, def int) (int, error) {
	if alignment == 0 {
		return def, nil
	}
	if !format.IsPow2(alignment) || alignment > MaxAlignment {
		return 0, fmt.Errorf("%w: %d", ErrBadAlignment, alignment)
	}
	return alignment, nil
}
