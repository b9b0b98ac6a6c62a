// Package format holds the low-level layout helpers shared by the allocators:
// alignment arithmetic and little-endian word access into a byte region.
// Intrusive free-list links and block headers are written through these
// helpers so that no allocator touches raw pointers.
package format

const (
	// WordSize is the size of one intrusive link word.
	WordSize = 8

	// MaxAlign is the largest natural alignment of any Go scalar on the
	// supported 64-bit targets (matches C's max_align_t).
	MaxAlign = 16

	// PageSize is the granularity used by the mmap region provider.
	PageSize = 4096
)
