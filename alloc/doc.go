// Package alloc provides manual allocation strategies over a single
// pre-reserved memory region.
//
// # Overview
//
// Each allocator acquires one contiguous region when it is constructed,
// serves requests from it, and releases it in Close. Allocations are
// identified by a Ref, the byte offset of the returned address from the
// region base, and handed out together with a payload slice:
//
//	la, err := alloc.NewLinear(64<<10, nil)
//	if err != nil {
//	    return err
//	}
//	defer la.Close()
//
//	ref, payload, err := la.Allocate(256, 64)
//	if err != nil {
//	    return err // errors.Is(err, alloc.ErrOutOfMemory)
//	}
//	copy(payload, frameData)
//
// # Strategies
//
// LinearAllocator: bump allocation, bulk reclaim with Reset only.
//
// StackAllocator: bump allocation with LIFO intent. Deallocate is a logged
// no-op; Marker and Rewind release everything above a saved offset.
//
// PoolAllocator: fixed-size blocks threaded through an intrusive free list.
// Freed blocks are reused LIFO; invalid or repeated frees are rejected.
//
// FreeListAllocator: variable-size first-fit allocation from an
// address-ordered free list with eager coalescing of both neighbors. A
// 16-byte header before each payload records the carved size.
//
// # Alignment
//
// Padding is computed from the absolute address: pad = N - (A mod N), and 0
// when that equals N. Alignment 0 selects DefaultAlignment (16). Alignments
// that are not powers of two are rejected with ErrBadAlignment.
//
// # Diagnostics
//
// Every construction, allocate, deallocate, reset and close is reported to
// Options.Logger. Invalid deallocations and leaks found by Close are logged
// at Warn and never returned as errors.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally.
package alloc
