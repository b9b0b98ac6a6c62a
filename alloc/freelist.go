package alloc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshuapare/memkit/internal/format"
	"github.com/joshuapare/memkit/pkg/region"
)

// Free block header, written at the start of every free region:
//
//	0x00  size  uint64  bytes in the free region, header included
//	0x08  next  uint64  ref of the next free region (ascending), or NilRef
const (
	freeHeaderSize = 16
	freeSizeOffset = 0
	freeNextOffset = 8
)

// Allocation header, written immediately before every payload:
//
//	0x00  size    uint64  bytes carved from the free list for this allocation
//	0x08  adjust  uint32  distance from the carved block start to the payload
//	0x0C  magic   uint32  allocMagic while live, zero once freed
const (
	allocHeaderSize   = 16
	allocSizeOffset   = 0
	allocAdjustOffset = 8
	allocMagicOffset  = 12

	allocMagic = 0x4B4D454D // "MEMK"
)

// FreeListAllocator serves variable-size requests first-fit from an
// address-ordered list of free regions and merges neighbors eagerly on free.
//
// Each allocation carries a 16-byte header before its payload recording the
// carved size, so Deallocate needs only the ref. Allocate and Deallocate are
// O(n) in the number of free regions.
type FreeListAllocator struct {
	reg  *region.Region
	data []byte
	base uintptr
	size int

	// head is the lowest free region. Invariant: the list is strictly
	// ascending and no two entries are contiguous.
	head Ref

	// used is the sum of carved block sizes currently live.
	used int

	align  int
	log    *slog.Logger
	stats  Stats
	closed bool
}

// Block describes one free region.
type Block struct {
	Offset Ref
	Size   int
}

// NewFreeList reserves size bytes as a single free region. size must be able to
// hold at least one free header.
func NewFreeList(size int, opts *Options) (*FreeListAllocator, error) {
	if size < freeHeaderSize {
		return nil, fmt.Errorf("%w: capacity %d is below the %d-byte minimum", ErrInvalidSize, size, freeHeaderSize)
	}
	align, err := opts.alignment()
	if err != nil {
		return nil, err
	}
	reg, err := acquire(opts.provider(), size, regionAlignment(align))
	if err != nil {
		return nil, err
	}

	fl := &FreeListAllocator{
		reg:   reg,
		data:  reg.Bytes(),
		base:  reg.Base(),
		size:  size,
		align: align,
		log:   opts.logger("freelist"),
	}
	fl.stats.Capacity = size
	fl.writeNode(0, size, NilRef)
	fl.head = 0
	fl.log.Info("initialized", "capacity", size, "base", fmt.Sprintf("%#x", fl.base))
	return fl, nil
}

// Allocate returns the first free region large enough for the allocation
// header, the alignment padding and size. The region is shrunk in place when
// the remainder can still hold a free header, otherwise it is consumed whole.
// It fails with ErrOutOfMemory when no single region fits; requests are never
// split across regions.
func (fl *FreeListAllocator) Allocate(size, alignment int) (Ref, []byte, error) {
	if fl.closed {
		fl.stats.AllocFailures++
		return 0, nil, ErrClosed
	}
	if size < 0 {
		fl.stats.AllocFailures++
		return 0, nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	align, err := checkAlignment(alignment, fl.align)
	if err != nil {
		fl.stats.AllocFailures++
		return 0, nil, err
	}

	if size <= fl.size {
		prev := NilRef
		for cur := fl.head; cur != NilRef; {
			nodeSize, next := fl.nodeSize(cur), fl.nodeNext(cur)

			payload := int(cur) + allocHeaderSize
			pad := format.Padding(fl.base+uintptr(payload), align)
			need := format.Align8(allocHeaderSize + pad + size)

			if need <= nodeSize {
				carved := nodeSize
				if nodeSize-need > freeHeaderSize {
					rest := cur + Ref(need)
					fl.writeNode(rest, nodeSize-need, next)
					fl.link(prev, rest)
					carved = need
					fl.stats.Splits++
				} else {
					fl.link(prev, next)
				}

				payload += pad
				h := payload - allocHeaderSize
				format.PutU64(fl.data, h+allocSizeOffset, uint64(carved))
				format.PutU32(fl.data, h+allocAdjustOffset, uint32(payload-int(cur)))
				format.PutU32(fl.data, h+allocMagicOffset, allocMagic)

				fl.used += carved
				fl.stats.use(carved)
				fl.stats.Allocs++

				ref := Ref(payload)
				if fl.log.Enabled(context.Background(), slog.LevelDebug) {
					fl.log.Debug("allocate", "ref", ref, "size", size, "align", align,
						"block", carved, "used", fl.used)
				}
				end := payload + size
				return ref, fl.data[payload:end:end], nil
			}
			prev, cur = cur, next
		}
	}

	fl.stats.AllocFailures++
	fl.log.Debug("allocate failed", "size", size, "align", align, "used", fl.used)
	return 0, nil, fmt.Errorf("%w: no free block fits %d bytes (align %d)", ErrOutOfMemory, size, align)
}

// Deallocate returns the block holding ref to the free list and merges it with
// the neighbors it touches. Refs that were not returned by Allocate, or that
// were already freed, are logged and ignored.
func (fl *FreeListAllocator) Deallocate(ref Ref) {
	if fl.closed {
		fl.log.Warn("deallocate after close ignored", "ref", ref)
		return
	}
	start, carved, reason := fl.lookup(ref)
	if reason != "" {
		fl.reject(ref, reason)
		return
	}

	// Find the insertion point: prev < start < cur.
	prev, cur := NilRef, fl.head
	for cur != NilRef && int(cur) < start {
		prev, cur = cur, fl.nodeNext(cur)
	}
	end := start + carved
	if prev != NilRef && int(prev)+fl.nodeSize(prev) > start {
		fl.reject(ref, "block overlaps free region")
		return
	}
	if cur != NilRef && end > int(cur) {
		fl.reject(ref, "block overlaps free region")
		return
	}

	// Clear the magic before any free header can land on top of it.
	format.PutU32(fl.data, int(ref)-allocHeaderSize+allocMagicOffset, 0)

	size, next := carved, cur
	if cur != NilRef && end == int(cur) {
		size += fl.nodeSize(cur)
		next = fl.nodeNext(cur)
		fl.stats.Coalesces++
	}
	if prev != NilRef && int(prev)+fl.nodeSize(prev) == start {
		fl.writeNode(prev, fl.nodeSize(prev)+size, next)
		fl.stats.Coalesces++
	} else {
		fl.writeNode(Ref(start), size, next)
		fl.link(prev, Ref(start))
	}

	fl.used -= carved
	fl.stats.Used -= carved
	fl.stats.Frees++

	if fl.log.Enabled(context.Background(), slog.LevelDebug) {
		fl.log.Debug("deallocate", "ref", ref, "block", carved, "used", fl.used)
	}
}

// lookup validates ref against its allocation header and returns the carved
// block it belongs to. A non-empty reason means ref is invalid.
func (fl *FreeListAllocator) lookup(ref Ref) (start, carved int, reason string) {
	if ref < allocHeaderSize || ref > Ref(fl.size) {
		return 0, 0, "outside region"
	}
	h := int(ref) - allocHeaderSize
	if format.ReadU32(fl.data, h+allocMagicOffset) != allocMagic {
		return 0, 0, "no live allocation header"
	}
	size := format.ReadU64(fl.data, h+allocSizeOffset)
	adjust := int(format.ReadU32(fl.data, h+allocAdjustOffset))
	start = int(ref) - adjust
	if adjust < allocHeaderSize || start < 0 || size < freeHeaderSize || size > uint64(fl.size-start) ||
		int(size) < adjust {
		return 0, 0, "corrupt allocation header"
	}
	return start, int(size), ""
}

func (fl *FreeListAllocator) reject(ref Ref, reason string) {
	fl.stats.FreeRejects++
	fl.log.Warn("invalid deallocate", "ref", ref, "reason", reason)
}

// Reset collapses the free list to one region spanning the whole allocator.
func (fl *FreeListAllocator) Reset() {
	if fl.closed {
		fl.log.Warn("reset after close ignored")
		return
	}
	fl.writeNode(0, fl.size, NilRef)
	fl.head = 0
	fl.used = 0
	fl.stats.Used = 0
	fl.stats.Resets++
	fl.log.Info("reset", "capacity", fl.size)
}

// Close logs outstanding bytes, if any, and releases the region.
func (fl *FreeListAllocator) Close() error {
	if fl.closed {
		return nil
	}
	fl.closed = true
	if fl.used > 0 {
		fl.log.Warn("leak detected", "bytes", fl.used)
	}
	fl.data = nil
	err := fl.reg.Release()
	fl.log.Info("destroyed")
	return err
}

func (fl *FreeListAllocator) nodeSize(ref Ref) int {
	return int(format.ReadU64(fl.data, int(ref)+freeSizeOffset))
}

func (fl *FreeListAllocator) nodeNext(ref Ref) Ref {
	return Ref(format.ReadU64(fl.data, int(ref)+freeNextOffset))
}

func (fl *FreeListAllocator) writeNode(ref Ref, size int, next Ref) {
	format.PutU64(fl.data, int(ref)+freeSizeOffset, uint64(size))
	format.PutU64(fl.data, int(ref)+freeNextOffset, uint64(next))
}

// link points prev (or head when prev is NilRef) at next.
func (fl *FreeListAllocator) link(prev, next Ref) {
	if prev == NilRef {
		fl.head = next
		return
	}
	format.PutU64(fl.data, int(prev)+freeNextOffset, uint64(next))
}

// FreeBlocks returns the free list in address order.
func (fl *FreeListAllocator) FreeBlocks() []Block {
	if fl.closed {
		return nil
	}
	var blocks []Block
	for ref := fl.head; ref != NilRef; ref = fl.nodeNext(ref) {
		blocks = append(blocks, Block{Offset: ref, Size: fl.nodeSize(ref)})
	}
	return blocks
}

// LargestFree returns the size of the largest free region, header included.
func (fl *FreeListAllocator) LargestFree() int {
	largest := 0
	for _, b := range fl.FreeBlocks() {
		largest = max(largest, b.Size)
	}
	return largest
}

// Used returns the bytes carved for live allocations, headers included.
func (fl *FreeListAllocator) Used() int { return fl.used }

// Capacity returns the size of the owned region.
func (fl *FreeListAllocator) Capacity() int { return fl.size }

// Addr returns the absolute address of ref.
func (fl *FreeListAllocator) Addr(ref Ref) uintptr { return fl.base + uintptr(ref) }

// Stats returns a snapshot of the allocator counters.
func (fl *FreeListAllocator) Stats() Stats { return fl.stats }

var (
	_ Arena = (*FreeListAllocator)(nil)
	_ Freer = (*FreeListAllocator)(nil)
)
