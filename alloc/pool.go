package alloc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshuapare/memkit/internal/bitset"
	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/format"
	"github.com/joshuapare/memkit/pkg/region"
)

// PoolAllocator hands out fixed-size blocks from a slab of blockSize*blockCount
// bytes. Free blocks form an intrusive singly linked list: the first word of
// each free block holds the ref of the next free block, or NilRef.
//
// Allocate and Deallocate are O(1). Freed blocks are reused LIFO.
type PoolAllocator struct {
	reg  *region.Region
	data []byte
	base uintptr

	blockSize  int
	blockCount int

	head       Ref
	usedBlocks int

	// live marks handed-out blocks so double frees are rejected instead of
	// corrupting the list.
	live *bitset.Set

	log    *slog.Logger
	stats  Stats
	closed bool
}

// NewPool reserves blockCount blocks of blockSize bytes each. blockSize must
// hold at least one link word (8 bytes).
func NewPool(blockSize, blockCount int, opts *Options) (*PoolAllocator, error) {
	if blockSize < format.WordSize {
		return nil, fmt.Errorf("%w: block size %d is smaller than a link word", ErrInvalidSize, blockSize)
	}
	if blockCount <= 0 {
		return nil, fmt.Errorf("%w: block count %d", ErrInvalidSize, blockCount)
	}
	total, ok := buf.MulOverflowSafe(blockSize, blockCount)
	if !ok {
		return nil, fmt.Errorf("%w: %d blocks of %d bytes overflows", ErrOutOfMemory, blockCount, blockSize)
	}
	align, err := opts.alignment()
	if err != nil {
		return nil, err
	}
	reg, err := acquire(opts.provider(), total, regionAlignment(align))
	if err != nil {
		return nil, err
	}

	p := &PoolAllocator{
		reg:        reg,
		data:       reg.Bytes(),
		base:       reg.Base(),
		blockSize:  blockSize,
		blockCount: blockCount,
		live:       bitset.New(blockCount),
		log:        opts.logger("pool"),
	}
	p.stats.Capacity = total
	p.relink()
	p.log.Info("initialized", "block_size", blockSize, "block_count", blockCount,
		"base", fmt.Sprintf("%#x", p.base))
	return p, nil
}

// relink threads every block that is not live into the free list in ascending
// address order.
func (p *PoolAllocator) relink() {
	p.head = NilRef
	for i := p.blockCount - 1; i >= 0; i-- {
		if p.live.Has(i) {
			continue
		}
		off := i * p.blockSize
		format.PutU64(p.data, off, uint64(p.head))
		p.head = Ref(off)
	}
}

// Allocate pops the head of the free list. It fails with ErrOutOfMemory when
// every block is in use. The payload is exactly BlockSize bytes; its first word
// still holds the stale link.
func (p *PoolAllocator) Allocate() (Ref, []byte, error) {
	if p.closed {
		p.stats.AllocFailures++
		return 0, nil, ErrClosed
	}
	if p.head == NilRef {
		p.stats.AllocFailures++
		p.log.Debug("allocate failed", "used_blocks", p.usedBlocks)
		return 0, nil, fmt.Errorf("%w: all %d blocks in use", ErrOutOfMemory, p.blockCount)
	}

	ref := p.head
	next := Ref(format.ReadU64(p.data, int(ref)))
	if next != NilRef && !p.validBlock(next) {
		// A caller wrote through a freed block. Rebuild from the live map so
		// the list and usedBlocks stay consistent.
		p.log.Error("free list link corrupted, relinking", "ref", ref, "next", uint64(next))
		p.live.Set(p.index(ref))
		p.relink()
		next = p.head
	}

	p.head = next
	p.live.Set(p.index(ref))
	p.usedBlocks++
	p.stats.Allocs++
	p.stats.use(p.blockSize)

	if p.log.Enabled(context.Background(), slog.LevelDebug) {
		p.log.Debug("allocate", "ref", ref, "size", p.blockSize, "used_blocks", p.usedBlocks)
	}
	end := int(ref) + p.blockSize
	return ref, p.data[ref:end:end], nil
}

// Deallocate pushes ref back on the free list. A ref outside the slab, not on
// a block boundary, or not currently allocated is logged and ignored.
func (p *PoolAllocator) Deallocate(ref Ref) {
	if p.closed {
		p.log.Warn("deallocate after close ignored", "ref", ref)
		return
	}
	var reason string
	switch {
	case ref >= Ref(len(p.data)):
		reason = "outside pool"
	case int(ref)%p.blockSize != 0:
		reason = "not on a block boundary"
	case !p.live.Has(p.index(ref)):
		reason = "block not allocated"
	}
	if reason != "" {
		p.stats.FreeRejects++
		p.log.Warn("invalid deallocate", "ref", ref, "reason", reason)
		return
	}

	format.PutU64(p.data, int(ref), uint64(p.head))
	p.head = ref
	p.live.Unset(p.index(ref))
	p.usedBlocks--
	p.stats.Frees++
	p.stats.Used -= p.blockSize

	if p.log.Enabled(context.Background(), slog.LevelDebug) {
		p.log.Debug("deallocate", "ref", ref, "used_blocks", p.usedBlocks)
	}
}

// Reset returns every block to the free list regardless of outstanding
// allocations.
func (p *PoolAllocator) Reset() {
	if p.closed {
		p.log.Warn("reset after close ignored")
		return
	}
	p.live.Clear()
	p.relink()
	p.usedBlocks = 0
	p.stats.Used = 0
	p.stats.Resets++
	p.log.Info("reset", "block_count", p.blockCount)
}

// Close logs the number of unreturned blocks, if any, and releases the slab.
func (p *PoolAllocator) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.usedBlocks > 0 {
		p.log.Warn("leak detected", "blocks", p.usedBlocks, "bytes", p.usedBlocks*p.blockSize)
	}
	p.data = nil
	err := p.reg.Release()
	p.log.Info("destroyed")
	return err
}

func (p *PoolAllocator) index(ref Ref) int { return int(ref) / p.blockSize }

func (p *PoolAllocator) validBlock(ref Ref) bool {
	return ref < Ref(len(p.data)) && int(ref)%p.blockSize == 0 && !p.live.Has(p.index(ref))
}

// BlockSize returns the fixed block size.
func (p *PoolAllocator) BlockSize() int { return p.blockSize }

// BlockCount returns the number of blocks in the slab.
func (p *PoolAllocator) BlockCount() int { return p.blockCount }

// UsedBlocks returns the number of blocks currently handed out.
func (p *PoolAllocator) UsedBlocks() int { return p.usedBlocks }

// FreeBlocks walks the free list and returns its length.
func (p *PoolAllocator) FreeBlocks() int {
	if p.closed {
		return 0
	}
	n := 0
	for ref := p.head; ref != NilRef && n <= p.blockCount; ref = Ref(format.ReadU64(p.data, int(ref))) {
		n++
	}
	return n
}

// Addr returns the absolute address of ref.
func (p *PoolAllocator) Addr(ref Ref) uintptr { return p.base + uintptr(ref) }

// Stats returns a snapshot of the allocator counters.
func (p *PoolAllocator) Stats() Stats { return p.stats }
