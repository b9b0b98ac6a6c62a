package alloc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/format"
	"github.com/joshuapare/memkit/pkg/region"
)

// bump is the offset-advancing core shared by LinearAllocator and
// StackAllocator. It keeps no per-allocation metadata.
type bump struct {
	reg  *region.Region
	data []byte
	base uintptr
	size int

	// offset is the number of bytes consumed from base since the last reset.
	// Invariant: 0 <= offset <= size.
	offset int

	align  int
	log    *slog.Logger
	stats  Stats
	closed bool
}

func acquire(p region.Provider, size, alignment int) (*region.Region, error) {
	r, err := p.Acquire(size, alignment)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	return r, nil
}

func newBump(kind string, size int, opts *Options) (*bump, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrInvalidSize, size)
	}
	align, err := opts.alignment()
	if err != nil {
		return nil, err
	}
	reg, err := acquire(opts.provider(), size, regionAlignment(align))
	if err != nil {
		return nil, err
	}

	b := &bump{
		reg:   reg,
		data:  reg.Bytes(),
		base:  reg.Base(),
		size:  size,
		align: align,
		log:   opts.logger(kind),
	}
	b.stats.Capacity = size
	b.log.Info("initialized", "capacity", size, "base", fmt.Sprintf("%#x", b.base))
	return b, nil
}

func (b *bump) allocate(size, alignment int) (Ref, []byte, error) {
	if b.closed {
		b.stats.AllocFailures++
		return 0, nil, ErrClosed
	}
	if size < 0 {
		b.stats.AllocFailures++
		return 0, nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	align, err := checkAlignment(alignment, b.align)
	if err != nil {
		b.stats.AllocFailures++
		return 0, nil, err
	}

	pad := format.Padding(b.base+uintptr(b.offset), align)
	start := b.offset + pad
	end, err := buf.CheckRange(b.size, start, size)
	if err != nil {
		b.stats.AllocFailures++
		b.log.Debug("allocate failed", "size", size, "align", align, "used", b.offset, "err", err)
		return 0, nil, fmt.Errorf("%w: %d bytes (align %d) with %d of %d used",
			ErrOutOfMemory, size, align, b.offset, b.size)
	}

	// A zero-size request still happens at a real aligned location: the
	// padding is consumed, no payload bytes are.
	b.stats.use(end - b.offset)
	b.offset = end
	b.stats.Allocs++

	ref := Ref(start)
	if b.log.Enabled(context.Background(), slog.LevelDebug) {
		b.log.Debug("allocate", "ref", ref, "size", size, "align", align, "pad", pad, "used", b.offset)
	}
	return ref, b.data[start:end:end], nil
}

func (b *bump) reset() {
	if b.closed {
		b.log.Warn("reset after close ignored")
		return
	}
	b.offset = 0
	b.stats.Used = 0
	b.stats.Resets++
	b.log.Info("reset", "capacity", b.size)
}

func (b *bump) close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if b.offset > 0 {
		b.log.Warn("leak detected", "bytes", b.offset)
	}
	b.data = nil
	err := b.reg.Release()
	b.log.Info("destroyed")
	return err
}

// Used returns the bytes consumed since the last reset, padding included.
func (b *bump) Used() int { return b.offset }

// Capacity returns the size of the owned region.
func (b *bump) Capacity() int { return b.size }

// Addr returns the absolute address of ref.
func (b *bump) Addr(ref Ref) uintptr { return b.base + uintptr(ref) }

// Stats returns a snapshot of the allocator counters.
func (b *bump) Stats() Stats { return b.stats }
