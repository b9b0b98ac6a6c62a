package alloc

// StackAllocator is a bump allocator meant to be used in last-in-first-out
// order. Individual deallocation is not supported: Deallocate only logs.
// Memory is reclaimed with Reset or by rewinding to a Marker.
type StackAllocator struct {
	*bump
}

// Marker is a saved stack offset.
type Marker int

// NewStack reserves size bytes aligned to the platform maximum alignment.
func NewStack(size int, opts *Options) (*StackAllocator, error) {
	b, err := newBump("stack", size, opts)
	if err != nil {
		return nil, err
	}
	return &StackAllocator{bump: b}, nil
}

// Allocate carves size bytes at the next aligned address. A zero-size request
// returns a valid aligned ref at the current offset and consumes only the
// padding.
func (sa *StackAllocator) Allocate(size, alignment int) (Ref, []byte, error) {
	return sa.allocate(size, alignment)
}

// Deallocate is a safe no-op for any ref, valid or not, any number of times.
func (sa *StackAllocator) Deallocate(ref Ref) {
	sa.stats.FreeRejects++
	sa.log.Warn("deallocate not supported for arbitrary addresses", "ref", ref)
}

// Marker returns the current offset for a later Rewind.
func (sa *StackAllocator) Marker() Marker { return Marker(sa.offset) }

// Rewind releases everything allocated after m was taken. A marker beyond
// the current offset (taken before a Reset or an earlier Rewind) is ignored
// with a diagnostic.
func (sa *StackAllocator) Rewind(m Marker) {
	if sa.closed {
		sa.log.Warn("rewind after close ignored")
		return
	}
	if m < 0 || int(m) > sa.offset {
		sa.stats.FreeRejects++
		sa.log.Warn("rewind to stale marker ignored", "marker", int(m), "used", sa.offset)
		return
	}
	sa.offset = int(m)
	sa.stats.Used = sa.offset
	sa.stats.Frees++
	sa.log.Debug("rewind", "used", sa.offset)
}

// Reset rewinds the offset to zero.
func (sa *StackAllocator) Reset() { sa.reset() }

// Close logs a leak when bytes remain allocated and releases the region.
func (sa *StackAllocator) Close() error { return sa.close() }

var (
	_ Arena = (*StackAllocator)(nil)
	_ Freer = (*StackAllocator)(nil)
)
