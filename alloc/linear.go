package alloc

// LinearAllocator is an arena: allocation advances a single offset and memory
// is reclaimed only in bulk by Reset. It has no per-ref deallocation.
//
// Allocate and Reset are O(1). Instances are not safe for concurrent use.
type LinearAllocator struct {
	*bump
}

// NewLinear reserves size bytes aligned to the platform maximum alignment.
// It fails with ErrOutOfMemory when the provider cannot supply the region.
func NewLinear(size int, opts *Options) (*LinearAllocator, error) {
	b, err := newBump("linear", size, opts)
	if err != nil {
		return nil, err
	}
	return &LinearAllocator{bump: b}, nil
}

// Allocate carves size bytes at the next address aligned to alignment
// (0 selects the default). It fails with ErrOutOfMemory when padding plus
// size exceed the remaining capacity; the offset is left unchanged.
func (la *LinearAllocator) Allocate(size, alignment int) (Ref, []byte, error) {
	return la.allocate(size, alignment)
}

// Reset rewinds the offset to zero. Refs returned before Reset are invalid;
// using them is not detected.
func (la *LinearAllocator) Reset() { la.reset() }

// Close logs a leak when bytes remain allocated and releases the region.
// Calling Close more than once is a no-op.
func (la *LinearAllocator) Close() error { return la.close() }

var _ Arena = (*LinearAllocator)(nil)
