//go:build !unix

package region

// Default is the provider used when callers do not configure one. Without
// anonymous mappings the Go heap is used, capped at DefaultHeapLimit.
var Default Provider = Heap{}

// Mmap falls back to the Go heap where anonymous mappings are unavailable.
type Mmap struct{}

// Acquire delegates to Heap.
func (Mmap) Acquire(size, alignment int) (*Region, error) {
	return Heap{}.Acquire(size, alignment)
}
