package format

// Alignment utilities. All alignments handled here are powers of two; callers
// validate with IsPow2 before computing padding.

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Padding returns the number of bytes that must be skipped from addr so the
// result is a multiple of alignment. It returns 0 when addr is already aligned.
//
// Example:
//
//	Padding(0x1001, 16) = 15
//	Padding(0x1010, 16) = 0
func Padding(addr uintptr, alignment int) int {
	a := uintptr(alignment)
	pad := a - addr%a
	if pad == a {
		return 0
	}
	return int(pad)
}

// AlignUp returns n aligned up to the next multiple of alignment.
//
// Example:
//
//	AlignUp(1, 8)  = 8
//	AlignUp(8, 8)  = 8
//	AlignUp(9, 8)  = 16
func AlignUp(n, alignment int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

// Align8 returns n aligned up to the next 8-byte boundary.
func Align8(n int) int {
	return AlignUp(n, WordSize)
}

// AlignPage returns n aligned up to the next page boundary.
func AlignPage(n int) int {
	return AlignUp(n, PageSize)
}
