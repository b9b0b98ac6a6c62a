// Package buf provides overflow-checked arithmetic for capacity and range
// computations over a byte region.
package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe returns a+b, or ok = false on int overflow.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe returns a*b for non-negative operands, or ok = false on
// overflow or a negative operand.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// CheckRange reports the end offset of n bytes placed at offset in a region
// of total bytes, or why they do not fit.
func CheckRange(total, offset, n int) (int, error) {
	if offset < 0 {
		return 0, fmt.Errorf("negative offset: %d", offset)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative length: %d", n)
	}
	end, ok := AddOverflowSafe(offset, n)
	if !ok {
		return 0, fmt.Errorf("offset %d + length %d overflows", offset, n)
	}
	if end > total {
		return 0, fmt.Errorf("end %d exceeds capacity %d", end, total)
	}
	return end, nil
}
