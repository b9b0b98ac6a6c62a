package format

import "encoding/binary"

// Little-endian word access. Link words and block headers live inside the
// region the allocators own, so every read and write goes through the slice
// bounds checks of encoding/binary.

// PutU32 writes a uint32 value to the buffer at the specified offset.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutU64 writes a uint64 value to the buffer at the specified offset.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified offset.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// ReadU64 reads a uint64 value from the buffer at the specified offset.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}
