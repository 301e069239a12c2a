package cat034

import (
	"fmt"
	"math"
)

// Field is implemented by every CAT034 data item. MarshalWire produces exactly
// WireSize bytes; UnmarshalWire accepts exactly the item's encoded length.
type Field interface {
	WireSize() int
	MarshalWire() ([]byte, error)
	UnmarshalWire(b []byte) error
}

// checkSize rejects a slice that is not exactly the item's wire size
func checkSize(item string, b []byte, want int) error {
	if len(b) != want {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrSizeInvalid, item, want, len(b))
	}
	return nil
}

// toLSB converts a physical value to a wire count, truncating toward zero,
// and checks it against the integer range [min, max].
func toLSB(item string, value, lsb float64, min, max int64) (int64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %s value %v", ErrValueRange, item, value)
	}
	count := math.Trunc(value / lsb)
	if count < float64(min) || count > float64(max) {
		return 0, fmt.Errorf("%w: %s value %v outside [%v, %v]", ErrValueRange, item, value, float64(min)*lsb, float64(max)*lsb)
	}
	return int64(count), nil
}

// signExtend24 interprets the low 24 bits of v as two's complement
func signExtend24(v uint32) int32 {
	v &= 0xFFFFFF
	if v&0x800000 != 0 {
		return int32(v) - 1<<24
	}
	return int32(v)
}

// putUint24 writes the low 24 bits of v big-endian into b[0:3]
func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// uint24 reads a big-endian 24-bit value from b[0:3]
func uint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}
