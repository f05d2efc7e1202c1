package layout

import "fmt"

// Address is a byte offset in the 32-bit target address space.
type Address uint32

func (a Address) String() string {
	return fmt.Sprintf("0x%08x", uint32(a))
}

// Size is a byte count. A zero section size means the size is derived
// from the section contents at link time.
type Size uint32

// Bytes returns n bytes.
func Bytes(n uint32) Size { return Size(n) }

// Kilobytes returns n × 1024 bytes. It panics if the result does not fit
// in 32 bits.
func Kilobytes(n uint32) Size { return scaled(n, 1024, "Kilobytes") }

// Megabytes returns n × 1024² bytes. It panics if the result does not fit
// in 32 bits.
func Megabytes(n uint32) Size { return scaled(n, 1024*1024, "Megabytes") }

func scaled(n uint32, unit uint64, fn string) Size {
	v := uint64(n) * unit
	if v >= addressSpaceEnd {
		panic(fmt.Sprintf("layout: %s(%d) overflows 32 bits", fn, n))
	}
	return Size(v)
}

// String formats the size with the largest unit that divides it exactly.
func (s Size) String() string {
	switch {
	case s == 0:
		return "0"
	case s%(1024*1024) == 0:
		return fmt.Sprintf("%dM", s/(1024*1024))
	case s%1024 == 0:
		return fmt.Sprintf("%dK", s/1024)
	default:
		return fmt.Sprintf("%d", uint32(s))
	}
}

// addressSpaceEnd is one past the last addressable byte.
const addressSpaceEnd = uint64(1) << 32
