package types

import "fmt"

// Mem identifies one of the four Modbus memory areas of a device.
// The numeric values match the codes the server stores in shared memory.
type Mem int32

const (
	MemInvalid Mem = -1
	Mem0x      Mem = 0 // coils: bit-addressable, client-writable
	Mem1x      Mem = 1 // discrete inputs: bit-addressable
	Mem3x      Mem = 3 // input registers: word-addressable
	Mem4x      Mem = 4 // holding registers: word-addressable, client-writable
)

// Kinds returns the four memory areas in canonical order.
func Kinds() [4]Mem {
	return [4]Mem{Mem0x, Mem1x, Mem3x, Mem4x}
}

// Valid reports whether m names one of the four areas.
func (m Mem) Valid() bool {
	return m == Mem0x || m == Mem1x || m == Mem3x || m == Mem4x
}

// Bits reports whether the area is bit-addressable.
func (m Mem) Bits() bool { return m == Mem0x || m == Mem1x }

// String implements the Stringer interface for Mem.
func (m Mem) String() string {
	switch m {
	case Mem0x:
		return "0x"
	case Mem1x:
		return "1x"
	case Mem3x:
		return "3x"
	case Mem4x:
		return "4x"
	default:
		return fmt.Sprintf("UNKNOWN_MEM_%d", int32(m))
	}
}
