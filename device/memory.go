package device

import "github.com/mbkit/mbshm/pkg/types"

// Memory is the region interface the address resolver dispatches through.
// Both region variants implement it; offsets are in the region's native
// unit, bits for mem0x/mem1x and registers for mem3x/mem4x. All operations
// follow the clamp policy: out-of-range reads return zero values and
// out-of-range writes are dropped.
type Memory interface {
	// Identity.
	ID() types.Mem
	ByteOrder() types.ByteOrder
	RegisterOrder() types.RegisterOrder
	Count() int
	SizeBytes() int

	// Byte-plane access (offsets in bytes).
	Bytes(off, n int) []byte
	SetBytes(off int, data []byte)
	MaskBytes(off, n int) []byte

	// Bit access over the byte plane (offsets in bits).
	Bit(bitOff int) bool
	SetBit(bitOff int, v bool)
	Bits(bitOff, bitCount int) []byte
	SetBits(bitOff, bitCount int, val []byte)

	// Typed access in the region's native unit.
	Int8(off int) int8
	SetInt8(off int, v int8)
	Uint8(off int) uint8
	SetUint8(off int, v uint8)
	Int16(off int) int16
	SetInt16(off int, v int16)
	Uint16(off int) uint16
	SetUint16(off int, v uint16)
	Int32(off int) int32
	SetInt32(off int, v int32)
	Uint32(off int) uint32
	SetUint32(off int, v uint32)
	Int64(off int) int64
	SetInt64(off int, v int64)
	Uint64(off int) uint64
	SetUint64(off int, v uint64)
	Float32(off int) float32
	SetFloat32(off int, v float32)
	Float64(off int) float64
	SetFloat64(off int, v float64)

	// Device text in the region's native unit and in raw bytes.
	String(off, byteCount int) (string, error)
	SetString(off int, s string)
	ByteString(byteOff, byteCount int) (string, error)
	SetByteString(byteOff int, s string)

	// Change tracking.
	ChangeCounter() uint32
	DirtyRange() (off, n uint32)
	ResetDirty()
}

var (
	_ Memory = (*BitRegion)(nil)
	_ Memory = (*WordRegion)(nil)
)
