package device

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/mbkit/mbshm/internal/shm"
	"github.com/mbkit/mbshm/pkg/types"
)

// WordRegion is a register-addressable memory region: input registers
// (mem3x) or holding registers (mem4x). Typed accessors are addressed in
// 16-bit registers and follow the clamp policy; At and SetAt are the strict
// single-register variants. Bit addressing over the byte plane is inherited,
// so bitOff = regOff*16 reaches a register's low bit.
type WordRegion struct {
	region
}

func newWordRegion(seg *shm.Segment, id types.Mem, count int, bo types.ByteOrder, ro types.RegisterOrder, closed *atomic.Bool) *WordRegion {
	return &WordRegion{region: newRegion(seg, id, count, bo, ro, closed)}
}

// Uint8 reads the first (even) byte of the register at regOff.
func (r *WordRegion) Uint8(regOff int) uint8 {
	if regOff < 0 || 2*regOff >= r.cbytes {
		return 0
	}
	if b := r.Bytes(2*regOff, 1); len(b) == 1 {
		return b[0]
	}
	return 0
}

// Int8 reads the first byte of the register at regOff as a signed value.
func (r *WordRegion) Int8(regOff int) int8 { return int8(r.Uint8(regOff)) }

// SetUint8 writes the first (even) byte of the register at regOff.
func (r *WordRegion) SetUint8(regOff int, v uint8) {
	if regOff < 0 || 2*regOff >= r.cbytes {
		return
	}
	r.SetBytes(2*regOff, []byte{v})
}

// SetInt8 writes the first byte of the register at regOff.
func (r *WordRegion) SetInt8(regOff int, v int8) { r.SetUint8(regOff, uint8(v)) }

// Uint16 reads the register at regOff, honoring the device byte order.
// Zero when regOff is outside [0, Count()).
func (r *WordRegion) Uint16(regOff int) uint16 {
	if regOff < 0 || regOff >= r.count {
		return 0
	}
	if b := r.loadWord(2*regOff, 2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

// Int16 reads the register at regOff as a signed value.
func (r *WordRegion) Int16(regOff int) int16 { return int16(r.Uint16(regOff)) }

// SetUint16 writes the register at regOff. Dropped when regOff is outside
// [0, Count()).
func (r *WordRegion) SetUint16(regOff int, v uint16) {
	if regOff < 0 || regOff >= r.count {
		return
	}
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	r.storeWord(2*regOff, b[:])
}

// SetInt16 writes the register at regOff.
func (r *WordRegion) SetInt16(regOff int, v int16) { r.SetUint16(regOff, uint16(v)) }

// Uint32 reads two registers starting at regOff, honoring the device byte
// and register order. Zero when regOff is outside [0, Count()-1).
func (r *WordRegion) Uint32(regOff int) uint32 {
	if regOff < 0 || regOff >= r.count-1 {
		return 0
	}
	if b := r.loadWord(2*regOff, 4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

// Int32 reads two registers starting at regOff as a signed value.
func (r *WordRegion) Int32(regOff int) int32 { return int32(r.Uint32(regOff)) }

// SetUint32 writes two registers starting at regOff.
func (r *WordRegion) SetUint32(regOff int, v uint32) {
	if regOff < 0 || regOff >= r.count-1 {
		return
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	r.storeWord(2*regOff, b[:])
}

// SetInt32 writes two registers starting at regOff.
func (r *WordRegion) SetInt32(regOff int, v int32) { r.SetUint32(regOff, uint32(v)) }

// Uint64 reads four registers starting at regOff, honoring the device byte
// and register order. Zero when regOff is outside [0, Count()-3).
func (r *WordRegion) Uint64(regOff int) uint64 {
	if regOff < 0 || regOff >= r.count-3 {
		return 0
	}
	if b := r.loadWord(2*regOff, 8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

// Int64 reads four registers starting at regOff as a signed value.
func (r *WordRegion) Int64(regOff int) int64 { return int64(r.Uint64(regOff)) }

// SetUint64 writes four registers starting at regOff.
func (r *WordRegion) SetUint64(regOff int, v uint64) {
	if regOff < 0 || regOff >= r.count-3 {
		return
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	r.storeWord(2*regOff, b[:])
}

// SetInt64 writes four registers starting at regOff.
func (r *WordRegion) SetInt64(regOff int, v int64) { r.SetUint64(regOff, uint64(v)) }

// Float32 reads an IEEE-754 single from two registers starting at regOff.
func (r *WordRegion) Float32(regOff int) float32 { return math.Float32frombits(r.Uint32(regOff)) }

// SetFloat32 writes an IEEE-754 single to two registers starting at regOff.
func (r *WordRegion) SetFloat32(regOff int, v float32) { r.SetUint32(regOff, math.Float32bits(v)) }

// Float64 reads an IEEE-754 double from four registers starting at regOff.
func (r *WordRegion) Float64(regOff int) float64 { return math.Float64frombits(r.Uint64(regOff)) }

// SetFloat64 writes an IEEE-754 double to four registers starting at regOff.
func (r *WordRegion) SetFloat64(regOff int, v float64) { r.SetUint64(regOff, math.Float64bits(v)) }

// String reads byteCount bytes starting at register regOff and decodes them
// as device text.
func (r *WordRegion) String(regOff, byteCount int) (string, error) {
	return r.ByteString(2*regOff, byteCount)
}

// RegString is an alias for String, for symmetry with ByteString.
func (r *WordRegion) RegString(regOff, byteCount int) (string, error) {
	return r.String(regOff, byteCount)
}

// SetString encodes s as device text and writes it starting at register
// regOff.
func (r *WordRegion) SetString(regOff int, s string) {
	r.SetByteString(2*regOff, s)
}

// SetRegString is an alias for SetString.
func (r *WordRegion) SetRegString(regOff int, s string) { r.SetString(regOff, s) }

// At reads the register at index i, reporting an error for indexes outside
// [0, Count()). This is the strict counterpart of Uint16.
func (r *WordRegion) At(i int) (uint16, error) {
	if r.closed.Load() {
		return 0, types.ErrClosed
	}
	if i < 0 || i >= r.count {
		return 0, fmt.Errorf("device: %s register %d out of range [0, %d): %w",
			r.id, i, r.count, types.ErrIndexOutOfRange)
	}
	return r.Uint16(i), nil
}

// SetAt writes the register at index i, reporting an error for indexes
// outside [0, Count()). This is the strict counterpart of SetUint16.
func (r *WordRegion) SetAt(i int, v uint16) error {
	if r.closed.Load() {
		return types.ErrClosed
	}
	if i < 0 || i >= r.count {
		return fmt.Errorf("device: %s register %d out of range [0, %d): %w",
			r.id, i, r.count, types.ErrIndexOutOfRange)
	}
	r.SetUint16(i, v)
	return nil
}
