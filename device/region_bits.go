package device

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/mbkit/mbshm/internal/shm"
	"github.com/mbkit/mbshm/internal/wordorder"
	"github.com/mbkit/mbshm/pkg/types"
)

// BitRegion is a bit-addressable memory region: coils (mem0x) or discrete
// inputs (mem1x). Typed accessors read or write a value window of w bits at
// a bit offset and follow the clamp policy: a window leaving [0, Count()]
// reads as zero and drops writes. At and SetAt are the strict single-bit
// variants that report out-of-range indexes instead.
type BitRegion struct {
	region
}

func newBitRegion(seg *shm.Segment, id types.Mem, count int, bo types.ByteOrder, ro types.RegisterOrder, closed *atomic.Bool) *BitRegion {
	return &BitRegion{region: newRegion(seg, id, count, bo, ro, closed)}
}

// value reads a w-bit window at bitOff in canonical little-endian form.
// nil when the window does not lie fully inside [0, count].
func (r *BitRegion) value(bitOff, w int) []byte {
	if bitOff < 0 || bitOff > r.count-w {
		return nil
	}
	b := r.Bits(bitOff, w)
	if len(b) != w/8 {
		return nil
	}
	if w > 8 {
		wordorder.Rearrange(b, r.bo, r.ro)
	}
	return b
}

// setValue writes canonical little-endian bytes b as a w-bit window at
// bitOff. Dropped when the window does not lie fully inside [0, count].
func (r *BitRegion) setValue(bitOff, w int, b []byte) {
	if bitOff < 0 || bitOff > r.count-w {
		return
	}
	if w > 8 {
		wordorder.Rearrange(b, r.bo, r.ro)
	}
	r.SetBits(bitOff, w, b)
}

// Uint8 reads 8 bits starting at bitOff.
func (r *BitRegion) Uint8(bitOff int) uint8 {
	if b := r.value(bitOff, 8); b != nil {
		return b[0]
	}
	return 0
}

// Int8 reads 8 bits starting at bitOff as a signed value.
func (r *BitRegion) Int8(bitOff int) int8 { return int8(r.Uint8(bitOff)) }

// SetUint8 writes 8 bits starting at bitOff.
func (r *BitRegion) SetUint8(bitOff int, v uint8) { r.setValue(bitOff, 8, []byte{v}) }

// SetInt8 writes 8 bits starting at bitOff.
func (r *BitRegion) SetInt8(bitOff int, v int8) { r.SetUint8(bitOff, uint8(v)) }

// Uint16 reads a 16-bit value starting at bitOff, honoring the device byte
// order.
func (r *BitRegion) Uint16(bitOff int) uint16 {
	if b := r.value(bitOff, 16); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

// Int16 reads a 16-bit value starting at bitOff as a signed value.
func (r *BitRegion) Int16(bitOff int) int16 { return int16(r.Uint16(bitOff)) }

// SetUint16 writes a 16-bit value starting at bitOff.
func (r *BitRegion) SetUint16(bitOff int, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	r.setValue(bitOff, 16, b[:])
}

// SetInt16 writes a 16-bit value starting at bitOff.
func (r *BitRegion) SetInt16(bitOff int, v int16) { r.SetUint16(bitOff, uint16(v)) }

// Uint32 reads a 32-bit value starting at bitOff, honoring the device byte
// and register order.
func (r *BitRegion) Uint32(bitOff int) uint32 {
	if b := r.value(bitOff, 32); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

// Int32 reads a 32-bit value starting at bitOff as a signed value.
func (r *BitRegion) Int32(bitOff int) int32 { return int32(r.Uint32(bitOff)) }

// SetUint32 writes a 32-bit value starting at bitOff.
func (r *BitRegion) SetUint32(bitOff int, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	r.setValue(bitOff, 32, b[:])
}

// SetInt32 writes a 32-bit value starting at bitOff.
func (r *BitRegion) SetInt32(bitOff int, v int32) { r.SetUint32(bitOff, uint32(v)) }

// Uint64 reads a 64-bit value starting at bitOff, honoring the device byte
// and register order.
func (r *BitRegion) Uint64(bitOff int) uint64 {
	if b := r.value(bitOff, 64); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

// Int64 reads a 64-bit value starting at bitOff as a signed value.
func (r *BitRegion) Int64(bitOff int) int64 { return int64(r.Uint64(bitOff)) }

// SetUint64 writes a 64-bit value starting at bitOff.
func (r *BitRegion) SetUint64(bitOff int, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	r.setValue(bitOff, 64, b[:])
}

// SetInt64 writes a 64-bit value starting at bitOff.
func (r *BitRegion) SetInt64(bitOff int, v int64) { r.SetUint64(bitOff, uint64(v)) }

// Float32 reads an IEEE-754 single starting at bitOff.
func (r *BitRegion) Float32(bitOff int) float32 { return math.Float32frombits(r.Uint32(bitOff)) }

// SetFloat32 writes an IEEE-754 single starting at bitOff.
func (r *BitRegion) SetFloat32(bitOff int, v float32) { r.SetUint32(bitOff, math.Float32bits(v)) }

// Float64 reads an IEEE-754 double starting at bitOff.
func (r *BitRegion) Float64(bitOff int) float64 { return math.Float64frombits(r.Uint64(bitOff)) }

// SetFloat64 writes an IEEE-754 double starting at bitOff.
func (r *BitRegion) SetFloat64(bitOff int, v float64) { r.SetUint64(bitOff, math.Float64bits(v)) }

// String reads byteCount bytes starting at bit bitOff and decodes them as
// device text. The window is clamped to the byte plane.
func (r *BitRegion) String(bitOff, byteCount int) (string, error) {
	if r.closed.Load() {
		return "", types.ErrClosed
	}
	if byteCount <= 0 {
		return "", nil
	}
	return wordorder.DecodeString(r.Bits(bitOff, byteCount*8), r.bo)
}

// BitString is an alias for String, for symmetry with ByteString.
func (r *BitRegion) BitString(bitOff, byteCount int) (string, error) {
	return r.String(bitOff, byteCount)
}

// SetString encodes s as device text and writes it starting at bit bitOff.
func (r *BitRegion) SetString(bitOff int, s string) {
	b := wordorder.EncodeString(s, r.bo)
	r.SetBits(bitOff, len(b)*8, b)
}

// SetBitString is an alias for SetString.
func (r *BitRegion) SetBitString(bitOff int, s string) { r.SetString(bitOff, s) }

// At reads the bit at index i, reporting an error for indexes outside
// [0, Count()). This is the strict counterpart of Bit.
func (r *BitRegion) At(i int) (bool, error) {
	if r.closed.Load() {
		return false, types.ErrClosed
	}
	if i < 0 || i >= r.count {
		return false, fmt.Errorf("device: %s bit %d out of range [0, %d): %w",
			r.id, i, r.count, types.ErrIndexOutOfRange)
	}
	return r.Bit(i), nil
}

// SetAt writes the bit at index i, reporting an error for indexes outside
// [0, Count()). This is the strict counterpart of SetBit.
func (r *BitRegion) SetAt(i int, v bool) error {
	if r.closed.Load() {
		return types.ErrClosed
	}
	if i < 0 || i >= r.count {
		return fmt.Errorf("device: %s bit %d out of range [0, %d): %w",
			r.id, i, r.count, types.ErrIndexOutOfRange)
	}
	r.SetBit(i, v)
	return nil
}
