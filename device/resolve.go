package device

import "github.com/mbkit/mbshm/pkg/types"

// Resolve maps a structured address onto its region and the offset in the
// region's native unit. ok is false when the address names no attached area
// or carries a negative offset; callers that want the clamp policy instead
// of a boolean can use the typed accessors below.
func (d *Device) Resolve(a types.Address) (Memory, int, bool) {
	if a.Offset < 0 {
		return nil, 0, false
	}
	m, ok := d.Mem(a.Kind)
	if !ok || m == nil {
		return nil, 0, false
	}
	return m, a.Offset, true
}

// Addressed accessors. Each normalizes through Resolve and follows the
// clamp policy: unmapped addresses read zero values and drop writes.

// Int8 returns the int8 at a.
func (d *Device) Int8(a types.Address) int8 {
	if m, off, ok := d.Resolve(a); ok {
		return m.Int8(off)
	}
	return 0
}

// SetInt8 writes v at a.
func (d *Device) SetInt8(a types.Address, v int8) {
	if m, off, ok := d.Resolve(a); ok {
		m.SetInt8(off, v)
	}
}

// Uint8 returns the uint8 at a.
func (d *Device) Uint8(a types.Address) uint8 {
	if m, off, ok := d.Resolve(a); ok {
		return m.Uint8(off)
	}
	return 0
}

// SetUint8 writes v at a.
func (d *Device) SetUint8(a types.Address, v uint8) {
	if m, off, ok := d.Resolve(a); ok {
		m.SetUint8(off, v)
	}
}

// Int16 returns the int16 at a.
func (d *Device) Int16(a types.Address) int16 {
	if m, off, ok := d.Resolve(a); ok {
		return m.Int16(off)
	}
	return 0
}

// SetInt16 writes v at a.
func (d *Device) SetInt16(a types.Address, v int16) {
	if m, off, ok := d.Resolve(a); ok {
		m.SetInt16(off, v)
	}
}

// Uint16 returns the uint16 at a.
func (d *Device) Uint16(a types.Address) uint16 {
	if m, off, ok := d.Resolve(a); ok {
		return m.Uint16(off)
	}
	return 0
}

// SetUint16 writes v at a.
func (d *Device) SetUint16(a types.Address, v uint16) {
	if m, off, ok := d.Resolve(a); ok {
		m.SetUint16(off, v)
	}
}

// Int32 returns the int32 at a.
func (d *Device) Int32(a types.Address) int32 {
	if m, off, ok := d.Resolve(a); ok {
		return m.Int32(off)
	}
	return 0
}

// SetInt32 writes v at a.
func (d *Device) SetInt32(a types.Address, v int32) {
	if m, off, ok := d.Resolve(a); ok {
		m.SetInt32(off, v)
	}
}

// Uint32 returns the uint32 at a.
func (d *Device) Uint32(a types.Address) uint32 {
	if m, off, ok := d.Resolve(a); ok {
		return m.Uint32(off)
	}
	return 0
}

// SetUint32 writes v at a.
func (d *Device) SetUint32(a types.Address, v uint32) {
	if m, off, ok := d.Resolve(a); ok {
		m.SetUint32(off, v)
	}
}

// Int64 returns the int64 at a.
func (d *Device) Int64(a types.Address) int64 {
	if m, off, ok := d.Resolve(a); ok {
		return m.Int64(off)
	}
	return 0
}

// SetInt64 writes v at a.
func (d *Device) SetInt64(a types.Address, v int64) {
	if m, off, ok := d.Resolve(a); ok {
		m.SetInt64(off, v)
	}
}

// Uint64 returns the uint64 at a.
func (d *Device) Uint64(a types.Address) uint64 {
	if m, off, ok := d.Resolve(a); ok {
		return m.Uint64(off)
	}
	return 0
}

// SetUint64 writes v at a.
func (d *Device) SetUint64(a types.Address, v uint64) {
	if m, off, ok := d.Resolve(a); ok {
		m.SetUint64(off, v)
	}
}

// Float32 returns the float32 at a.
func (d *Device) Float32(a types.Address) float32 {
	if m, off, ok := d.Resolve(a); ok {
		return m.Float32(off)
	}
	return 0
}

// SetFloat32 writes v at a.
func (d *Device) SetFloat32(a types.Address, v float32) {
	if m, off, ok := d.Resolve(a); ok {
		m.SetFloat32(off, v)
	}
}

// Float64 returns the float64 at a.
func (d *Device) Float64(a types.Address) float64 {
	if m, off, ok := d.Resolve(a); ok {
		return m.Float64(off)
	}
	return 0
}

// SetFloat64 writes v at a.
func (d *Device) SetFloat64(a types.Address, v float64) {
	if m, off, ok := d.Resolve(a); ok {
		m.SetFloat64(off, v)
	}
}

// String returns the byteCount-byte device string at a, decoded per the
// device byte order. Unmapped addresses read "".
func (d *Device) String(a types.Address, byteCount int) (string, error) {
	if m, off, ok := d.Resolve(a); ok {
		return m.String(off, byteCount)
	}
	return "", nil
}

// SetString writes s at a, encoded per the device byte order.
func (d *Device) SetString(a types.Address, s string) {
	if m, off, ok := d.Resolve(a); ok {
		m.SetString(off, s)
	}
}
