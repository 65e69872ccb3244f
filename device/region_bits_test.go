//go:build unix

package device

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mbkit/mbshm/pkg/types"
)

// --- helpers ---

func newBitFixture(t *testing.T, bo types.ByteOrder, ro types.RegisterOrder) *BitRegion {
	t.Helper()
	d, _ := newTestDevice(t, "bits", Layout{Coils: 64, ByteOrder: bo, RegisterOrder: ro})
	return d.Coils()
}

// --- single bits ---

func TestBitSetBit(t *testing.T) {
	r := newBitFixture(t, types.LittleEndian, types.R0R1R2R3)

	require.False(t, r.Bit(3))
	r.SetBit(3, true)
	require.True(t, r.Bit(3))
	require.Equal(t, []byte{0x08}, r.Bytes(0, 1))
	require.Equal(t, []byte{0x08}, r.MaskBytes(0, 1), "mask tracks the single bit")
	require.Equal(t, uint32(1), r.ChangeCounter())
	off, n := r.DirtyRange()
	require.Zero(t, off)
	require.Equal(t, uint32(1), n)

	r.SetBit(3, false)
	require.False(t, r.Bit(3))
	require.Equal(t, []byte{0x08}, r.MaskBytes(0, 1), "clearing keeps the mask bit")
	require.Equal(t, uint32(2), r.ChangeCounter())

	require.False(t, r.Bit(-1))
	require.False(t, r.Bit(64))
	r.SetBit(64, true)
	r.SetBit(-1, true)
	require.Equal(t, uint32(2), r.ChangeCounter(), "out-of-plane bits are dropped")
}

func TestBitAtSetAt(t *testing.T) {
	r := newBitFixture(t, types.LittleEndian, types.R0R1R2R3)

	require.NoError(t, r.SetAt(63, true))
	v, err := r.At(63)
	require.NoError(t, err)
	require.True(t, v)

	_, err = r.At(64)
	require.ErrorIs(t, err, types.ErrIndexOutOfRange)
	_, err = r.At(-1)
	require.ErrorIs(t, err, types.ErrIndexOutOfRange)
	require.ErrorIs(t, r.SetAt(64, true), types.ErrIndexOutOfRange)
}

// --- value windows ---

func TestBitUnalignedWindow(t *testing.T) {
	r := newBitFixture(t, types.LittleEndian, types.R0R1R2R3)

	r.SetUint16(4, 0xABCD)
	require.Equal(t, uint16(0xABCD), r.Uint16(4))
	// 0xABCD shifted four bits into the plane
	require.Equal(t, []byte{0xD0, 0xBC, 0x0A}, r.Bytes(0, 3))
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF}, r.MaskBytes(0, 3), "covering bytes are marked written")
	off, n := r.DirtyRange()
	require.Zero(t, off)
	require.Equal(t, uint32(3), n)
}

func TestBitWindowPreservesNeighbors(t *testing.T) {
	r := newBitFixture(t, types.LittleEndian, types.R0R1R2R3)

	r.SetUint8(0, 0x0F)
	r.SetUint16(4, 0xABCD)
	require.Equal(t, []byte{0xDF, 0xBC, 0x0A}, r.Bytes(0, 3), "bits below the window survive")
	require.Equal(t, uint8(0x0F), r.Uint8(0)&0x0F)
	require.Equal(t, uint16(0xABCD), r.Uint16(4))
}

func TestBitWindowClampsToCount(t *testing.T) {
	r := newBitFixture(t, types.LittleEndian, types.R0R1R2R3)

	r.SetUint16(48, 0x1234) // last 16-bit window that fits in 64 bits
	require.Equal(t, uint16(0x1234), r.Uint16(48))

	require.Zero(t, r.Uint16(49), "window past bit 64 reads zero")
	before := r.ChangeCounter()
	r.SetUint16(49, 1)
	require.Equal(t, before, r.ChangeCounter(), "window past bit 64 is dropped")

	require.Zero(t, r.Uint8(57))
	require.Zero(t, r.Uint32(33))
	require.Zero(t, r.Uint64(1))
	r.SetUint64(1, 1)
	require.Equal(t, before, r.ChangeCounter())
}

func TestBitTypedValues(t *testing.T) {
	r := newBitFixture(t, types.LittleEndian, types.R0R1R2R3)

	r.SetUint8(8, 0x5A)
	require.Equal(t, uint8(0x5A), r.Uint8(8))
	r.SetInt8(8, -3)
	require.Equal(t, int8(-3), r.Int8(8))

	r.SetInt16(16, -2)
	require.Equal(t, int16(-2), r.Int16(16))

	r.SetUint32(32, 0xDEADBEEF)
	require.Equal(t, uint32(0xDEADBEEF), r.Uint32(32))
	require.Equal(t, int32(-559038737), r.Int32(32))

	r.SetUint64(0, 0x0102030405060708)
	require.Equal(t, uint64(0x0102030405060708), r.Uint64(0))

	r.SetFloat32(8, 2.5)
	require.Equal(t, float32(2.5), r.Float32(8))
	r.SetFloat64(0, -1.5)
	require.Equal(t, -1.5, r.Float64(0))
}

func TestBitValueHonorsDeviceOrders(t *testing.T) {
	r := newBitFixture(t, types.BigEndian, types.R3R2R1R0)

	r.SetUint32(0, 0x12345678)
	require.Equal(t, uint32(0x12345678), r.Uint32(0))
	require.Equal(t, []byte{0x12, 0x34, 0x56, 0x78}, r.Bytes(0, 4))

	r.SetUint16(32, 0xBEEF)
	require.Equal(t, uint16(0xBEEF), r.Uint16(32))
	require.Equal(t, []byte{0xBE, 0xEF}, r.Bytes(4, 2))
}

// --- raw bit windows ---

func TestBitsTailClamp(t *testing.T) {
	r := newBitFixture(t, types.LittleEndian, types.R0R1R2R3)
	r.SetBytes(7, []byte{0xA5})

	// only four bits remain past bit 60; the rest of the request clamps away
	require.Equal(t, []byte{0x0A}, r.Bits(60, 8))
	require.Nil(t, r.Bits(64, 8))
	require.Nil(t, r.Bits(-1, 8))
	require.Nil(t, r.Bits(0, 0))
}

func TestSetBitsMergesWindow(t *testing.T) {
	r := newBitFixture(t, types.LittleEndian, types.R0R1R2R3)

	r.SetBits(0, 8, []byte{0xFF})
	r.SetBits(2, 3, []byte{0x00}) // clear bits 2..4
	require.Equal(t, []byte{0xE3}, r.Bytes(0, 1))
	require.Equal(t, []byte{0x03}, r.Bits(0, 2))
	require.Equal(t, []byte{0x07}, r.Bits(5, 3))
}

// --- strings ---

func TestBitStrings(t *testing.T) {
	r := newBitFixture(t, types.LittleEndian, types.R0R1R2R3)
	r.SetString(8, "OK")
	require.Equal(t, []byte("OK"), r.Bytes(1, 2))
	s, err := r.String(8, 2)
	require.NoError(t, err)
	require.Equal(t, "OK", s)

	rb := newBitFixture(t, types.BigEndian, types.R0R1R2R3)
	rb.SetString(0, "HI")
	require.Equal(t, []byte("IH"), rb.Bytes(0, 2))
	s, err = rb.BitString(0, 2)
	require.NoError(t, err)
	require.Equal(t, "HI", s)

	s, err = r.String(8, 0)
	require.NoError(t, err)
	require.Empty(t, s)
}
