//go:build unix

package device

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mbkit/mbshm/pkg/types"
)

func TestSnapshotCapture(t *testing.T) {
	l := Layout{
		Name:          "snap",
		Coils:         16,
		Holdings:      8,
		ByteOrder:     types.BigEndian,
		RegisterOrder: types.R3R2R1R0,
	}
	d, _ := newTestDevice(t, "snapdev", l)
	d.Coils().SetBit(3, true)
	d.HoldingRegisters().SetUint32(0, 0x12345678)

	s, err := TakeSnapshot(d)
	require.NoError(t, err)
	require.Equal(t, "snapdev", s.Device)
	require.Equal(t, "snap", s.Name)
	require.Equal(t, types.BigEndian, s.ByteOrder)
	require.Equal(t, types.R3R2R1R0, s.RegisterOrder)
	require.False(t, s.TakenAt.IsZero())
	require.Len(t, s.Regions, 4)

	byMem := make(map[types.Mem]RegionSnapshot, len(s.Regions))
	for _, rs := range s.Regions {
		byMem[rs.Mem] = rs
	}

	co := byMem[types.Mem0x]
	require.Equal(t, 16, co.Count)
	require.Equal(t, uint32(1), co.Counter)
	require.Equal(t, []byte{0x08, 0x00}, co.Data)
	require.Equal(t, []byte{0x08, 0x00}, co.Mask)

	hr := byMem[types.Mem4x]
	require.Equal(t, 8, hr.Count)
	require.Equal(t,
		append([]byte{0x12, 0x34, 0x56, 0x78}, make([]byte, 12)...),
		hr.Data)
	require.Equal(t,
		append([]byte{0xFF, 0xFF, 0xFF, 0xFF}, make([]byte, 12)...),
		hr.Mask)

	require.Empty(t, byMem[types.Mem1x].Data)
	require.Empty(t, byMem[types.Mem3x].Data)
}

func TestSnapshotEncodeDecode(t *testing.T) {
	d, _ := newTestDevice(t, "codec", Layout{Coils: 8, Holdings: 4})
	d.HoldingRegisters().SetUint16(1, 0xBEEF)

	s, err := TakeSnapshot(d)
	require.NoError(t, err)

	b, err := s.Encode()
	require.NoError(t, err)
	b2, err := s.Encode()
	require.NoError(t, err)
	require.Equal(t, b, b2, "encoding must be deterministic")

	s2, err := DecodeSnapshot(b)
	require.NoError(t, err)
	require.True(t, s.TakenAt.Equal(s2.TakenAt))
	s.TakenAt, s2.TakenAt = time.Time{}, time.Time{}
	require.Equal(t, s, s2)
}

func TestSnapshotRestore(t *testing.T) {
	l := Layout{Coils: 16, Holdings: 8}
	src, _ := newTestDevice(t, "src", l)
	src.Coils().SetBit(3, true)
	src.HoldingRegisters().SetUint16(2, 0xBEEF)

	s, err := TakeSnapshot(src)
	require.NoError(t, err)

	dst, _ := newTestDevice(t, "dst", l)
	require.NoError(t, s.Restore(dst))

	require.True(t, dst.Coils().Bit(3))
	require.Equal(t, uint16(0xBEEF), dst.HoldingRegisters().Uint16(2))

	// restore goes through SetBytes, so tracking updates like any write
	require.Equal(t, uint32(1), dst.HoldingRegisters().ChangeCounter())
	off, n := dst.HoldingRegisters().DirtyRange()
	require.Zero(t, off)
	require.Equal(t, uint32(16), n)
	require.Equal(t, []byte{0xFF, 0xFF}, dst.Coils().MaskBytes(0, 2))
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	d, _ := newTestDevice(t, "file", Layout{Holdings: 4})
	d.HoldingRegisters().SetUint16(0, 7)

	s, err := TakeSnapshot(d)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dev.snap")
	require.NoError(t, s.WriteFile(path))

	s2, err := ReadSnapshotFile(path)
	require.NoError(t, err)
	require.Equal(t, s.Regions, s2.Regions)
	require.Equal(t, s.Device, s2.Device)
}

func TestDecodeSnapshotGarbage(t *testing.T) {
	_, err := DecodeSnapshot([]byte{0xFF, 0x00, 0x13})
	require.Error(t, err)
	var te *types.Error
	require.ErrorAs(t, err, &te)
	require.Equal(t, types.ErrKindDecode, te.Kind)
}

func TestSnapshotClosedDevice(t *testing.T) {
	d, _ := newTestDevice(t, "snapclosed", Layout{Holdings: 2})
	s, err := TakeSnapshot(d)
	require.NoError(t, err)

	require.NoError(t, d.Close())
	_, err = TakeSnapshot(d)
	require.ErrorIs(t, err, types.ErrClosed)
	require.ErrorIs(t, s.Restore(d), types.ErrClosed)
}
