package layout

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/mbkit/mbshm/internal/buf"
)

// ControlBlock is a zero-copy view over a device's control segment. The
// constructor validates the fixed part once; accessors read at constant
// offsets.
type ControlBlock struct {
	b []byte
}

// NewControlBlock validates that b holds a complete control block and
// returns a view over it.
func NewControlBlock(b []byte) (ControlBlock, error) {
	if !buf.Has(b, 0, ControlBlockSize) {
		return ControlBlock{}, fmt.Errorf("layout: control block is %d bytes, need %d: %w",
			len(b), ControlBlockSize, ErrShortControl)
	}
	return ControlBlock{b: b}, nil
}

func (c ControlBlock) Flags() uint32              { return ReadU32(c.b, OffFlags) }
func (c ControlBlock) Cycle() uint32              { return ReadU32(c.b, OffCycle) }
func (c ControlBlock) Count0x() uint32            { return ReadU32(c.b, OffCount0x) }
func (c ControlBlock) Count1x() uint32            { return ReadU32(c.b, OffCount1x) }
func (c ControlBlock) Count3x() uint32            { return ReadU32(c.b, OffCount3x) }
func (c ControlBlock) Count4x() uint32            { return ReadU32(c.b, OffCount4x) }
func (c ControlBlock) ExceptionStatusRef() uint32 { return ReadU32(c.b, OffExceptionStatusRef) }
func (c ControlBlock) ByteOrderCode() int32       { return ReadI32(c.b, OffByteOrder) }
func (c ControlBlock) RegisterOrderCode() int32   { return ReadI32(c.b, OffRegisterOrder) }
func (c ControlBlock) DeviceNameOffset() uint32   { return ReadU32(c.b, OffDeviceName) }
func (c ControlBlock) StringTableSize() uint32    { return ReadU32(c.b, OffStringTableSize) }

// DeviceName reads the NUL-terminated device name from the string table.
// Reads are bounded by the declared table size and by the mapped segment;
// a name offset outside the table yields an empty name.
func (c ControlBlock) DeviceName() (string, error) {
	table, ok := buf.Slice(c.b, StringTableOff, int(c.StringTableSize()))
	if !ok {
		// declared size exceeds the mapping; use what is mapped
		table = c.b[StringTableOff:]
	}
	sto := int(c.DeviceNameOffset())
	if sto < 0 || sto >= len(table) {
		return "", nil
	}
	raw := table[sto:]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("layout: device name at +%d: %w", sto, ErrBadString)
	}
	return string(raw), nil
}

// ControlParams carries the fields written to a freshly created control
// segment. The device name is placed at offset 0 of the string table.
type ControlParams struct {
	Flags              uint32
	Cycle              uint32
	Count0x            uint32
	Count1x            uint32
	Count3x            uint32
	Count4x            uint32
	ExceptionStatusRef uint32
	ByteOrderCode      int32
	RegisterOrderCode  int32
	DeviceName         string
}

// ControlSegmentSize returns the byte size of a control segment holding p.
func ControlSegmentSize(p ControlParams) int {
	return ControlBlockSize + len(p.DeviceName) + 1
}

// EncodeControl writes the control block and string table for p into dst,
// which must hold at least ControlSegmentSize(p) bytes.
func EncodeControl(dst []byte, p ControlParams) {
	PutU32(dst, OffFlags, p.Flags)
	PutU32(dst, OffCycle, p.Cycle)
	PutU32(dst, OffCount0x, p.Count0x)
	PutU32(dst, OffCount1x, p.Count1x)
	PutU32(dst, OffCount3x, p.Count3x)
	PutU32(dst, OffCount4x, p.Count4x)
	PutU32(dst, OffExceptionStatusRef, p.ExceptionStatusRef)
	PutI32(dst, OffByteOrder, p.ByteOrderCode)
	PutI32(dst, OffRegisterOrder, p.RegisterOrderCode)
	PutU32(dst, OffDeviceName, 0)
	PutU32(dst, OffStringTableSize, uint32(len(p.DeviceName)+1))
	copy(dst[StringTableOff:], p.DeviceName)
	dst[StringTableOff+len(p.DeviceName)] = 0
}
