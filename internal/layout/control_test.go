package layout

import (
	"errors"
	"testing"
)

func buildControl(t *testing.T, p ControlParams) []byte {
	t.Helper()
	b := make([]byte, ControlSegmentSize(p))
	EncodeControl(b, p)
	return b
}

func TestControlBlockRoundTrip(t *testing.T) {
	p := ControlParams{
		Flags:              3,
		Cycle:              17,
		Count0x:            64,
		Count1x:            32,
		Count3x:            16,
		Count4x:            8,
		ExceptionStatusRef: 400001,
		ByteOrderCode:      1,
		RegisterOrderCode:  -1,
		DeviceName:         "pump-a",
	}
	b := buildControl(t, p)

	cb, err := NewControlBlock(b)
	if err != nil {
		t.Fatalf("NewControlBlock: %v", err)
	}
	if cb.Flags() != 3 || cb.Cycle() != 17 {
		t.Fatalf("flags/cycle = %d/%d", cb.Flags(), cb.Cycle())
	}
	if cb.Count0x() != 64 || cb.Count1x() != 32 || cb.Count3x() != 16 || cb.Count4x() != 8 {
		t.Fatalf("counts = %d/%d/%d/%d", cb.Count0x(), cb.Count1x(), cb.Count3x(), cb.Count4x())
	}
	if cb.ExceptionStatusRef() != 400001 {
		t.Fatalf("exception ref = %d", cb.ExceptionStatusRef())
	}
	if cb.ByteOrderCode() != 1 || cb.RegisterOrderCode() != -1 {
		t.Fatalf("orders = %d/%d", cb.ByteOrderCode(), cb.RegisterOrderCode())
	}
	if cb.DeviceNameOffset() != 0 || cb.StringTableSize() != 7 {
		t.Fatalf("string table = +%d size %d", cb.DeviceNameOffset(), cb.StringTableSize())
	}
	name, err := cb.DeviceName()
	if err != nil || name != "pump-a" {
		t.Fatalf("DeviceName = %q, %v", name, err)
	}
}

func TestControlBlockShort(t *testing.T) {
	_, err := NewControlBlock(make([]byte, ControlBlockSize-1))
	if !errors.Is(err, ErrShortControl) {
		t.Fatalf("err = %v, want ErrShortControl", err)
	}
	if _, err := NewControlBlock(nil); !errors.Is(err, ErrShortControl) {
		t.Fatalf("nil err = %v, want ErrShortControl", err)
	}
}

func TestDeviceNameBounds(t *testing.T) {
	b := buildControl(t, ControlParams{DeviceName: "valve"})

	// name offset beyond the declared table
	PutU32(b, OffDeviceName, 100)
	cb, _ := NewControlBlock(b)
	if name, err := cb.DeviceName(); err != nil || name != "" {
		t.Fatalf("out-of-table name = %q, %v", name, err)
	}

	// declared table size beyond the mapping clamps to mapped bytes
	PutU32(b, OffDeviceName, 0)
	PutU32(b, OffStringTableSize, 4096)
	if name, err := cb.DeviceName(); err != nil || name != "valve" {
		t.Fatalf("oversized-table name = %q, %v", name, err)
	}
}

func TestDeviceNameWithoutTerminator(t *testing.T) {
	// table exactly as long as the name, no NUL inside it
	b := buildControl(t, ControlParams{DeviceName: "tank"})
	PutU32(b, OffStringTableSize, 4)
	cb, _ := NewControlBlock(b)
	if name, err := cb.DeviceName(); err != nil || name != "tank" {
		t.Fatalf("unterminated name = %q, %v", name, err)
	}
}

func TestDeviceNameInvalidUTF8(t *testing.T) {
	b := buildControl(t, ControlParams{DeviceName: "abc"})
	b[StringTableOff] = 0xFF
	b[StringTableOff+1] = 0xFE
	cb, _ := NewControlBlock(b)
	if _, err := cb.DeviceName(); !errors.Is(err, ErrBadString) {
		t.Fatalf("err = %v, want ErrBadString", err)
	}
}
