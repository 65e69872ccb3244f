package buf

import "testing"

func TestU32LE(t *testing.T) {
	b := []byte{0x78, 0x56, 0x34, 0x12, 0xFF}
	if got := U32LE(b, 0); got != 0x12345678 {
		t.Fatalf("U32LE = 0x%x, want 0x12345678", got)
	}
	if got := U32LE(b, 1); got != 0xFF123456 {
		t.Fatalf("U32LE off 1 = 0x%x, want 0xff123456", got)
	}
	if U32LE(b, 2) != 0 {
		t.Fatal("short read should return 0")
	}
	if U32LE(b, -1) != 0 {
		t.Fatal("negative offset should return 0")
	}
	if U32LE(nil, 0) != 0 {
		t.Fatal("nil buffer should return 0")
	}
}

func TestI32LE(t *testing.T) {
	b := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	if got := I32LE(b, 0); got != -1 {
		t.Fatalf("I32LE = %d, want -1", got)
	}
	if I32LE(b, 1) != 0 {
		t.Fatal("short read should return 0")
	}
}
