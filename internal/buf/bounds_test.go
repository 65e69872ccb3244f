package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestSpan(t *testing.T) {
	cases := []struct {
		size, off, n         int
		wantStart, wantCount int
	}{
		{10, 0, 10, 0, 10},
		{10, 3, 4, 3, 4},
		{10, 8, 5, 8, 2},
		{10, 9, 1, 9, 1},
		{10, 10, 1, 0, 0},
		{10, 300, 4, 0, 0},
		{10, -1, 4, 0, 0},
		{10, 2, 0, 0, 0},
		{10, 2, -3, 0, 0},
		{0, 0, 1, 0, 0},
		{10, 2, math.MaxInt, 2, 8},
	}
	for _, tc := range cases {
		start, count := Span(tc.size, tc.off, tc.n)
		if start != tc.wantStart || count != tc.wantCount {
			t.Fatalf("Span(%d,%d,%d) = %d,%d want %d,%d",
				tc.size, tc.off, tc.n, start, count, tc.wantStart, tc.wantCount)
		}
	}
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if _, ok := Slice(data, -1, 2); ok {
		t.Fatalf("Slice should fail for negative offset")
	}
	if _, ok := Slice(data, 2, math.MaxInt); ok {
		t.Fatalf("Slice should fail on overflow")
	}
	if got, ok := Slice(data, 5, 0); !ok || len(got) != 0 {
		t.Fatalf("Slice at end with zero length should be ok, got %v, %v", got, ok)
	}
	if Has(data, 2, 4) {
		t.Fatalf("Has should be false for out-of-bounds range")
	}
	if !Has(data, 0, 5) {
		t.Fatalf("Has should be true for full range")
	}
}
