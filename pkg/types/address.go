package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Address identifies a single cell in one of a device's memory areas.
// Offset counts cells in the area's native unit: bits for 0x/1x,
// registers for 3x/4x.
type Address struct {
	Kind   Mem
	Offset int
}

// NewAddress builds an address from an area and a zero-based cell offset.
func NewAddress(kind Mem, offset int) Address {
	return Address{Kind: kind, Offset: offset}
}

// AddressFromNumber decodes the conventional decimal form: the leading digit
// selects the area (0, 1, 3 or 4) and the remainder is the one-based cell
// number. 1 is coil 0, 100001 is discrete input 0, 300001 is input register 0
// and 400001 is holding register 0. Numbers that select no area decode to an
// invalid address.
func AddressFromNumber(n int) Address {
	if n <= 0 {
		return Address{Kind: MemInvalid, Offset: -1}
	}
	kind := Mem(n / 100000)
	rem := n % 100000
	if !kind.Valid() || rem == 0 {
		return Address{Kind: MemInvalid, Offset: -1}
	}
	return Address{Kind: kind, Offset: rem - 1}
}

// ParseAddress decodes the decimal text form accepted by AddressFromNumber.
func ParseAddress(s string) (Address, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Address{Kind: MemInvalid, Offset: -1}, fmt.Errorf("types: parse address %q: %w", s, ErrBadAddress)
	}
	a := AddressFromNumber(n)
	if !a.Valid() {
		return a, fmt.Errorf("types: parse address %q: %w", s, ErrBadAddress)
	}
	return a, nil
}

// Valid reports whether the address names a cell in a known area.
func (a Address) Valid() bool {
	return a.Kind.Valid() && a.Offset >= 0
}

// Number renders the decimal convention; invalid addresses render as 0.
func (a Address) Number() int {
	if !a.Valid() {
		return 0
	}
	return int(a.Kind)*100000 + a.Offset + 1
}

// String implements the Stringer interface for Address.
func (a Address) String() string {
	if !a.Valid() {
		return "<invalid address>"
	}
	return fmt.Sprintf("%06d", a.Number())
}
