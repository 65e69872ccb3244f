package types

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Byte order
// -----------------------------------------------------------------------------

// ByteOrder is the per-register byte order of a device. The numeric values
// match the codes the server stores in the device control block.
type ByteOrder int32

const (
	ByteOrderDefault ByteOrder = -1
	LittleEndian     ByteOrder = 0
	BigEndian        ByteOrder = 1
)

// Resolve maps Default (and any unknown code) to the order the server
// assumes, LittleEndian. Regions only ever operate on resolved orders.
func (o ByteOrder) Resolve() ByteOrder {
	if o == BigEndian {
		return BigEndian
	}
	return LittleEndian
}

// String implements the Stringer interface for ByteOrder.
func (o ByteOrder) String() string {
	switch o {
	case ByteOrderDefault:
		return "default"
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return fmt.Sprintf("UNKNOWN_BYTEORDER_%d", int32(o))
	}
}

// ParseByteOrder maps a configuration name to a byte order.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return ByteOrderDefault, nil
	case "little", "littleendian":
		return LittleEndian, nil
	case "big", "bigendian":
		return BigEndian, nil
	}
	return ByteOrderDefault, &Error{Kind: ErrKindConfig, Msg: fmt.Sprintf("unknown byte order %q", s)}
}

// MarshalYAML renders the order by name.
func (o ByteOrder) MarshalYAML() (interface{}, error) { return o.String(), nil }

// UnmarshalYAML accepts either a name ("big") or a raw control-block code (1).
func (o *ByteOrder) UnmarshalYAML(value *yaml.Node) error {
	var n int32
	if err := value.Decode(&n); err == nil {
		if n < -1 || n > 1 {
			return &Error{Kind: ErrKindConfig, Msg: fmt.Sprintf("unknown byte order code %d", n)}
		}
		*o = ByteOrder(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return &Error{Kind: ErrKindConfig, Msg: "byte order must be a name or code", Err: err}
	}
	v, err := ParseByteOrder(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// -----------------------------------------------------------------------------
// Register order
// -----------------------------------------------------------------------------

// RegisterOrder is the register permutation a device applies to values wider
// than one register. Names describe where registers R0..R3 of a 64-bit value
// end up in storage; 32-bit values use the first two positions.
type RegisterOrder int32

const (
	RegisterOrderDefault RegisterOrder = -1
	R0R1R2R3             RegisterOrder = 0
	R3R2R1R0             RegisterOrder = 1
	R1R0R3R2             RegisterOrder = 2
	R2R3R0R1             RegisterOrder = 3
)

// Resolve maps Default (and any unknown code) to R0R1R2R3.
func (o RegisterOrder) Resolve() RegisterOrder {
	switch o {
	case R3R2R1R0, R1R0R3R2, R2R3R0R1:
		return o
	}
	return R0R1R2R3
}

// String implements the Stringer interface for RegisterOrder.
func (o RegisterOrder) String() string {
	switch o {
	case RegisterOrderDefault:
		return "default"
	case R0R1R2R3:
		return "r0r1r2r3"
	case R3R2R1R0:
		return "r3r2r1r0"
	case R1R0R3R2:
		return "r1r0r3r2"
	case R2R3R0R1:
		return "r2r3r0r1"
	default:
		return fmt.Sprintf("UNKNOWN_REGISTERORDER_%d", int32(o))
	}
}

// ParseRegisterOrder maps a configuration name to a register order.
func ParseRegisterOrder(s string) (RegisterOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return RegisterOrderDefault, nil
	case "r0r1r2r3":
		return R0R1R2R3, nil
	case "r3r2r1r0":
		return R3R2R1R0, nil
	case "r1r0r3r2":
		return R1R0R3R2, nil
	case "r2r3r0r1":
		return R2R3R0R1, nil
	}
	return RegisterOrderDefault, &Error{Kind: ErrKindConfig, Msg: fmt.Sprintf("unknown register order %q", s)}
}

// MarshalYAML renders the order by name.
func (o RegisterOrder) MarshalYAML() (interface{}, error) { return o.String(), nil }

// UnmarshalYAML accepts either a name ("r3r2r1r0") or a raw code (1).
func (o *RegisterOrder) UnmarshalYAML(value *yaml.Node) error {
	var n int32
	if err := value.Decode(&n); err == nil {
		if n < -1 || n > 3 {
			return &Error{Kind: ErrKindConfig, Msg: fmt.Sprintf("unknown register order code %d", n)}
		}
		*o = RegisterOrder(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return &Error{Kind: ErrKindConfig, Msg: "register order must be a name or code", Err: err}
	}
	v, err := ParseRegisterOrder(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}
