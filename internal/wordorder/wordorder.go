// Package wordorder converts multi-register values and strings between the
// canonical little-endian form this library exposes and the storage form a
// device is configured with (byte order within each 16-bit register, plus a
// register permutation for 32- and 64-bit values).
package wordorder

import "github.com/mbkit/mbshm/pkg/types"

// Rearrange converts b between canonical form and the device's storage form,
// in place. len(b) must be 2, 4 or 8; other lengths are left untouched.
//
// The byte swap within a register and every register permutation are
// involutions, so the same call performs both directions.
func Rearrange(b []byte, bo types.ByteOrder, ro types.RegisterOrder) {
	switch len(b) {
	case 2, 4, 8:
	default:
		return
	}
	if bo == types.BigEndian {
		for i := 0; i+1 < len(b); i += 2 {
			b[i], b[i+1] = b[i+1], b[i]
		}
	}
	switch len(b) {
	case 4:
		// With a single register pair, R3R2R1R0 and R1R0R3R2 both swap
		// the two registers. R2R3R0R1 permutes 32-bit halves of a 64-bit
		// value and is the identity at this width.
		if ro == types.R3R2R1R0 || ro == types.R1R0R3R2 {
			b[0], b[1], b[2], b[3] = b[2], b[3], b[0], b[1]
		}
	case 8:
		switch ro {
		case types.R3R2R1R0:
			b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7] =
				b[6], b[7], b[4], b[5], b[2], b[3], b[0], b[1]
		case types.R1R0R3R2:
			b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7] =
				b[2], b[3], b[0], b[1], b[6], b[7], b[4], b[5]
		case types.R2R3R0R1:
			b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7] =
				b[4], b[5], b[6], b[7], b[0], b[1], b[2], b[3]
		}
	}
}
