// Package buf contains clamped decoding and bounds helpers for shared
// byte planes whose sizes are not under this process's control.
package buf

import "encoding/binary"

// U32LE reads a little-endian uint32 at off in b. Returns 0 when the read
// would fall outside b.
func U32LE(b []byte, off int) uint32 {
	if off < 0 || off > len(b)-4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b[off:])
}

// I32LE reads a little-endian int32 at off in b. Returns 0 when the read
// would fall outside b.
func I32LE(b []byte, off int) int32 {
	return int32(U32LE(b, off))
}
