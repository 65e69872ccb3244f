// Package bitfield packs and unpacks LSB-first bit windows within the byte
// planes of bit regions. Bit i of a plane lives in byte i/8 at position i%8,
// so a window rarely starts on a byte boundary; these helpers realign it.
package bitfield

import "github.com/mbkit/mbshm/internal/buf"

// Span returns the plane byte range covering bitCount bits starting at
// bitOff. count is 0 when the request is empty, negative or overflows.
func Span(bitOff, bitCount int) (start, count int) {
	if bitOff < 0 || bitCount <= 0 {
		return 0, 0
	}
	end, ok := buf.AddOverflowSafe(bitOff, bitCount)
	if !ok {
		return 0, 0
	}
	start = bitOff / 8
	return start, (end-1)/8 - start + 1
}

// Unpack extracts bitCount bits of cov starting at bit position shift of
// cov[0], packed LSB first. Unused high bits of the final byte are zero and
// bits beyond len(cov) read as zero. shift must be in [0, 8).
func Unpack(cov []byte, shift, bitCount int) []byte {
	if bitCount <= 0 {
		return nil
	}
	out := make([]byte, (bitCount+7)/8)
	for i := range out {
		var b byte
		if i < len(cov) {
			b = cov[i] >> shift
		}
		if i+1 < len(cov) {
			b |= cov[i+1] << (8 - shift)
		}
		out[i] = b
	}
	if rem := bitCount % 8; rem != 0 {
		out[len(out)-1] &= 1<<rem - 1
	}
	return out
}

// Pack merges bitCount bits of val into cov at bit position shift of cov[0].
// Bits of cov outside the window keep their value; bits beyond len(cov) are
// dropped. shift must be in [0, 8).
func Pack(cov []byte, shift, bitCount int, val []byte) {
	for i := 0; i < len(val) && i < len(cov) && bitCount > 0; i++ {
		w := bitCount
		if w > 8 {
			w = 8
		}
		// 16-bit window: a byte of val straddles cov[i] and cov[i+1]
		// whenever shift+w exceeds a byte.
		win := uint16(cov[i])
		if i+1 < len(cov) {
			win |= uint16(cov[i+1]) << 8
		}
		mask := uint16(1<<w-1) << shift
		win = win&^mask | (uint16(val[i])&(1<<w-1))<<shift
		cov[i] = byte(win)
		if shift+w > 8 && i+1 < len(cov) {
			cov[i+1] = byte(win >> 8)
		}
		bitCount -= w
	}
}
