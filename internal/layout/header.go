package layout

import "github.com/mbkit/mbshm/internal/buf"

// RegionHeader is a zero-copy view over the 16-byte header that starts a
// memory region segment. Reads clamp on short segments; writes are dropped
// on short segments (a region that short holds no data either).
type RegionHeader struct {
	b []byte
}

// NewRegionHeader returns a header view over the start of a region segment.
func NewRegionHeader(b []byte) RegionHeader { return RegionHeader{b: b} }

func (h RegionHeader) ChangeCounter() uint32    { return buf.U32LE(h.b, OffChangeCounter) }
func (h RegionHeader) ChangeByteOffset() uint32 { return buf.U32LE(h.b, OffChangeByteOffset) }
func (h RegionHeader) ChangeByteCount() uint32  { return buf.U32LE(h.b, OffChangeByteCount) }

// RecordWrite merges the data-plane write [off, off+n) into the pending
// change range and advances the change counter. The range only grows until
// the consumer resets it; the merge keeps it covering every recorded write.
func (h RegionHeader) RecordWrite(off, n int) {
	if off < 0 || n <= 0 || !buf.Has(h.b, 0, RegionHeaderSize) {
		return
	}
	right := uint32(off + n)
	co := h.ChangeByteOffset()
	cc := h.ChangeByteCount()
	if co > uint32(off) {
		if cc == 0 {
			cc = right - uint32(off)
		} else {
			cc += co - uint32(off)
		}
		co = uint32(off)
	}
	if co+cc < right {
		cc = right - co
	}
	PutU32(h.b, OffChangeByteOffset, co)
	PutU32(h.b, OffChangeByteCount, cc)
	PutU32(h.b, OffChangeCounter, h.ChangeCounter()+1)
}

// Reset clears the pending change range. The counter keeps its value;
// consumers detect new writes by counter advance, not by a zero range.
func (h RegionHeader) Reset() {
	if !buf.Has(h.b, 0, RegionHeaderSize) {
		return
	}
	PutU32(h.b, OffChangeByteOffset, 0)
	PutU32(h.b, OffChangeByteCount, 0)
}
