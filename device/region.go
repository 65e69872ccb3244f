package device

import (
	"sync/atomic"

	"github.com/valyala/bytebufferpool"

	"github.com/mbkit/mbshm/internal/bitfield"
	"github.com/mbkit/mbshm/internal/buf"
	"github.com/mbkit/mbshm/internal/layout"
	"github.com/mbkit/mbshm/internal/shm"
	"github.com/mbkit/mbshm/internal/wordorder"
	"github.com/mbkit/mbshm/pkg/types"
)

// region is the shared core of BitRegion and WordRegion: one mapped segment
// holding a change-tracking header, a data plane and a written-mask plane.
// Byte-plane operations clamp to the plane and never error; every raw access
// happens under the segment lock.
type region struct {
	seg    *shm.Segment
	id     types.Mem
	bo     types.ByteOrder     // resolved
	ro     types.RegisterOrder // resolved
	count  int                 // addressable units: bits (0x/1x) or registers (3x/4x)
	cbytes int                 // data plane length; mask plane is the same size
	closed *atomic.Bool        // owning device's closed flag
}

// newRegion builds a region view over seg. count is the declared unit count
// from the control block; both count and cbytes shrink to what the mapped
// segment can actually hold. bo and ro must already be resolved.
func newRegion(seg *shm.Segment, id types.Mem, count int, bo types.ByteOrder, ro types.RegisterOrder, closed *atomic.Bool) region {
	if count < 0 {
		count = 0
	}
	cbytes := count * 2
	if id.Bits() {
		cbytes = (count + 7) / 8
	}
	usable := (seg.Size() - layout.RegionHeaderSize) / 2
	if usable < 0 {
		usable = 0
	}
	if cbytes > usable {
		cbytes = usable
	}
	if id.Bits() {
		if c := cbytes * 8; count > c {
			count = c
		}
	} else if c := cbytes / 2; count > c {
		count = c
	}
	return region{seg: seg, id: id, bo: bo, ro: ro, count: count, cbytes: cbytes, closed: closed}
}

// ID returns the region kind.
func (r *region) ID() types.Mem { return r.id }

// ByteOrder returns the resolved byte order shared by the device's regions.
func (r *region) ByteOrder() types.ByteOrder { return r.bo }

// RegisterOrder returns the resolved register order.
func (r *region) RegisterOrder() types.RegisterOrder { return r.ro }

// Count returns the number of addressable units (bits or registers).
func (r *region) Count() int { return r.count }

// SizeBytes returns the data plane length in bytes.
func (r *region) SizeBytes() int { return r.cbytes }

// data returns the live data plane. Call under the segment lock.
func (r *region) data() []byte {
	b, ok := buf.Slice(r.seg.Bytes(), layout.RegionHeaderSize, r.cbytes)
	if !ok {
		return nil
	}
	return b
}

// mask returns the live mask plane. Call under the segment lock.
func (r *region) mask() []byte {
	b, ok := buf.Slice(r.seg.Bytes(), layout.RegionHeaderSize+r.cbytes, r.cbytes)
	if !ok {
		return nil
	}
	return b
}

func (r *region) hdr() layout.RegionHeader { return layout.NewRegionHeader(r.seg.Bytes()) }

// appendClamped appends the clamped range [off, off+n) of plane to dst.
func appendClamped(dst, plane []byte, off, n int) []byte {
	start, cnt := buf.Span(len(plane), off, n)
	if cnt == 0 {
		return dst
	}
	return append(dst, plane[start:start+cnt]...)
}

// readData appends a clamped copy of the data-plane range to dst under the
// segment lock.
func (r *region) readData(dst []byte, off, n int) []byte {
	r.seg.Lock()
	defer r.seg.Unlock()
	return appendClamped(dst, r.data(), off, n)
}

// Bytes returns a copy of the data-plane range [off, off+n). The range is
// clamped to the plane; nil when off lies outside [0, SizeBytes).
func (r *region) Bytes(off, n int) []byte { return r.readData(nil, off, n) }

// MaskBytes returns a copy of the written-mask range [off, off+n). A set bit
// marks a data byte that was explicitly written through this layer.
func (r *region) MaskBytes(off, n int) []byte {
	r.seg.Lock()
	defer r.seg.Unlock()
	return appendClamped(nil, r.mask(), off, n)
}

// SetBytes copies data into the data plane at off, clamped to the plane
// (writes beyond the end are dropped). Written bytes get their mask set to
// 0xFF and the pending change range is extended. No-op when off is outside.
func (r *region) SetBytes(off int, data []byte) {
	r.seg.Lock()
	defer r.seg.Unlock()
	d := r.data()
	start, n := buf.Span(len(d), off, len(data))
	if n == 0 {
		return
	}
	copy(d[start:start+n], data)
	m := r.mask()
	for i := start; i < start+n && i < len(m); i++ {
		m[i] = 0xFF
	}
	r.hdr().RecordWrite(start, n)
}

// Bit reads a single bit addressed over the whole byte plane. false when
// bitOff/8 lies outside the plane.
func (r *region) Bit(bitOff int) bool {
	r.seg.Lock()
	defer r.seg.Unlock()
	d := r.data()
	i := bitOff / 8
	if bitOff < 0 || i >= len(d) {
		return false
	}
	return d[i]&(1<<(bitOff%8)) != 0
}

// SetBit writes a single bit, sets its mask bit and records a one-byte
// write. Dropped when bitOff/8 lies outside the plane.
func (r *region) SetBit(bitOff int, v bool) {
	r.seg.Lock()
	defer r.seg.Unlock()
	d := r.data()
	i := bitOff / 8
	if bitOff < 0 || i >= len(d) {
		return
	}
	bit := byte(1) << (bitOff % 8)
	if v {
		d[i] |= bit
	} else {
		d[i] &^= bit
	}
	if m := r.mask(); i < len(m) {
		m[i] |= bit
	}
	r.hdr().RecordWrite(i, 1)
}

// Bits reads a window of bitCount bits starting at bitOff, packed LSB first
// into ceil(bitCount/8) bytes with the final partial byte masked. The window
// is clamped to the byte plane; nil when it starts outside.
func (r *region) Bits(bitOff, bitCount int) []byte {
	if bitOff < 0 || bitCount <= 0 {
		return nil
	}
	start, n := bitfield.Span(bitOff, bitCount)

	scratch := bytebufferpool.Get()
	defer bytebufferpool.Put(scratch)
	scratch.B = r.readData(scratch.B[:0], start, n)
	if len(scratch.B) == 0 {
		return nil
	}
	if avail := len(scratch.B)*8 - bitOff%8; bitCount > avail {
		bitCount = avail
	}
	return bitfield.Unpack(scratch.B, bitOff%8, bitCount)
}

// SetBits merges the low bitCount bits of val into the plane at bitOff,
// preserving bits outside the window, then writes the covering bytes back
// through SetBytes (mask and change tracking update as for any byte write).
// The covering bytes are read under one lock and written back under another;
// a concurrent writer of the same bytes in between is lost, matching the
// behavior of the server's own scripting clients.
func (r *region) SetBits(bitOff, bitCount int, val []byte) {
	if bitOff < 0 || bitCount <= 0 || len(val) == 0 {
		return
	}
	if max := len(val) * 8; bitCount > max {
		bitCount = max
	}
	start, n := bitfield.Span(bitOff, bitCount)

	scratch := bytebufferpool.Get()
	defer bytebufferpool.Put(scratch)
	scratch.B = r.readData(scratch.B[:0], start, n)
	if len(scratch.B) == 0 {
		return
	}
	if avail := len(scratch.B)*8 - bitOff%8; bitCount > avail {
		bitCount = avail
	}
	if bitCount <= 0 {
		return
	}
	bitfield.Pack(scratch.B, bitOff%8, bitCount, val)
	r.SetBytes(start, scratch.B)
}

// ChangeCounter returns the region's monotonic change counter.
func (r *region) ChangeCounter() uint32 {
	r.seg.Lock()
	defer r.seg.Unlock()
	return r.hdr().ChangeCounter()
}

// DirtyRange returns the pending change range as a data-plane byte offset
// and length. The range covers every write since the last reset.
func (r *region) DirtyRange() (off, n uint32) {
	r.seg.Lock()
	defer r.seg.Unlock()
	h := r.hdr()
	return h.ChangeByteOffset(), h.ChangeByteCount()
}

// ResetDirty clears the pending change range. The counter keeps its value.
func (r *region) ResetDirty() {
	r.seg.Lock()
	defer r.seg.Unlock()
	r.hdr().Reset()
}

// ByteString decodes byteCount data-plane bytes at byteOff as device text:
// pair-swapped first when the byte order is big, then UTF-8 validated.
func (r *region) ByteString(byteOff, byteCount int) (string, error) {
	if r.closed.Load() {
		return "", types.ErrClosed
	}
	return wordorder.DecodeString(r.Bytes(byteOff, byteCount), r.bo)
}

// SetByteString encodes s as device text and writes it at byteOff.
func (r *region) SetByteString(byteOff int, s string) {
	r.SetBytes(byteOff, wordorder.EncodeString(s, r.bo))
}

// loadWord reads a w-byte value at byte offset off and converts it from the
// stored form to canonical little-endian. nil when the range is clamped.
func (r *region) loadWord(off, w int) []byte {
	b := r.Bytes(off, w)
	if len(b) != w {
		return nil
	}
	if r.bo != types.LittleEndian || r.ro != types.R0R1R2R3 {
		wordorder.Rearrange(b, r.bo, r.ro)
	}
	return b
}

// storeWord converts canonical little-endian bytes to the stored form and
// writes them at byte offset off.
func (r *region) storeWord(off int, b []byte) {
	if r.bo != types.LittleEndian || r.ro != types.R0R1R2R3 {
		wordorder.Rearrange(b, r.bo, r.ro)
	}
	r.SetBytes(off, b)
}
