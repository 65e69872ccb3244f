package device

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/mbkit/mbshm/internal/buf"
	"github.com/mbkit/mbshm/internal/layout"
	"github.com/mbkit/mbshm/internal/shm"
	"github.com/mbkit/mbshm/pkg/types"
)

// DefaultDir is the directory the server publishes segment files under.
const DefaultDir = "/dev/shm"

type options struct {
	dir   string
	retry time.Duration
	log   *slog.Logger
}

// Option configures Open, Create and NewRegistry.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{dir: DefaultDir, log: slog.Default()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithDir sets the directory holding the segment files.
func WithDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.dir = dir
		}
	}
}

// WithRetry keeps attach attempts going under exponential backoff for up to
// maxWait, for clients that start before the server has created its
// segments.
func WithRetry(maxWait time.Duration) Option {
	return func(o *options) { o.retry = maxWait }
}

// WithLogger sets the logger for attach, create and teardown events.
// The library never logs on memory access paths.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// Device is an attached device: six mapped segments exposing the control
// block, the scripting heartbeat and the four memory regions. Safe for
// concurrent use by multiple goroutines.
type Device struct {
	prefix string
	dir    string
	log    *slog.Logger

	ctl *shm.Segment
	hb  *Heartbeat

	name string
	bo   types.ByteOrder
	ro   types.RegisterOrder

	coils     *BitRegion
	discretes *BitRegion
	inputs    *WordRegion
	holdings  *WordRegion

	excKind types.Mem
	excOff  int

	closed atomic.Bool
}

// Open attaches the device published under prefix. It reads and validates
// the control block, resolves the byte and register order, attaches the
// four memory regions (a region with count 0 still gets a valid, empty
// handle) and the heartbeat block.
func Open(prefix string, opts ...Option) (*Device, error) {
	o := newOptions(opts)
	d := &Device{prefix: prefix, dir: o.dir, log: o.log}

	ctl, err := d.attach(layout.SuffixDevice, o.retry)
	if err != nil {
		return nil, err
	}
	d.ctl = ctl

	ctl.Lock()
	cb, err := layout.NewControlBlock(ctl.Bytes())
	var name string
	if err == nil {
		name, err = cb.DeviceName()
	}
	if err != nil {
		ctl.Unlock()
		_ = ctl.Close()
		return nil, &types.Error{Kind: types.ErrKindAttach, Msg: fmt.Sprintf("open device %q", prefix), Err: err}
	}
	counts := [4]int{int(cb.Count0x()), int(cb.Count1x()), int(cb.Count3x()), int(cb.Count4x())}
	excRef := int(cb.ExceptionStatusRef())
	d.bo = types.ByteOrder(cb.ByteOrderCode()).Resolve()
	d.ro = types.RegisterOrder(cb.RegisterOrderCode()).Resolve()
	ctl.Unlock()
	d.name = name

	if d.coils, err = d.attachBits(layout.SuffixMem0x, types.Mem0x, counts[0], o.retry); err == nil {
		if d.discretes, err = d.attachBits(layout.SuffixMem1x, types.Mem1x, counts[1], o.retry); err == nil {
			if d.inputs, err = d.attachWords(layout.SuffixMem3x, types.Mem3x, counts[2], o.retry); err == nil {
				d.holdings, err = d.attachWords(layout.SuffixMem4x, types.Mem4x, counts[3], o.retry)
			}
		}
	}
	var hbSeg *shm.Segment
	if err == nil {
		hbSeg, err = d.attach(layout.SuffixHeartbeat, o.retry)
	}
	if err != nil {
		d.closed.Store(true)
		_ = d.detach()
		return nil, err
	}
	d.hb = &Heartbeat{seg: hbSeg}

	// The control block references the exception status by numeric address;
	// anything unmappable falls back to coils offset 0.
	d.excKind, d.excOff = types.Mem0x, 0
	if a := types.AddressFromNumber(excRef); a.Valid() {
		d.excKind, d.excOff = a.Kind, a.Offset
	}

	o.log.Debug("attached device",
		"device", prefix, "name", name, "dir", o.dir,
		"coils", counts[0], "discretes", counts[1],
		"inputs", counts[2], "holdings", counts[3],
		"byteOrder", d.bo, "registerOrder", d.ro)
	return d, nil
}

func (d *Device) attach(suffix string, retry time.Duration) (*shm.Segment, error) {
	path := filepath.Join(d.dir, d.prefix+suffix)
	seg, err := shm.AttachRetry(path, retry)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindAttach, Msg: fmt.Sprintf("open device %q", d.prefix), Err: err}
	}
	return seg, nil
}

func (d *Device) attachBits(suffix string, id types.Mem, count int, retry time.Duration) (*BitRegion, error) {
	seg, err := d.attach(suffix, retry)
	if err != nil {
		return nil, err
	}
	return newBitRegion(seg, id, count, d.bo, d.ro, &d.closed), nil
}

func (d *Device) attachWords(suffix string, id types.Mem, count int, retry time.Duration) (*WordRegion, error) {
	seg, err := d.attach(suffix, retry)
	if err != nil {
		return nil, err
	}
	return newWordRegion(seg, id, count, d.bo, d.ro, &d.closed), nil
}

func (d *Device) segments() []*shm.Segment {
	segs := make([]*shm.Segment, 0, 6)
	if d.ctl != nil {
		segs = append(segs, d.ctl)
	}
	if d.hb != nil {
		segs = append(segs, d.hb.seg)
	}
	if d.coils != nil {
		segs = append(segs, d.coils.seg)
	}
	if d.discretes != nil {
		segs = append(segs, d.discretes.seg)
	}
	if d.inputs != nil {
		segs = append(segs, d.inputs.seg)
	}
	if d.holdings != nil {
		segs = append(segs, d.holdings.seg)
	}
	return segs
}

func (d *Device) detach() error {
	var first error
	for _, s := range d.segments() {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close detaches every segment. The first error wins but all segments are
// still detached. Safe to call twice.
func (d *Device) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := d.detach()
	d.log.Debug("detached device", "device", d.prefix)
	return err
}

// Unlink removes the device's segment files. Meant as teardown for devices
// this process created with Create; close the device first.
func (d *Device) Unlink() error {
	var first error
	for _, s := range d.segments() {
		if err := s.Remove(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Prefix returns the segment name prefix the device was opened under.
func (d *Device) Prefix() string { return d.prefix }

// Name returns the device name from the control block's string table.
func (d *Device) Name() string { return d.name }

// ByteOrder returns the device's resolved byte order.
func (d *Device) ByteOrder() types.ByteOrder { return d.bo }

// RegisterOrder returns the device's resolved register order.
func (d *Device) RegisterOrder() types.RegisterOrder { return d.ro }

func (d *Device) ctlU32(off int) uint32 {
	d.ctl.Lock()
	defer d.ctl.Unlock()
	return buf.U32LE(d.ctl.Bytes(), off)
}

// Flags returns the server-owned flags word, read live.
func (d *Device) Flags() uint32 { return d.ctlU32(layout.OffFlags) }

// Cycle returns the server's scan cycle counter, read live.
func (d *Device) Cycle() uint32 { return d.ctlU32(layout.OffCycle) }

// CoilCount returns the declared coil count.
func (d *Device) CoilCount() int { return int(d.ctlU32(layout.OffCount0x)) }

// DiscreteInputCount returns the declared discrete input count.
func (d *Device) DiscreteInputCount() int { return int(d.ctlU32(layout.OffCount1x)) }

// InputRegisterCount returns the declared input register count.
func (d *Device) InputRegisterCount() int { return int(d.ctlU32(layout.OffCount3x)) }

// HoldingRegisterCount returns the declared holding register count.
func (d *Device) HoldingRegisterCount() int { return int(d.ctlU32(layout.OffCount4x)) }

// Coils returns the coil region (mem0x).
func (d *Device) Coils() *BitRegion { return d.coils }

// DiscreteInputs returns the discrete input region (mem1x).
func (d *Device) DiscreteInputs() *BitRegion { return d.discretes }

// InputRegisters returns the input register region (mem3x).
func (d *Device) InputRegisters() *WordRegion { return d.inputs }

// HoldingRegisters returns the holding register region (mem4x).
func (d *Device) HoldingRegisters() *WordRegion { return d.holdings }

// Mem returns the region for kind.
func (d *Device) Mem(kind types.Mem) (Memory, bool) {
	switch kind {
	case types.Mem0x:
		return d.coils, true
	case types.Mem1x:
		return d.discretes, true
	case types.Mem3x:
		return d.inputs, true
	case types.Mem4x:
		return d.holdings, true
	}
	return nil, false
}

// regions returns the four regions in kind order.
func (d *Device) regions() [4]Memory {
	return [4]Memory{d.coils, d.discretes, d.inputs, d.holdings}
}

// Heartbeat returns the scripting-client heartbeat block.
func (d *Device) Heartbeat() *Heartbeat { return d.hb }

// ExceptionStatusAddress returns the resolved exception status address.
func (d *Device) ExceptionStatusAddress() types.Address {
	return types.Address{Kind: d.excKind, Offset: d.excOff}
}

// ExceptionStatus reads the uint8 at the device's exception status address.
func (d *Device) ExceptionStatus() uint8 {
	if m, ok := d.Mem(d.excKind); ok {
		return m.Uint8(d.excOff)
	}
	return 0
}

// SetExceptionStatus writes the uint8 at the device's exception status
// address.
func (d *Device) SetExceptionStatus(v uint8) {
	if m, ok := d.Mem(d.excKind); ok {
		m.SetUint8(d.excOff, v)
	}
}

// MemDump returns a clamped raw copy of the device control segment starting
// at off. n = 0 means "to the end of the segment".
func (d *Device) MemDump(off, n int) []byte {
	d.ctl.Lock()
	defer d.ctl.Unlock()
	b := d.ctl.Bytes()
	if n == 0 {
		n = len(b) - off
	}
	return appendClamped(nil, b, off, n)
}
