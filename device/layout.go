package device

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mbkit/mbshm/internal/layout"
	"github.com/mbkit/mbshm/internal/shm"
	"github.com/mbkit/mbshm/pkg/types"
)

// Layout describes a device to create. The YAML form is what fixtures feed
// to LoadLayout:
//
//	name: pump-a
//	coils: 64
//	discretes: 32
//	inputs: 16
//	holdings: 16
//	byteOrder: big
//	registerOrder: r3r2r1r0
//	exceptionStatus: 1
//	flags: 0
type Layout struct {
	// Name goes into the control segment's string table. Defaults to the
	// segment prefix.
	Name string `yaml:"name"`

	// Cell counts per area: bits for coils/discretes, registers for
	// inputs/holdings.
	Coils     int `yaml:"coils"`
	Discretes int `yaml:"discretes"`
	Inputs    int `yaml:"inputs"`
	Holdings  int `yaml:"holdings"`

	// Orders accept names ("big", "r3r2r1r0") or raw control-block codes.
	ByteOrder     types.ByteOrder     `yaml:"byteOrder"`
	RegisterOrder types.RegisterOrder `yaml:"registerOrder"`

	// ExceptionStatus is the numeric address of the exception status cell;
	// 0 records none and readers fall back to coil 0.
	ExceptionStatus int `yaml:"exceptionStatus"`

	Flags uint32 `yaml:"flags"`
}

// maxRegionCells caps declared counts at the protocol's 16-bit address
// space.
const maxRegionCells = 65536

func (l Layout) validate() error {
	areas := [...]struct {
		name  string
		count int
	}{
		{"coils", l.Coils},
		{"discretes", l.Discretes},
		{"inputs", l.Inputs},
		{"holdings", l.Holdings},
	}
	for _, a := range areas {
		if a.count < 0 || a.count > maxRegionCells {
			return &types.Error{
				Kind: types.ErrKindConfig,
				Msg:  fmt.Sprintf("device: %s count %d outside [0, %d]", a.name, a.count, maxRegionCells),
			}
		}
	}
	if l.ExceptionStatus < 0 {
		return &types.Error{
			Kind: types.ErrKindConfig,
			Msg:  fmt.Sprintf("device: exception status address %d is negative", l.ExceptionStatus),
		}
	}
	return nil
}

// ParseLayout decodes and validates a YAML layout.
func ParseLayout(b []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(b, &l); err != nil {
		return Layout{}, &types.Error{Kind: types.ErrKindConfig, Msg: "device: parse layout", Err: err}
	}
	if err := l.validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// LoadLayout reads and decodes a YAML layout file.
func LoadLayout(path string) (Layout, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, &types.Error{Kind: types.ErrKindConfig, Msg: fmt.Sprintf("device: load layout %s", path), Err: err}
	}
	return ParseLayout(b)
}

func bitPlaneBytes(count int) int  { return (count + 7) / 8 }
func wordPlaneBytes(count int) int { return count * 2 }

// Create builds the six segment files for a device described by l, writes
// the control block and string table, then opens the device normally. It
// refuses to touch existing segments and removes everything it created on
// failure. Callers own teardown via Close and Unlink.
//
// The control segment is published last, written under a temporary name and
// linked into place, so a client attaching with WithRetry never observes a
// zeroed control block.
func Create(prefix string, l Layout, opts ...Option) (*Device, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	name := l.Name
	if name == "" {
		name = prefix
	}
	params := layout.ControlParams{
		Flags:              l.Flags,
		Count0x:            uint32(l.Coils),
		Count1x:            uint32(l.Discretes),
		Count3x:            uint32(l.Inputs),
		Count4x:            uint32(l.Holdings),
		ExceptionStatusRef: uint32(l.ExceptionStatus),
		ByteOrderCode:      int32(l.ByteOrder),
		RegisterOrderCode:  int32(l.RegisterOrder),
		DeviceName:         name,
	}
	plan := [...]struct {
		suffix string
		size   int
	}{
		{layout.SuffixHeartbeat, layout.HeartbeatSize},
		{layout.SuffixMem0x, layout.RegionHeaderSize + 2*bitPlaneBytes(l.Coils)},
		{layout.SuffixMem1x, layout.RegionHeaderSize + 2*bitPlaneBytes(l.Discretes)},
		{layout.SuffixMem3x, layout.RegionHeaderSize + 2*wordPlaneBytes(l.Inputs)},
		{layout.SuffixMem4x, layout.RegionHeaderSize + 2*wordPlaneBytes(l.Holdings)},
	}

	var created []string
	fail := func(err error) (*Device, error) {
		for _, p := range created {
			_ = os.Remove(p)
		}
		return nil, &types.Error{Kind: types.ErrKindAttach, Msg: fmt.Sprintf("create device %q", prefix), Err: err}
	}

	// Truncate zero-fills the planes; the region segments need no content.
	for _, p := range plan {
		seg, err := shm.Create(filepath.Join(o.dir, prefix+p.suffix), p.size)
		if err != nil {
			return fail(err)
		}
		created = append(created, seg.Name())
		if err := seg.Close(); err != nil {
			return fail(err)
		}
	}

	ctlPath := filepath.Join(o.dir, prefix+layout.SuffixDevice)
	tmpPath := ctlPath + ".tmp"
	ctl, err := shm.Create(tmpPath, layout.ControlSegmentSize(params))
	if err != nil {
		return fail(err)
	}
	created = append(created, tmpPath)
	ctl.Lock()
	layout.EncodeControl(ctl.Bytes(), params)
	ctl.Unlock()
	if err := ctl.Close(); err != nil {
		return fail(err)
	}
	// Link refuses to replace an existing control segment.
	if err := os.Link(tmpPath, ctlPath); err != nil {
		if errors.Is(err, fs.ErrExist) {
			err = fmt.Errorf("%s: %w", ctlPath, shm.ErrExists)
		}
		return fail(err)
	}
	_ = os.Remove(tmpPath)
	created[len(created)-1] = ctlPath

	d, err := Open(prefix, opts...)
	if err != nil {
		for _, p := range created {
			_ = os.Remove(p)
		}
		return nil, err
	}
	o.log.Debug("created device", "device", prefix, "name", name, "dir", o.dir)
	return d, nil
}
