package device

import (
	"fmt"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/mbkit/mbshm/pkg/types"
)

// encMode is the CBOR encoder mode for snapshots: deterministic key order
// so identical device state encodes to identical bytes.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for snapshots.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR encoder mode: %v", err))
	}

	// Lenient decode for forward compatibility with extended snapshots.
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR decoder mode: %v", err))
	}
}

// RegionSnapshot is one region's captured state: the change counter and full
// copies of the data and mask planes.
type RegionSnapshot struct {
	Mem     types.Mem `cbor:"mem"`
	Count   int       `cbor:"count"`
	Counter uint32    `cbor:"counter"`
	Data    []byte    `cbor:"data"`
	Mask    []byte    `cbor:"mask"`
}

// Snapshot is a point-in-time capture of a device, for tooling and test
// fixtures. It is not atomic across regions: each region is captured under
// its own lock.
type Snapshot struct {
	Device        string              `cbor:"device"`
	Name          string              `cbor:"name"`
	ByteOrder     types.ByteOrder     `cbor:"byteOrder"`
	RegisterOrder types.RegisterOrder `cbor:"registerOrder"`
	TakenAt       time.Time           `cbor:"takenAt"`
	Regions       []RegionSnapshot    `cbor:"regions"`
}

// TakeSnapshot captures the device's four regions.
func TakeSnapshot(d *Device) (*Snapshot, error) {
	if d.closed.Load() {
		return nil, types.ErrClosed
	}
	s := &Snapshot{
		Device:        d.prefix,
		Name:          d.name,
		ByteOrder:     d.bo,
		RegisterOrder: d.ro,
		TakenAt:       time.Now().UTC(),
		Regions:       make([]RegionSnapshot, 0, 4),
	}
	for _, m := range d.regions() {
		s.Regions = append(s.Regions, RegionSnapshot{
			Mem:     m.ID(),
			Count:   m.Count(),
			Counter: m.ChangeCounter(),
			Data:    m.Bytes(0, m.SizeBytes()),
			Mask:    m.MaskBytes(0, m.SizeBytes()),
		})
	}
	return s, nil
}

// Encode renders the snapshot as deterministic CBOR.
func (s *Snapshot) Encode() ([]byte, error) {
	b, err := encMode.Marshal(s)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindDecode, Msg: "device: encode snapshot", Err: err}
	}
	return b, nil
}

// DecodeSnapshot parses CBOR produced by Encode.
func DecodeSnapshot(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := decMode.Unmarshal(b, &s); err != nil {
		return nil, &types.Error{Kind: types.ErrKindDecode, Msg: "device: decode snapshot", Err: err}
	}
	return &s, nil
}

// WriteFile encodes the snapshot into path.
func (s *Snapshot) WriteFile(path string) error {
	b, err := s.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ReadSnapshotFile reads and decodes a snapshot file.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeSnapshot(b)
}

// Restore writes each captured region's data back through SetBytes, so
// masks and change tracking update exactly as for any client write. Regions
// the device does not have, or data beyond a region's plane, are dropped by
// the clamp policy.
func (s *Snapshot) Restore(d *Device) error {
	if d.closed.Load() {
		return types.ErrClosed
	}
	for _, rs := range s.Regions {
		if m, ok := d.Mem(rs.Mem); ok && len(rs.Data) > 0 {
			m.SetBytes(0, rs.Data)
		}
	}
	return nil
}
