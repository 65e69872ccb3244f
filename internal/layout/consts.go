// Package layout defines the fixed shared-memory layout the device server
// publishes: segment name suffixes, the device control block, and the
// change-tracking header that starts every memory region segment.
package layout

// Segment name suffixes. A device's segments are "<prefix><suffix>"; the
// names are fixed by the server and shared with every client.
const (
	SuffixDevice    = ".device"
	SuffixHeartbeat = ".python" // scripting-client heartbeat block
	SuffixMem0x     = ".mem0x"
	SuffixMem1x     = ".mem1x"
	SuffixMem3x     = ".mem3x"
	SuffixMem4x     = ".mem4x"
)

// HeartbeatSize is the size of the heartbeat segment: one u32 cycle counter.
const HeartbeatSize = 4

// Device control block: eleven 4-byte little-endian fields, then the
// string table.
const (
	OffFlags              = 0
	OffCycle              = 4
	OffCount0x            = 8
	OffCount1x            = 12
	OffCount3x            = 16
	OffCount4x            = 20
	OffExceptionStatusRef = 24
	OffByteOrder          = 28 // i32 code, see types.ByteOrder
	OffRegisterOrder      = 32 // i32 code, see types.RegisterOrder
	OffDeviceName         = 36 // byte offset into the string table
	OffStringTableSize    = 40

	ControlBlockSize = 44
	StringTableOff   = ControlBlockSize
)

// Region header: every .memNx segment starts with these four fields,
// followed by the data plane and the byte-for-byte mask plane.
const (
	OffChangeCounter    = 0
	OffChangeByteOffset = 4
	OffChangeByteCount  = 8
	OffReserved         = 12

	RegionHeaderSize = 16
)
