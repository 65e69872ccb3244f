package device

import (
	"github.com/mbkit/mbshm/internal/buf"
	"github.com/mbkit/mbshm/internal/layout"
	"github.com/mbkit/mbshm/internal/shm"
)

// Heartbeat is the scripting-client liveness block: one little-endian uint32
// counter the server polls to decide whether its client is still running.
type Heartbeat struct {
	seg *shm.Segment
}

// Cycle returns the current heartbeat counter.
func (h *Heartbeat) Cycle() uint32 {
	h.seg.Lock()
	defer h.seg.Unlock()
	return buf.U32LE(h.seg.Bytes(), 0)
}

// Tick increments the heartbeat counter. Call once per client scan cycle;
// wrap-around is expected.
func (h *Heartbeat) Tick() {
	h.seg.Lock()
	defer h.seg.Unlock()
	b := h.seg.Bytes()
	if !buf.Has(b, 0, 4) {
		return
	}
	layout.PutU32(b, 0, buf.U32LE(b, 0)+1)
}
