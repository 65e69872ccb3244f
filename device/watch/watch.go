// Package watch polls a device's change counters and fans out region change
// events to subscribers.
//
// The server gives no push notification: writers bump a per-region counter
// and merge a dirty byte range into the region header. A Watcher samples
// those counters on a fixed interval and emits one Event per observed
// advance, carrying the merged range. Consecutive writes between two samples
// coalesce into a single event.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Workiva/go-datastructures/queue"
	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/mbkit/mbshm/device"
	"github.com/mbkit/mbshm/pkg/types"
)

// Event describes one observed change-counter advance on a region.
type Event struct {
	// Device is the segment prefix of the device the event came from.
	Device string
	// Mem identifies the region.
	Mem types.Mem
	// Counter is the region change counter at sampling time.
	Counter uint32
	// Offset and Length are the merged dirty byte range accumulated since
	// the last reset. They describe data plane bytes, not cells.
	Offset int
	Length int
	// At is the sampling time.
	At time.Time
}

// Options configures a Watcher. The zero value picks sensible defaults.
type Options struct {
	// Interval is the counter sampling period. Default 50ms.
	Interval time.Duration

	// Queue is the capacity of the event ring buffer between the sampler
	// and the dispatchers. Events are dropped, not blocked on, when it is
	// full. Default 1024.
	Queue int

	// Workers is the size of the callback worker pool. Default 4.
	Workers int

	// Logger receives lifecycle and drop warnings. Default slog.Default().
	Logger *slog.Logger

	// ResetAfterRead clears the region's dirty range after each emitted
	// event, so the next event covers only writes that happened after this
	// one. Leave false when other consumers poll the same region header.
	ResetAfterRead bool
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 50 * time.Millisecond
	}
	if o.Queue <= 0 {
		o.Queue = 1024
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Watcher samples one device and delivers events to subscribed callbacks.
type Watcher struct {
	dev  *device.Device
	opts Options

	ring *queue.RingBuffer
	pool *ants.Pool
	subs cmap.ConcurrentMap[uuid.UUID, func(Event)]

	started atomic.Bool
	stopped atomic.Bool
	dropped atomic.Uint64
	quit    chan struct{}
}

// New builds a Watcher over d. Call Start to begin sampling.
func New(d *device.Device, opts Options) (*Watcher, error) {
	opts = opts.withDefaults()
	pool, err := ants.NewPool(opts.Workers)
	if err != nil {
		return nil, err
	}
	return &Watcher{
		dev:  d,
		opts: opts,
		ring: queue.NewRingBuffer(uint64(opts.Queue)),
		pool: pool,
		subs: cmap.NewStringer[uuid.UUID, func(Event)](),
		quit: make(chan struct{}),
	}, nil
}

// Subscribe registers fn for every event and returns its token. Callbacks
// run on the worker pool; a slow callback delays other callbacks, not the
// sampler.
func (w *Watcher) Subscribe(fn func(Event)) uuid.UUID {
	if fn == nil {
		return uuid.Nil
	}
	token := uuid.New()
	w.subs.Set(token, fn)
	return token
}

// Unsubscribe removes the subscription for token.
func (w *Watcher) Unsubscribe(token uuid.UUID) {
	w.subs.Remove(token)
}

// Dropped returns the number of events discarded because the ring buffer
// was full.
func (w *Watcher) Dropped() uint64 { return w.dropped.Load() }

// Start launches the sampler and dispatcher. The watcher stops when ctx is
// done or Stop is called; a stopped watcher cannot be restarted.
func (w *Watcher) Start(ctx context.Context) error {
	if w.stopped.Load() {
		return errors.New("watch: watcher is stopped")
	}
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: watcher already started")
	}
	w.opts.Logger.Debug("watcher started", "device", w.dev.Prefix(), "interval", w.opts.Interval)
	go w.dispatch()
	go w.poll(ctx)
	return nil
}

// Stop halts sampling, disposes the event ring and releases the worker
// pool. Idempotent.
func (w *Watcher) Stop() {
	if !w.stopped.CompareAndSwap(false, true) {
		return
	}
	close(w.quit)
	w.ring.Dispose()
	w.pool.Release()
	w.opts.Logger.Debug("watcher stopped", "device", w.dev.Prefix(), "dropped", w.dropped.Load())
}

func (w *Watcher) poll(ctx context.Context) {
	defer w.Stop()

	// Baseline: existing state is not a change.
	var last [4]uint32
	kinds := types.Kinds()
	for i, k := range kinds {
		if m, ok := w.dev.Mem(k); ok {
			last[i] = m.ChangeCounter()
		}
	}

	t := time.NewTicker(w.opts.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.quit:
			return
		case <-t.C:
			for i, k := range kinds {
				if !w.sample(k, &last[i]) {
					return
				}
			}
		}
	}
}

// sample emits an event if the region's counter moved past *last. It
// returns false when the ring has been disposed.
func (w *Watcher) sample(kind types.Mem, last *uint32) bool {
	m, ok := w.dev.Mem(kind)
	if !ok {
		return true
	}
	c := m.ChangeCounter()
	if c == *last {
		return true
	}
	*last = c
	off, n := m.DirtyRange()
	if w.opts.ResetAfterRead {
		m.ResetDirty()
	}
	ev := Event{
		Device:  w.dev.Prefix(),
		Mem:     kind,
		Counter: c,
		Offset:  int(off),
		Length:  int(n),
		At:      time.Now(),
	}
	queued, err := w.ring.Offer(ev)
	if err != nil {
		return false
	}
	if !queued {
		w.dropped.Add(1)
		w.opts.Logger.Warn("event queue full, dropping event",
			"device", ev.Device, "mem", ev.Mem, "counter", ev.Counter)
	}
	return true
}

func (w *Watcher) dispatch() {
	for {
		item, err := w.ring.Get()
		if err != nil {
			return
		}
		ev, ok := item.(Event)
		if !ok {
			continue
		}
		for sub := range w.subs.IterBuffered() {
			fn := sub.Val
			if err := w.pool.Submit(func() { fn(ev) }); err != nil {
				return
			}
		}
	}
}
