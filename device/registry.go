package device

import (
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Registry caches attached devices by prefix so concurrent callers share
// one attachment per device instead of mapping the same segments repeatedly.
type Registry struct {
	devs cmap.ConcurrentMap[string, *Device]
	opts []Option
}

// NewRegistry returns an empty registry. opts apply to every attach the
// registry performs.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{devs: cmap.New[*Device](), opts: opts}
}

// Device returns the cached device for prefix, attaching on first use.
// Concurrent callers racing on the same prefix all get the same *Device.
func (r *Registry) Device(prefix string) (*Device, error) {
	for {
		if d, ok := r.devs.Get(prefix); ok {
			return d, nil
		}
		d, err := Open(prefix, r.opts...)
		if err != nil {
			return nil, err
		}
		if r.devs.SetIfAbsent(prefix, d) {
			return d, nil
		}
		// Lost the insert race; drop our attachment and take the winner's.
		_ = d.Close()
	}
}

// Has reports whether a device for prefix is currently cached.
func (r *Registry) Has(prefix string) bool { return r.devs.Has(prefix) }

// Len returns the number of cached devices.
func (r *Registry) Len() int { return r.devs.Count() }

// Detach closes and forgets the device for prefix. Unknown prefixes are a
// no-op.
func (r *Registry) Detach(prefix string) error {
	if d, ok := r.devs.Pop(prefix); ok {
		return d.Close()
	}
	return nil
}

// Close detaches every cached device. The first error wins but every device
// is still closed.
func (r *Registry) Close() error {
	var first error
	for item := range r.devs.IterBuffered() {
		r.devs.Remove(item.Key)
		if err := item.Val.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
