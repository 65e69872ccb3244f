// Package shm attaches, creates and memory-maps the fixed-size segment
// files a device is assembled from. One file per segment; the bytes are
// shared with the server process through the mapping and serialized with
// flock plus an in-process mutex.
package shm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shirou/gopsutil/v3/disk"
)

var (
	// ErrExists is returned by Create when the segment file is already present.
	ErrExists = errors.New("shm: segment already exists")
	// ErrNoSpace is returned by Create when the target filesystem cannot hold the segment.
	ErrNoSpace = errors.New("shm: not enough free space for segment")
	// ErrUnsupported is returned on platforms without shared-memory mappings.
	ErrUnsupported = errors.New("shm: shared memory segments are not supported on this platform")
)

// Segment is one mapped segment file. Bytes and Size are meant to be used
// between Lock and Unlock; the mapping is shared with other processes.
type Segment struct {
	name string
	f    *os.File
	b    []byte
	mu   sync.Mutex
}

// Attach opens and maps an existing segment file read-write.
func Attach(path string) (*Segment, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: attach %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("shm: attach %s: %w", path, err)
	}
	size := info.Size()
	if size > int64(^uint(0)>>1) {
		_ = f.Close()
		return nil, fmt.Errorf("shm: attach %s: segment too large to map (%d bytes)", path, size)
	}
	var b []byte
	if size > 0 {
		if b, err = sysMap(f, int(size)); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("shm: map %s: %w", path, err)
		}
	}
	return &Segment{name: path, f: f, b: b}, nil
}

// AttachRetry retries Attach under exponential backoff until the segment
// appears or maxWait elapses, for clients that start before the server has
// created its segments. Errors other than a missing file fail immediately.
func AttachRetry(path string, maxWait time.Duration) (*Segment, error) {
	if maxWait <= 0 {
		return Attach(path)
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxElapsedTime = maxWait
	var seg *Segment
	op := func() error {
		s, err := Attach(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return backoff.Permanent(err)
		}
		seg = s
		return nil
	}
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return seg, nil
}

// Create makes a new segment file of the given size and maps it. The file
// must not exist yet; free space on the target filesystem is checked first.
func Create(path string, size int) (*Segment, error) {
	if size < 0 {
		return nil, fmt.Errorf("shm: create %s: negative size %d", path, size)
	}
	if size > 0 {
		if u, err := disk.Usage(filepath.Dir(path)); err == nil && u.Free < uint64(size) {
			return nil, fmt.Errorf("shm: create %s: need %d bytes, %d free: %w", path, size, u.Free, ErrNoSpace)
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("shm: create %s: %w", path, ErrExists)
		}
		return nil, fmt.Errorf("shm: create %s: %w", path, err)
	}
	if err := f.Truncate(int64(size)); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("shm: create %s: %w", path, err)
	}
	var b []byte
	if size > 0 {
		if b, err = sysMap(f, size); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return nil, fmt.Errorf("shm: map %s: %w", path, err)
		}
	}
	return &Segment{name: path, f: f, b: b}, nil
}

// Bytes returns the mapped contents. nil after Close or for empty segments.
func (s *Segment) Bytes() []byte { return s.b }

// Size returns the mapped length in bytes.
func (s *Segment) Size() int { return len(s.b) }

// Name returns the segment file path.
func (s *Segment) Name() string { return s.name }

// Lock serializes segment access against other goroutines and, through
// flock, against other processes.
func (s *Segment) Lock() {
	s.mu.Lock()
	if s.f != nil {
		sysFlock(s.f, true)
	}
}

// Unlock releases the locks taken by Lock.
func (s *Segment) Unlock() {
	if s.f != nil {
		sysFlock(s.f, false)
	}
	s.mu.Unlock()
}

// Close unmaps the segment and closes the backing file. Safe to call twice.
func (s *Segment) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.b != nil {
		err = sysUnmap(s.b)
		s.b = nil
	}
	if s.f != nil {
		if cerr := s.f.Close(); err == nil {
			err = cerr
		}
		s.f = nil
	}
	return err
}

// Remove unlinks the backing file. Meant for segments this process created;
// attached segments belong to the server.
func (s *Segment) Remove() error {
	return os.Remove(s.name)
}
