//go:build unix

package shm

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func sysMap(f *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func sysUnmap(b []byte) error {
	err := unix.Munmap(b)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}

// sysFlock takes or releases the whole-file lock, retrying EINTR. Lock
// failures are not reported; the in-process mutex still serializes access
// within this process.
func sysFlock(f *os.File, lock bool) {
	how := unix.LOCK_EX
	if !lock {
		how = unix.LOCK_UN
	}
	for {
		err := unix.Flock(int(f.Fd()), how)
		if !errors.Is(err, unix.EINTR) {
			return
		}
	}
}
