//go:build !unix

package shm

import "os"

func sysMap(f *os.File, size int) ([]byte, error) { return nil, ErrUnsupported }

func sysUnmap(b []byte) error { return nil }

func sysFlock(f *os.File, lock bool) {}
