//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// osMapFile maps an image file for reading. Images are never written through
// the mapping, so a private read-only view is enough.
func osMapFile(f *os.File, size int) ([]byte, func([]byte) error, error) {
	return mapRegion(int(f.Fd()), size, unix.PROT_READ, unix.MAP_PRIVATE)
}

// osMapAnon maps zeroed pages for a slot table.
func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	return mapRegion(-1, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func mapRegion(fd, size, prot, flags int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(fd, 0, size, prot, flags)
	if err != nil {
		return nil, nil, err
	}
	return data, unix.Munmap, nil
}

var advice = map[AccessPattern]int{
	AccessSequential: unix.MADV_SEQUENTIAL,
	AccessRandom:     unix.MADV_RANDOM,
	AccessDontNeed:   unix.MADV_DONTNEED,
}

func osAdvise(data []byte, pattern AccessPattern) error {
	if len(data) == 0 {
		return nil
	}
	a, ok := advice[pattern]
	if !ok {
		a = unix.MADV_NORMAL
	}
	// Hints are advisory; unaligned or unsupported ranges are not an error.
	if err := unix.Madvise(data, a); err != nil && !errors.Is(err, unix.EINVAL) {
		return err
	}
	return nil
}
