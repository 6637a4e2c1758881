//go:build linux

// Package shm manages POSIX system shared-memory regions used to pass
// tensor data to a colocated inference server without copying it through
// the request body. A region is created under a key, filled with encoded
// tensor bytes, registered with the server under a name, and referenced
// from input/output descriptors by that name.
package shm

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

const shmDir = "/dev/shm/"

// Handle is one mapped shared-memory region. Name is the server-side
// registration name, Key the POSIX shm key (leading slash, e.g.
// "/input_simple").
type Handle struct {
	Name     string
	Key      string
	ByteSize int64

	fd   int
	data []byte
}

// CreateSharedMemoryRegion creates and maps a region of byteSize bytes. An
// existing region under the same key is reused and resized.
func CreateSharedMemoryRegion(name, key string, byteSize int64) (*Handle, error) {
	if !strings.HasPrefix(key, "/") {
		return nil, fmt.Errorf("shared memory key %q must start with a slash", key)
	}
	if byteSize <= 0 {
		return nil, fmt.Errorf("shared memory region %q needs a positive byte size, got %d", name, byteSize)
	}
	fd, err := unix.Open(shmDir+key[1:], unix.O_CREAT|unix.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating shared memory region %q: %w", key, err)
	}
	if err := unix.Ftruncate(fd, byteSize); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("sizing shared memory region %q to %d bytes: %w", key, byteSize, err)
	}
	data, err := unix.Mmap(fd, 0, int(byteSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mapping shared memory region %q: %w", key, err)
	}
	return &Handle{Name: name, Key: key, ByteSize: byteSize, fd: fd, data: data}, nil
}

// SetData copies raw into the region starting at offset.
func (h *Handle) SetData(offset int64, raw []byte) error {
	if offset < 0 || offset+int64(len(raw)) > h.ByteSize {
		return fmt.Errorf("write of %d bytes at offset %d exceeds region %q of %d bytes",
			len(raw), offset, h.Name, h.ByteSize)
	}
	copy(h.data[offset:], raw)
	return nil
}

// Data returns byteSize bytes starting at offset. The returned slice
// aliases the mapping and is only valid until Destroy.
func (h *Handle) Data(offset, byteSize int64) ([]byte, error) {
	if offset < 0 || byteSize < 0 || offset+byteSize > h.ByteSize {
		return nil, fmt.Errorf("read of %d bytes at offset %d exceeds region %q of %d bytes",
			byteSize, offset, h.Name, h.ByteSize)
	}
	return h.data[offset : offset+byteSize], nil
}

// Destroy unmaps the region and unlinks its backing key.
func (h *Handle) Destroy() error {
	var firstErr error
	if h.data != nil {
		if err := unix.Munmap(h.data); err != nil {
			firstErr = fmt.Errorf("unmapping shared memory region %q: %w", h.Key, err)
		}
		h.data = nil
	}
	if h.fd > 0 {
		if err := unix.Close(h.fd); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing shared memory region %q: %w", h.Key, err)
		}
		h.fd = -1
	}
	if err := unix.Unlink(shmDir + h.Key[1:]); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("unlinking shared memory region %q: %w", h.Key, err)
	}
	return firstErr
}
