//go:build unix

package shm

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Default returns the platform backend. On unix a segment name resolves to a
// file under dir (DefaultDir when empty), which is where shm_open places
// POSIX objects on Linux and where a Wine-hosted publisher can be bridged.
func Default(dir string) Backend {
	if dir == "" {
		dir = DefaultDir
	}
	return &dirBackend{dir: dir}
}

type dirBackend struct {
	dir string
}

func (b *dirBackend) OpenHandle(name string) (Handle, error) {
	if name == "" || strings.ContainsRune(name, '/') {
		return 0, fmt.Errorf("%w: invalid segment name %q", ErrNotFound, name)
	}
	fd, err := unix.Open(filepath.Join(b.dir, name), unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return 0, classifyErrno(err)
	}
	return Handle(fd), nil
}

func (b *dirBackend) MapView(h Handle, offset, size int) ([]byte, error) {
	if size == 0 {
		var st unix.Stat_t
		if err := unix.Fstat(int(h), &st); err != nil {
			return nil, fmt.Errorf("%w: fstat: %v", ErrMapFailed, err)
		}
		size = int(st.Size) - offset
		if size <= 0 {
			return nil, fmt.Errorf("%w: empty region", ErrMapFailed)
		}
	}
	data, err := unix.Mmap(int(h), int64(offset), size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapFailed, err)
	}
	return data, nil
}

func (b *dirBackend) Unmap(_ Handle, view []byte) error {
	err := unix.Munmap(view)
	if errors.Is(err, unix.EINVAL) {
		// Already unmapped.
		return nil
	}
	return err
}

func (b *dirBackend) CloseHandle(h Handle) error {
	return unix.Close(int(h))
}

func classifyErrno(err error) error {
	switch {
	case errors.Is(err, unix.ENOENT):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	default:
		return err
	}
}
