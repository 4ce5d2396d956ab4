//go:build !unix && !windows

package shm

// Default returns a backend that fails every open with ErrUnsupported.
func Default(string) Backend {
	return unsupportedBackend{}
}

type unsupportedBackend struct{}

func (unsupportedBackend) OpenHandle(string) (Handle, error)        { return 0, ErrUnsupported }
func (unsupportedBackend) MapView(Handle, int, int) ([]byte, error) { return nil, ErrUnsupported }
func (unsupportedBackend) Unmap(Handle, []byte) error               { return ErrUnsupported }
func (unsupportedBackend) CloseHandle(Handle) error                 { return ErrUnsupported }
