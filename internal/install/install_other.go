//go:build !windows

package install

func lookup() (string, error) {
	return "", ErrUnsupported
}
