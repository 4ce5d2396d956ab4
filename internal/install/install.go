// Package install locates the MSI Afterburner installation directory.
package install

import (
	"errors"
	"strings"
)

// Registry location written by the Afterburner installer under
// HKEY_LOCAL_MACHINE.
const (
	KeyPath   = `SOFTWARE\MSI\Afterburner`
	ValueName = "InstallPath"
	wow64Path = `SOFTWARE\WOW6432Node\MSI\Afterburner`
)

var (
	// ErrNotInstalled indicates no installation was recorded.
	ErrNotInstalled = errors.New("install: MSI Afterburner not found")
	// ErrUnsupported indicates a platform without a registry.
	ErrUnsupported = errors.New("install: unsupported platform")
)

// Path returns the installation directory.
func Path() (string, error) {
	return lookup()
}

// clean normalises a registry path value: surrounding quotes, whitespace and
// trailing separators are dropped.
func clean(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"`)
	if len(v) > 3 || !strings.HasSuffix(v, `:\`) {
		v = strings.TrimRight(v, `\/`)
	}
	return v
}
