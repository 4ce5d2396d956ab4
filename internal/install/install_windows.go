//go:build windows

package install

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

func lookup() (string, error) {
	for _, path := range []string{KeyPath, wow64Path} {
		dir, err := readValue(path)
		if err == nil && dir != "" {
			return dir, nil
		}
		if err != nil && !errors.Is(err, windows.ERROR_FILE_NOT_FOUND) {
			return "", fmt.Errorf("install: read HKLM\\%s: %w", path, err)
		}
	}
	return "", ErrNotInstalled
}

func readValue(path string) (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	v, _, err := k.GetStringValue(ValueName)
	if err != nil {
		return "", err
	}
	return clean(v), nil
}
