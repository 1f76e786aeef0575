//go:build windows

package cache

import (
	"errors"
	"os"
)

// tryLock relies on exclusive creation. A lock file left by a crashed
// process blocks the artifact until it is deleted.
func tryLock(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if errors.Is(err, os.ErrExist) {
		return nil, errHeld
	}
	return f, err
}

func release(path string, f *os.File) {
	_ = f.Close()
	_ = os.Remove(path)
}
