package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrLocked is returned when another process keeps an artifact locked for
// longer than the caller is willing to wait.
var ErrLocked = errors.New("artifact is being stored by another process")

// errHeld is what tryLock reports while someone else holds the lock.
var errHeld = errors.New("lock held")

const lockPoll = 50 * time.Millisecond

// Lock guards one cache path while an artifact is promoted onto it. The lock
// file sits next to the artifact and names the holder.
type Lock struct {
	path string
	file *os.File
}

func lockPath(artifact string) string {
	return artifact + ".lock"
}

// LockArtifact locks artifact's cache path, polling for up to wait while
// another process holds it. Stores of different artifacts in the same
// directory do not contend.
func LockArtifact(artifact string, wait time.Duration) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(artifact), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	path := lockPath(artifact)
	deadline := time.Now().Add(wait)
	for {
		f, err := tryLock(path)
		if err == nil {
			l := &Lock{path: path, file: f}
			if err := l.writeHolder(); err != nil {
				l.Release()
				return nil, err
			}
			return l, nil
		}
		if !errors.Is(err, errHeld) {
			return nil, fmt.Errorf("locking %s: %w", filepath.Base(artifact), err)
		}
		if !time.Now().Before(deadline) {
			if pid := Holder(artifact); pid != 0 {
				return nil, fmt.Errorf("%w (%s, pid %d)", ErrLocked, filepath.Base(artifact), pid)
			}
			return nil, fmt.Errorf("%w (%s)", ErrLocked, filepath.Base(artifact))
		}
		time.Sleep(lockPoll)
	}
}

func (l *Lock) writeHolder() error {
	if err := l.file.Truncate(0); err != nil {
		return fmt.Errorf("truncating lock file: %w", err)
	}
	if _, err := l.file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0); err != nil {
		return fmt.Errorf("writing lock holder: %w", err)
	}
	return nil
}

// Holder returns the pid recorded in artifact's lock file, or 0 when the
// artifact is not locked or the file is unreadable.
func Holder(artifact string) int {
	data, err := os.ReadFile(lockPath(artifact))
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

// Release removes the lock file and drops the lock. It is safe on nil.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	release(l.path, l.file)
	l.file = nil
}
