// Package lock serializes mintkey runs that edit the same file. Locks are
// advisory flock(2) locks on a file in the system temp directory, so a
// crashed holder never leaves a stale lock behind.
package lock

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"github.com/modelmint/mintkey/internal/errors"
)

// retryDelay is how often a blocked Acquire re-polls the lock.
const retryDelay = 50 * time.Millisecond

// Lock represents an acquired lock on a target file.
type Lock struct {
	Path string    // The lock file
	Info *LockInfo // Info about the lock holder (us)
	fl   *flock.Flock
}

// LockPath returns the lock file used for target. It is named after a hash
// of the path so no artifact is left next to the target.
func LockPath(target string) string {
	h := sha256.Sum256([]byte(target))
	return filepath.Join(os.TempDir(), fmt.Sprintf("mintkey-%x.lock", h[:8]))
}

// infoPath is where the holder writes its LockInfo.
func infoPath(lockPath string) string {
	return lockPath + ".json"
}

// Acquire waits for the lock on target. A positive timeout bounds the wait;
// otherwise only ctx does.
func Acquire(ctx context.Context, target string, timeout time.Duration, command string) (*Lock, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	path := LockPath(target)
	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil || !locked {
		if err == nil {
			err = ctx.Err()
		}
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Couldn't lock %s within %s", target, timeout),
			fmt.Sprintf("Lock held by: %s. Retry once it finishes, or pass --no-lock", Holder(target)))
	}

	return newLock(fl, path, command), nil
}

// TryAcquire takes the lock without waiting. It returns ErrLocked when
// another process holds it.
func TryAcquire(target, command string) (*Lock, error) {
	path := LockPath(target)
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Failed to lock %s", target),
			"Check that the temp directory is writable")
	}
	if !locked {
		return nil, ErrLocked
	}
	return newLock(fl, path, command), nil
}

func newLock(fl *flock.Flock, path, command string) *Lock {
	info := NewLockInfo(command)
	if data, err := info.Marshal(); err == nil {
		_ = renameio.WriteFile(infoPath(path), data, 0644) //nolint:errcheck // Holder info is advisory
	}
	return &Lock{Path: path, Info: info, fl: fl}
}

// Release drops the lock, allowing others to acquire it.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil // Nothing to release
	}
	_ = os.Remove(infoPath(l.Path)) //nolint:errcheck // Stale info is ignored once the lock is free
	return l.fl.Unlock()
}

// IsLocked reports whether another process currently holds the lock on target.
func IsLocked(target string) bool {
	fl := flock.New(LockPath(target))
	locked, err := fl.TryLock()
	if err != nil {
		return false
	}
	if locked {
		_ = fl.Unlock() //nolint:errcheck // Probe only
		return false
	}
	return true
}

// Holder returns a description of who holds the lock on target, or
// "unknown" when the holder wrote no info.
func Holder(target string) string {
	data, err := os.ReadFile(infoPath(LockPath(target)))
	if err != nil {
		return "unknown"
	}
	info, err := ParseLockInfo(data)
	if err != nil {
		return "unknown"
	}
	return info.String()
}
