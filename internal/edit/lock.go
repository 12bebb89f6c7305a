package edit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryDelay is how often a contended lock is retried.
const lockRetryDelay = 25 * time.Millisecond

// FileLock is a cross-process lock guarding edits to one target file.
// The lock file lives under the system temp dir, keyed by the target's
// absolute path, so no lock files appear inside the workspace.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewFileLock creates the lock for target. It does not acquire it.
// A symlink and the file it points at share one lock.
func NewFileLock(target string) (*FileLock, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolve lock target: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	sum := sha256.Sum256([]byte(abs))
	lockPath := filepath.Join(lockDir(), hex.EncodeToString(sum[:8])+".lock")
	return &FileLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}, nil
}

func lockDir() string {
	return filepath.Join(os.TempDir(), "yamlpick-locks")
}

// Lock acquires the lock, retrying until it is free or timeout elapses.
// A non-positive timeout makes a single attempt.
func (l *FileLock) Lock(timeout time.Duration) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	if timeout <= 0 {
		ok, err := l.flock.TryLock()
		if err != nil {
			return false, fmt.Errorf("failed to acquire lock: %w", err)
		}
		l.locked = ok
		return ok, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ok, err := l.flock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	l.locked = ok
	return ok, nil
}

// Unlock releases the lock. Calling it on an unlocked FileLock is a no-op.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}
