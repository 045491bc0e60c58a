package memory

import (
	"context"
	"sync"
	"time"
)

const lockRetryInterval = 5 * time.Millisecond

// LockManager provides in-memory named locks with TTL-based expiration. The
// TTL guarantees a lock whose holder forgot to unlock (or panicked) frees
// itself eventually. It only coordinates goroutines of a single process.
//
// Go Learning Note — Channels for Signaling:
// The `stop` field is a `chan struct{}` used purely for signaling; closing it
// wakes every receiver at once, which is how Stop ends the cleanup goroutine.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]time.Time // key -> expiry
	stop  chan struct{}
	once  sync.Once
}

// NewLockManager creates a LockManager and starts a background goroutine
// that sweeps expired locks.
func NewLockManager() *LockManager {
	lm := &LockManager{
		locks: make(map[string]time.Time),
		stop:  make(chan struct{}),
	}
	go lm.cleanupExpiredLocks()
	return lm
}

// TryLock acquires key if it is free or expired and reports whether it did.
func (lm *LockManager) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	now := time.Now()
	if expiresAt, held := lm.locks[key]; held && now.Before(expiresAt) {
		return false, nil
	}
	lm.locks[key] = now.Add(ttl)
	return true, nil
}

// Lock blocks until key is acquired or ctx is done.
func (lm *LockManager) Lock(ctx context.Context, key string, ttl time.Duration) error {
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := lm.TryLock(ctx, key, ttl)
		if err != nil || ok {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Unlock releases key before its TTL expires.
func (lm *LockManager) Unlock(ctx context.Context, key string) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	delete(lm.locks, key)
	return nil
}

// IsLocked checks whether key is currently held and not expired.
func (lm *LockManager) IsLocked(ctx context.Context, key string) (bool, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	expiresAt, held := lm.locks[key]
	return held && time.Now().Before(expiresAt), nil
}

func (lm *LockManager) cleanupExpiredLocks() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lm.mu.Lock()
			now := time.Now()
			for key, expiresAt := range lm.locks {
				if now.After(expiresAt) {
					delete(lm.locks, key)
				}
			}
			lm.mu.Unlock()
		case <-lm.stop:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (lm *LockManager) Stop() {
	lm.once.Do(func() { close(lm.stop) })
}
