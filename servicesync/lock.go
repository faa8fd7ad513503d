package servicesync

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
)

const runLockKey = "sync:services:run"

// RunLock keeps two sync runs from reconciling the same tables at once. A
// RunLock without a lock client does nothing.
type RunLock struct {
	client *redislock.Client
	ttl    time.Duration
	lock   *redislock.Lock
}

func NewRunLock(client *redislock.Client, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RunLock{client: client, ttl: ttl}
}

// Acquire returns ErrRunLocked when another run holds the lock.
func (l *RunLock) Acquire(ctx context.Context) error {
	if l == nil || l.client == nil {
		return nil
	}
	lock, err := l.client.Obtain(ctx, runLockKey, l.ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return ErrRunLocked
		}
		return err
	}
	l.lock = lock
	return nil
}

func (l *RunLock) Release(ctx context.Context) error {
	if l == nil || l.lock == nil {
		return nil
	}
	err := l.lock.Release(ctx)
	l.lock = nil
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}
