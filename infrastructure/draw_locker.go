package infrastructure

import (
	"context"
	"sync"
	"time"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
)

// LocalDrawLocker serializes work per draw within one process
type LocalDrawLocker struct {
	mu      sync.Mutex
	locks   map[int64]*drawLock
	maxWait time.Duration
}

type drawLock struct {
	ch      chan struct{}
	waiters int
}

// NewLocalDrawLocker creates an in-process locker. maxWait bounds how long
// Lock waits for a busy draw; zero waits until the context is done.
func NewLocalDrawLocker(maxWait time.Duration) *LocalDrawLocker {
	return &LocalDrawLocker{
		locks:   make(map[int64]*drawLock),
		maxWait: maxWait,
	}
}

// Lock blocks until the draw is free
func (l *LocalDrawLocker) Lock(ctx context.Context, drawID int64) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[drawID]
	if !ok {
		lock = &drawLock{ch: make(chan struct{}, 1)}
		l.locks[drawID] = lock
	}
	lock.waiters++
	l.mu.Unlock()

	if err := l.acquire(ctx, lock); err != nil {
		l.release(drawID, lock, false)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(drawID, lock, true) })
	}, nil
}

// acquire takes a free lock immediately, otherwise waits for it
func (l *LocalDrawLocker) acquire(ctx context.Context, lock *drawLock) error {
	select {
	case lock.ch <- struct{}{}:
		return nil
	default:
	}

	var timeout <-chan time.Time
	if l.maxWait > 0 {
		timer := time.NewTimer(l.maxWait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case lock.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout:
		return entities.ErrSettlementInProgress
	}
}

func (l *LocalDrawLocker) release(drawID int64, lock *drawLock, held bool) {
	if held {
		<-lock.ch
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.waiters--
	if lock.waiters == 0 {
		delete(l.locks, drawID)
	}
}

var _ interfaces.DrawLocker = (*LocalDrawLocker)(nil)
