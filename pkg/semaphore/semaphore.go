// Package semaphore limits the number of connections served at once.
package semaphore

import (
	"context"
	"fmt"
	"time"
)

// ConnSemaphore hands out a fixed number of connection slots. A nil
// *ConnSemaphore has unlimited slots.
type ConnSemaphore struct {
	sem     chan struct{}
	timeout time.Duration
}

// New creates a semaphore with n slots. Acquire gives up after timeout.
// For n <= 0 it returns nil, which never blocks.
func New(n int, timeout time.Duration) *ConnSemaphore {
	if n <= 0 {
		return nil
	}

	sem := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		sem <- struct{}{}
	}
	return &ConnSemaphore{sem: sem, timeout: timeout}
}

// Acquire takes a slot, waiting at most the semaphore's timeout.
func (s *ConnSemaphore) Acquire(ctx context.Context) error {
	if s == nil {
		return nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	select {
	case <-s.sem:
		return nil
	case <-timeoutCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("no free connection slot after %v", s.timeout)
	}
}

// TryAcquire takes a slot if one is free right now.
func (s *ConnSemaphore) TryAcquire() bool {
	if s == nil {
		return true
	}

	select {
	case <-s.sem:
		return true
	default:
		return false
	}
}

// Release returns a slot.
func (s *ConnSemaphore) Release() {
	if s == nil {
		return
	}
	s.sem <- struct{}{}
}

// Available returns the number of free slots, or -1 if unlimited.
func (s *ConnSemaphore) Available() int {
	if s == nil {
		return -1
	}
	return len(s.sem)
}
