package semaphore

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		n       int
		wantNil bool
	}{
		{"unlimited", 0, true},
		{"negative", -1, true},
		{"one slot", 1, false},
		{"many slots", 100, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sem := New(tc.n, time.Second)
			if (sem == nil) != tc.wantNil {
				t.Fatalf("New(%d) nil = %t, want %t", tc.n, sem == nil, tc.wantNil)
			}
			if sem != nil && sem.Available() != tc.n {
				t.Errorf("Available() = %d, want %d", sem.Available(), tc.n)
			}
		})
	}
}

func TestAcquireRelease(t *testing.T) {
	t.Parallel()

	sem := New(2, time.Second)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := sem.Acquire(ctx); err != nil {
			t.Fatalf("Acquire() %d failed: %v", i, err)
		}
	}
	if sem.TryAcquire() {
		t.Error("TryAcquire() on exhausted semaphore = true")
	}

	sem.Release()
	if !sem.TryAcquire() {
		t.Error("TryAcquire() after Release() = false")
	}

	sem.Release()
	sem.Release()
	if sem.Available() != 2 {
		t.Errorf("Available() = %d, want 2", sem.Available())
	}
}

func TestAcquireTimeout(t *testing.T) {
	t.Parallel()

	sem := New(1, 100*time.Millisecond)
	ctx := context.Background()

	if err := sem.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}

	start := time.Now()
	err := sem.Acquire(ctx)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Acquire() should have timed out but succeeded")
	}
	if elapsed < 90*time.Millisecond || elapsed > time.Second {
		t.Errorf("timeout took %v; want ~100ms", elapsed)
	}
	if err.Error() != "no free connection slot after 100ms" {
		t.Errorf("error = %q; want timeout message", err)
	}
}

func TestAcquireContextCancellation(t *testing.T) {
	t.Parallel()

	sem := New(1, 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	if err := sem.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}

	cancel()
	if err := sem.Acquire(ctx); err != context.Canceled {
		t.Errorf("error = %v; want context.Canceled", err)
	}
}

func TestNilSemaphore(t *testing.T) {
	t.Parallel()

	var sem *ConnSemaphore
	if err := sem.Acquire(context.Background()); err != nil {
		t.Errorf("Acquire() on nil semaphore failed: %v", err)
	}
	if !sem.TryAcquire() {
		t.Error("TryAcquire() on nil semaphore = false")
	}
	sem.Release()
	if sem.Available() != -1 {
		t.Errorf("Available() = %d, want -1", sem.Available())
	}
}

func TestConcurrentAcquireRelease(t *testing.T) {
	t.Parallel()

	const (
		capacity   = 10
		goroutines = 50
		iterations = 20
	)

	sem := New(capacity, time.Second)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, goroutines*iterations)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if err := sem.Acquire(ctx); err != nil {
					errs <- err
					return
				}
				time.Sleep(time.Microsecond)
				sem.Release()
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent operation failed: %v", err)
	}
	if sem.Available() != capacity {
		t.Errorf("Available() = %d; want %d", sem.Available(), capacity)
	}
}
