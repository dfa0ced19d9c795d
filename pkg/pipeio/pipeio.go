// Package pipeio connects two byte streams in both directions.
package pipeio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"sync"
	"syscall"

	"github.com/muesli/cancelreader"
)

// Stats reports how many bytes went in each direction.
type Stats struct {
	Forward  int64 // rwc1 -> rwc2
	Backward int64 // rwc2 -> rwc1
}

// Pipe copies data in both directions until either direction finishes, limit
// bytes went one way, or ctx is cancelled. Both streams are closed before Pipe
// returns. limit <= 0 means no limit. Errors other than the ones caused by the
// shutdown itself are passed to logfunc.
func Pipe(ctx context.Context, rwc1 io.ReadWriteCloser, rwc2 io.ReadWriteCloser, limit int64, logfunc func(error)) Stats {
	if limit <= 0 {
		limit = math.MaxInt64
	}

	var (
		stats Stats
		wg    sync.WaitGroup
		once  sync.Once
		done  = make(chan struct{})
	)

	closeBoth := func() {
		once.Do(func() {
			rwc1.Close()
			rwc2.Close()
			close(done)
		})
	}

	relay := func(dst io.Writer, src io.Reader, moved *int64, name string) {
		defer wg.Done()
		defer closeBoth()

		n, err := io.Copy(dst, io.LimitReader(src, limit))
		*moved = n
		if err != nil && !ignorable(err) {
			logfunc(fmt.Errorf("%s: %w", name, err))
		}
	}

	wg.Add(2)
	go relay(rwc2, rwc1, &stats.Forward, "relay(rwc2, rwc1)")
	go relay(rwc1, rwc2, &stats.Backward, "relay(rwc1, rwc2)")

	select {
	case <-ctx.Done():
		closeBoth()
	case <-done:
	}

	wg.Wait()
	return stats
}

func ignorable(err error) bool {
	return errors.Is(err, cancelreader.ErrCanceled) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
