package streamio

import (
	"errors"
	"io"
	"sync"
)

// chunkReader returns one chunk per Read call and io.EOF once all chunks are
// consumed. A nil chunk produces a (0, nil) read.
type chunkReader struct {
	chunks [][]byte
	err    error // returned instead of io.EOF when set
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}

	chunk := c.chunks[0]
	n := copy(p, chunk)
	if n < len(chunk) {
		c.chunks[0] = chunk[n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

// errorReader is a reader that returns a specific error immediately.
type errorReader struct {
	err error
}

func (e *errorReader) Read(p []byte) (n int, err error) {
	return 0, e.err
}

// emptyReader never makes progress.
type emptyReader struct{}

func (emptyReader) Read(p []byte) (int, error) {
	return 0, nil
}

// trickleWriter accepts at most max bytes per Write call.
type trickleWriter struct {
	max   int
	calls int
	data  []byte
	mu    sync.Mutex
}

func (w *trickleWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	n := len(p)
	if n > w.max {
		n = w.max
	}
	w.data = append(w.data, p[:n]...)
	return n, nil
}

// zeroWriter reports zero bytes written without an error.
type zeroWriter struct{}

func (zeroWriter) Write(p []byte) (int, error) {
	return 0, nil
}

// limitWriter accepts limit bytes in total and fails afterwards.
type limitWriter struct {
	limit int
	data  []byte
}

var errWriterFull = errors.New("writer full")

func (w *limitWriter) Write(p []byte) (int, error) {
	room := w.limit - len(w.data)
	if room <= 0 {
		return 0, errWriterFull
	}
	if len(p) > room {
		w.data = append(w.data, p[:room]...)
		return room, errWriterFull
	}
	w.data = append(w.data, p...)
	return len(p), nil
}
