package streamio

import (
	"io"
	"sync"
)

// ChunkSize is the largest amount of data Relay holds at any time.
const ChunkSize = 4096

var chunkPool = sync.Pool{
	New: func() any {
		return new([ChunkSize]byte)
	},
}

// Relay copies up to n bytes from src to dst one chunk at a time. Nothing is
// read from src before the previous chunk has been written to dst.
//
// If src ends before n bytes were moved, Relay returns the number of bytes
// moved and a nil error. If either side fails, the bytes already written stay
// delivered but the relay as a whole reports the failure.
func Relay(dst io.Writer, src io.Reader, n int64) (int64, error) {
	chunk := chunkPool.Get().(*[ChunkSize]byte)
	defer chunkPool.Put(chunk)

	var total int64
	for total < n {
		size := int64(ChunkSize)
		if n-total < size {
			size = n - total
		}

		got, err := readExact(src, chunk[:size], "relay read")
		if err != nil {
			return total, err
		}
		if got == 0 {
			break
		}

		w, err := writeExact(dst, chunk[:got], "relay write")
		total += int64(w)
		if err != nil {
			return total, err
		}

		if int64(got) < size {
			break // src ended mid-chunk
		}
	}
	return total, nil
}
