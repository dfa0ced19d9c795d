package streamio

import (
	"bytes"
	"io"
)

// ReadUntil reads from r into buf until marker appears in the bytes read so
// far, buf is full, or the stream ends. It returns the number of bytes
// accumulated, marker included when found. Callers locate the marker with
// bytes.Index on buf[:n].
//
// An empty marker matches as soon as the first read returns data.
func ReadUntil(r io.Reader, buf []byte, marker []byte) (int, error) {
	have, empty := 0, 0
	for have < len(buf) {
		n, err := r.Read(buf[have:])
		if n > 0 {
			// a match may straddle the previous read, so back up by len(marker)-1
			from := have - len(marker) + 1
			if from < 0 {
				from = 0
			}
			have += n
			empty = 0

			if bytes.Contains(buf[from:have], marker) {
				return have, nil
			}
		}

		switch {
		case err == io.EOF:
			return have, nil
		case err != nil:
			return have, &TransferError{Op: "read until", Err: err}
		case n == 0:
			empty++
			if empty >= maxEmptyReads {
				return have, &TransferError{Op: "read until", Err: io.ErrNoProgress}
			}
		}
	}
	return have, nil
}
