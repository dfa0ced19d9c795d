// Package streamio implements complete reads and writes over byte streams.
//
// Every function blocks the calling goroutine and works on a caller-owned
// buffer. None of them logs or retries: a failure ends the operation and is
// returned as a *TransferError. Running out of input is not a failure; the
// functions return the short count with a nil error and callers compare it
// with what they asked for.
package streamio

import "io"

// maxEmptyReads bounds the number of consecutive (0, nil) reads tolerated
// before giving up with io.ErrNoProgress.
const maxEmptyReads = 100

// ReadExact reads len(buf) bytes from r. If the stream ends first it returns
// the number of bytes read and a nil error.
func ReadExact(r io.Reader, buf []byte) (int, error) {
	return readExact(r, buf, "read")
}

func readExact(r io.Reader, buf []byte, op string) (int, error) {
	have, empty := 0, 0
	for have < len(buf) {
		n, err := r.Read(buf[have:])
		have += n

		switch {
		case err == io.EOF:
			return have, nil
		case err != nil:
			return have, &TransferError{Op: op, Err: err}
		case n == 0:
			empty++
			if empty >= maxEmptyReads {
				return have, &TransferError{Op: op, Err: io.ErrNoProgress}
			}
		default:
			empty = 0
		}
	}
	return have, nil
}

// WriteExact writes all of buf to w. A write that makes no progress is a
// failure even when w reports no error.
func WriteExact(w io.Writer, buf []byte) (int, error) {
	return writeExact(w, buf, "write")
}

func writeExact(w io.Writer, buf []byte, op string) (int, error) {
	off := 0
	for off < len(buf) {
		n, err := w.Write(buf[off:])
		if n > 0 {
			off += n
		}
		if err != nil {
			return off, &TransferError{Op: op, Err: err}
		}
		if n <= 0 {
			return off, &TransferError{Op: op, Err: io.ErrShortWrite}
		}
	}
	return off, nil
}
