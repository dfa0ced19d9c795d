package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"dominicbreuker/gorelay/pkg/streamio"
	"dominicbreuker/gorelay/pkg/transport"
)

// ErrBadHeader is returned when a frame header cannot be parsed.
var ErrBadHeader = errors.New("bad frame header")

// Frames returns a handler for length-prefixed messages. A message is a
// decimal payload length terminated by marker, followed by exactly that many
// payload bytes. The payload is sent back to the peer, the header is not.
// Headers longer than maxHeader bytes are rejected.
func Frames(marker []byte, maxHeader int) transport.Handler {
	return func(conn net.Conn) error {
		hdr := make([]byte, maxHeader)
		var src io.Reader = conn

		for {
			n, err := streamio.ReadUntil(src, hdr, marker)
			if err != nil {
				return fmt.Errorf("ReadUntil(): %w", err)
			}
			if n == 0 {
				return nil // peer closed between frames
			}

			end := bytes.Index(hdr[:n], marker)
			if end < 0 {
				return fmt.Errorf("header %q: %w", hdr[:n], ErrBadHeader)
			}
			size, err := strconv.ParseInt(string(bytes.TrimSpace(hdr[:end])), 10, 64)
			if err != nil || size < 0 {
				return fmt.Errorf("header %q: %w", hdr[:end], ErrBadHeader)
			}

			// ReadUntil may have consumed the start of the payload already
			rest := bytes.Clone(hdr[end+len(marker) : n])
			src = io.MultiReader(bytes.NewReader(rest), src)

			moved, err := streamio.Relay(conn, src, size)
			if err != nil {
				return fmt.Errorf("Relay(%d): %w", size, err)
			}
			if moved < size {
				return nil // peer closed mid-payload
			}
		}
	}
}
