// Package handler contains the connection handlers of the gorelay commands.
package handler

import (
	"fmt"
	"net"

	"dominicbreuker/gorelay/pkg/streamio"
	"dominicbreuker/gorelay/pkg/transport"
)

// Echo returns a handler that reads the peer's input in marker-delimited
// pieces and writes every piece straight back. A piece ends at the first
// read that completes marker, when bufSize bytes have accumulated, or when
// the peer stops sending. The handler returns nil once the peer closes.
func Echo(marker []byte, bufSize int) transport.Handler {
	return func(conn net.Conn) error {
		buf := make([]byte, bufSize)

		for {
			n, err := streamio.ReadUntil(conn, buf, marker)
			if err != nil {
				return fmt.Errorf("ReadUntil(): %w", err)
			}
			if n == 0 {
				return nil // peer closed
			}

			if _, err := streamio.WriteExact(conn, buf[:n]); err != nil {
				return fmt.Errorf("WriteExact(): %w", err)
			}
		}
	}
}
