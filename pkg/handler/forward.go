package handler

import (
	"context"
	"fmt"
	"net"

	"dominicbreuker/gorelay/pkg/log"
	"dominicbreuker/gorelay/pkg/pipeio"
	"dominicbreuker/gorelay/pkg/transport"
)

// DialFunc opens the upstream connection.
type DialFunc func(ctx context.Context) (net.Conn, error)

// Forward returns a handler that connects every accepted connection to a new
// upstream connection and relays at most limit bytes in each direction
// (limit <= 0: no limit).
func Forward(ctx context.Context, dial DialFunc, limit int64, logger *log.Logger) transport.Handler {
	return func(conn net.Conn) error {
		upstream, err := dial(ctx)
		if err != nil {
			return fmt.Errorf("dialing upstream: %w", err)
		}
		defer upstream.Close()

		logger.VerboseMsg("Relaying %s <-> %s", conn.RemoteAddr(), upstream.RemoteAddr())

		stats := pipeio.Pipe(ctx, conn, upstream, limit, func(err error) {
			logger.ErrorMsg("Pipe(%s, %s): %s\n", conn.RemoteAddr(), upstream.RemoteAddr(), err)
		})

		logger.VerboseMsg("Relayed %d bytes to and %d bytes from %s", stats.Forward, stats.Backward, upstream.RemoteAddr())
		return nil
	}
}
