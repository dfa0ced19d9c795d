package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"dominicbreuker/gorelay/pkg/config"
)

// Dial connects to addr with keep-alive enabled and gives the connection the
// same idle timeout as accepted connections. The timeout also bounds
// connection setup.
func Dial(ctx context.Context, addr string, timeout time.Duration, deps *config.Dependencies) (net.Conn, error) {
	dial := config.GetTCPDialerFunc(deps, timeout)

	conn, err := dial(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("dial(tcp, %s): %w", addr, err)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetKeepAlive(true)
	}

	return newIdleConn(conn, timeout), nil
}
