package tcp

import (
	"net"
	"time"
)

// idleConn re-arms a deadline before every Read and Write, so a direction
// fails once it has been idle for longer than timeout.
type idleConn struct {
	net.Conn
	timeout time.Duration
}

func newIdleConn(conn net.Conn, timeout time.Duration) net.Conn {
	if timeout <= 0 {
		return conn
	}
	return &idleConn{Conn: conn, timeout: timeout}
}

// Read ignores a failure to set the deadline: a conn whose peer has gone away
// may refuse it (net.Pipe does), and the Read itself then reports io.EOF.
func (c *idleConn) Read(b []byte) (int, error) {
	c.Conn.SetReadDeadline(time.Now().Add(c.timeout))
	return c.Conn.Read(b)
}

func (c *idleConn) Write(b []byte) (int, error) {
	c.Conn.SetWriteDeadline(time.Now().Add(c.timeout))
	return c.Conn.Write(b)
}
