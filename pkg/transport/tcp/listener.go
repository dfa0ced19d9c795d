// Package tcp provides the passive TCP socket and the connection acceptor.
package tcp

import (
	"errors"
	"fmt"
	"net"
	"time"

	"dominicbreuker/gorelay/pkg/config"
)

// Backlog is the number of pending connections the kernel queues for a Listener.
const Backlog = 128

// IdleTimeout is applied to both directions of every accepted connection.
const IdleTimeout = 5 * time.Second

// ErrListenerInit matches every failure to create, bind or activate a listener.
var ErrListenerInit = errors.New("listener initialization failed")

// ErrAccept matches every failure of Listener.Accept.
var ErrAccept = errors.New("accept failed")

// Listener is a passive TCP socket bound to all local interfaces.
// Accept may be called from several goroutines at once.
type Listener struct {
	nl      net.Listener
	timeout time.Duration
}

// NewListener creates a socket listening on port on all interfaces. Port 0
// picks an ephemeral port; use Addr to find out which. The caller owns the
// returned Listener and must Close it.
func NewListener(port uint16, deps *config.Dependencies) (*Listener, error) {
	listen := config.GetTCPListenerFunc(deps, listenTCP)

	nl, err := listen(port)
	if err != nil {
		return nil, fmt.Errorf("%w: port %d: %w", ErrListenerInit, port, err)
	}

	return &Listener{
		nl:      nl,
		timeout: IdleTimeout,
	}, nil
}

// SetIdleTimeout changes the idle timeout given to connections accepted from
// now on. It must not be called concurrently with Accept.
func (l *Listener) SetIdleTimeout(d time.Duration) {
	l.timeout = d
}

// Accept blocks until a connection arrives and returns it with the idle
// timeout applied. Failures are returned as is, wrapped in ErrAccept; the
// caller decides whether to accept again.
func (l *Listener) Accept() (net.Conn, error) {
	conn, err := l.nl.Accept()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAccept, err)
	}

	return newIdleConn(conn, l.timeout), nil
}

// Addr returns the address the listener is bound to.
func (l *Listener) Addr() net.Addr {
	return l.nl.Addr()
}

// Port returns the port the listener is bound to, or 0 if the address is
// not a TCP address.
func (l *Listener) Port() int {
	if addr, ok := l.nl.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// Close releases the socket. Blocked Accept calls return an error matching
// net.ErrClosed.
func (l *Listener) Close() error {
	return l.nl.Close()
}
