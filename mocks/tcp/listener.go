package tcp

import (
	"fmt"
	"net"
	"sync"
)

// MockTCPListener is a mock implementation of net.Listener.
type MockTCPListener struct {
	addr    *net.TCPAddr
	connCh  chan net.Conn
	closeCh chan struct{}
	closed  bool
	mu      sync.Mutex
	network *MockTCPNetwork
}

// Accept waits for and returns the next connection to the listener.
func (l *MockTCPListener) Accept() (net.Conn, error) {
	select {
	case conn := <-l.connCh:
		return conn, nil
	case <-l.closeCh:
		return nil, fmt.Errorf("accept tcp %s: %w", l.addr, net.ErrClosed)
	}
}

// Close closes the listener and frees its port.
func (l *MockTCPListener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	close(l.closeCh)
	l.network.remove(l.addr.Port)

	return nil
}

// Addr returns the listener's network address.
func (l *MockTCPListener) Addr() net.Addr {
	return l.addr
}

var _ net.Listener = (*MockTCPListener)(nil)
