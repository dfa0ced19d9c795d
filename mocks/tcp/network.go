// Package tcp provides an in-memory TCP network for tests.
package tcp

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

// firstEphemeralPort is handed out for the first listener created on port 0.
const firstEphemeralPort = 40000

// MockTCPNetwork simulates a TCP network for testing without real network connections.
// Listeners are keyed by port; dialed connections are net.Pipe pairs, so
// deadlines behave like on real sockets.
type MockTCPNetwork struct {
	listeners    map[int]*MockTCPListener
	nextPort     int
	mu           sync.Mutex
	listenerCond *sync.Cond // signalled when a listener is added
}

// NewMockTCPNetwork creates a new mock TCP network.
func NewMockTCPNetwork() *MockTCPNetwork {
	m := &MockTCPNetwork{
		listeners: make(map[int]*MockTCPListener),
		nextPort:  firstEphemeralPort,
	}
	m.listenerCond = sync.NewCond(&m.mu)
	return m
}

// Listen creates a mock listener on port. Its signature matches
// config.TCPListenerFunc.
func (m *MockTCPNetwork) Listen(port uint16) (net.Listener, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := int(port)
	if p == 0 {
		for m.listeners[m.nextPort] != nil {
			m.nextPort++
		}
		p = m.nextPort
		m.nextPort++
	}

	if _, exists := m.listeners[p]; exists {
		return nil, fmt.Errorf("bind(0.0.0.0:%d): address already in use", p)
	}

	listener := &MockTCPListener{
		addr:    &net.TCPAddr{IP: net.IPv4zero, Port: p},
		connCh:  make(chan net.Conn, 10),
		closeCh: make(chan struct{}),
		network: m,
	}
	m.listeners[p] = listener
	m.listenerCond.Broadcast()

	return listener, nil
}

// DialContext connects to the listener on the port of addr. Its signature
// matches config.TCPDialerFunc.
func (m *MockTCPNetwork) DialContext(ctx context.Context, addr string) (net.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	port, err := portOf(addr)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	listener, exists := m.listeners[port]
	m.mu.Unlock()

	if !exists {
		return nil, fmt.Errorf("connection refused: no listener on port %d", port)
	}

	laddr := &net.TCPAddr{
		IP:   net.IPv4(127, 0, 0, 1),
		Port: 50000 + (int(time.Now().UnixNano()) % 10000), // mock ephemeral port
	}
	raddr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}

	clientConn, serverConn := net.Pipe()
	mockClient := &pipeConn{Conn: clientConn, local: laddr, remote: raddr}
	mockServer := &pipeConn{Conn: serverConn, local: raddr, remote: laddr}

	select {
	case listener.connCh <- mockServer:
	case <-listener.closeCh:
		clientConn.Close()
		serverConn.Close()
		return nil, fmt.Errorf("connection refused: listener closed")
	case <-ctx.Done():
		clientConn.Close()
		serverConn.Close()
		return nil, ctx.Err()
	case <-time.After(1 * time.Second):
		clientConn.Close()
		serverConn.Close()
		return nil, fmt.Errorf("connection timeout")
	}

	return mockClient, nil
}

// Dial is DialContext without a context.
func (m *MockTCPNetwork) Dial(addr string) (net.Conn, error) {
	return m.DialContext(context.Background(), addr)
}

// WaitForListener waits for a listener on port within timeoutMs milliseconds.
func (m *MockTCPNetwork) WaitForListener(port int, timeoutMs int) (*MockTCPListener, error) {
	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)

	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		if l, exists := m.listeners[port]; exists {
			return l, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout waiting for listener on port %d", port)
		}

		// wake up periodically to re-check the deadline
		go func() {
			time.Sleep(50 * time.Millisecond)
			m.listenerCond.Broadcast()
		}()
		m.listenerCond.Wait()
	}
}

func (m *MockTCPNetwork) remove(port int) {
	m.mu.Lock()
	delete(m.listeners, port)
	m.mu.Unlock()
}

func portOf(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("net.SplitHostPort(%s): %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("parsing port of %s: %w", addr, err)
	}
	return port, nil
}

// pipeConn is one end of a net.Pipe that reports TCP addresses, so code
// logging RemoteAddr sees host:port like on a real socket.
type pipeConn struct {
	net.Conn
	local, remote *net.TCPAddr
}

func (c *pipeConn) LocalAddr() net.Addr  { return c.local }
func (c *pipeConn) RemoteAddr() net.Addr { return c.remote }
