package config

import (
	"context"
	"io"
	"net"
	"os"
	"time"
)

// Dependencies contains injectable dependencies for testing and customization.
// All fields are optional and will use default implementations if nil.
type Dependencies struct {
	TCPListener TCPListenerFunc
	TCPDialer   TCPDialerFunc
	Stdin       StdinFunc
	Stdout      StdoutFunc
}

// TCPListenerFunc creates a passive TCP socket on all interfaces.
// It returns a net.Listener to allow for mock implementations.
type TCPListenerFunc func(port uint16) (net.Listener, error)

// TCPDialerFunc is a function that dials a TCP connection.
type TCPDialerFunc func(ctx context.Context, addr string) (net.Conn, error)

// StdinFunc is a function that returns a reader for stdin.
type StdinFunc func() io.Reader

// StdoutFunc is a function that returns a writer for stdout.
type StdoutFunc func() io.Writer

// GetTCPListenerFunc returns the listener function from deps, or fallback
// if deps does not provide one.
func GetTCPListenerFunc(deps *Dependencies, fallback TCPListenerFunc) TCPListenerFunc {
	if deps != nil && deps.TCPListener != nil {
		return deps.TCPListener
	}
	return fallback
}

// GetTCPDialerFunc returns the TCP dialer function from dependencies, or a default implementation
// that dials with a net.Dialer and the given timeout.
func GetTCPDialerFunc(deps *Dependencies, timeout time.Duration) TCPDialerFunc {
	if deps != nil && deps.TCPDialer != nil {
		return deps.TCPDialer
	}
	return func(ctx context.Context, addr string) (net.Conn, error) {
		d := net.Dialer{Timeout: timeout}
		return d.DialContext(ctx, "tcp", addr)
	}
}

// GetStdinFunc returns the stdin function from dependencies, or a default implementation.
// If deps is nil or deps.Stdin is nil, returns a function that uses os.Stdin.
func GetStdinFunc(deps *Dependencies) StdinFunc {
	if deps != nil && deps.Stdin != nil {
		return deps.Stdin
	}
	return func() io.Reader {
		return os.Stdin
	}
}

// GetStdoutFunc returns the stdout function from dependencies, or a default implementation.
// If deps is nil or deps.Stdout is nil, returns a function that uses os.Stdout.
func GetStdoutFunc(deps *Dependencies) StdoutFunc {
	if deps != nil && deps.Stdout != nil {
		return deps.Stdout
	}
	return func() io.Writer {
		return os.Stdout
	}
}
