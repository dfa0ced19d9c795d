package log

import (
	"fmt"
	"net"
	"os"
	"sync"
)

// loggedConn wraps a net.Conn and copies all traffic into a file.
type loggedConn struct {
	net.Conn
	logFile *os.File
	mu      sync.Mutex
}

func (lc *loggedConn) Read(b []byte) (int, error) {
	n, err := lc.Conn.Read(b)
	if n > 0 {
		if werr := lc.record(b[:n]); werr != nil {
			return n, fmt.Errorf("logging read: %w", werr)
		}
	}
	return n, err
}

func (lc *loggedConn) Write(b []byte) (int, error) {
	n, err := lc.Conn.Write(b)
	if n > 0 {
		if werr := lc.record(b[:n]); werr != nil {
			return n, fmt.Errorf("logging write: %w", werr)
		}
	}
	return n, err
}

func (lc *loggedConn) record(b []byte) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	_, err := lc.logFile.Write(b)
	return err
}

// Close closes the connection and the log file.
func (lc *loggedConn) Close() error {
	err := lc.Conn.Close()
	lc.mu.Lock()
	lc.logFile.Close()
	lc.mu.Unlock()
	return err
}

// NewLoggedConn wraps a network connection to log all data read from and written to it.
// The log file is created or appended to at the specified path.
func NewLoggedConn(conn net.Conn, logFilePath string) (net.Conn, error) {
	logFile, err := os.OpenFile(logFilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("os.OpenFile(%s): %w", logFilePath, err)
	}

	return &loggedConn{Conn: conn, logFile: logFile}, nil
}
