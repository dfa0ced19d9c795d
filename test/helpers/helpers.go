// Package helpers provides common utilities for end-to-end tests.
package helpers

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	mocks_tcp "dominicbreuker/gorelay/mocks/tcp"
	"dominicbreuker/gorelay/pkg/config"
)

// Setup bundles an in-memory network with stdio replacements.
type Setup struct {
	TCPNetwork *mocks_tcp.MockTCPNetwork
	Deps       *config.Dependencies

	StdinWriter *os.File
	Stdout      *SyncBuffer

	stdin *os.File
}

// SetupMockDependencies creates dependencies that route all listeners and
// dials through one mock network. Stdin is a real pipe so that reads can be
// cancelled; stdout is collected in memory.
func SetupMockDependencies(t *testing.T) *Setup {
	t.Helper()

	stdin, stdinW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe(): %s", err)
	}

	s := &Setup{
		TCPNetwork:  mocks_tcp.NewMockTCPNetwork(),
		StdinWriter: stdinW,
		Stdout:      &SyncBuffer{},
		stdin:       stdin,
	}
	s.Deps = &config.Dependencies{
		TCPListener: s.TCPNetwork.Listen,
		TCPDialer:   s.TCPNetwork.DialContext,
		Stdin:       func() io.Reader { return s.stdin },
		Stdout:      func() io.Writer { return s.Stdout },
	}

	t.Cleanup(s.Close)
	return s
}

// Close releases the stdin pipe.
func (s *Setup) Close() {
	s.StdinWriter.Close()
	s.stdin.Close()
}

// SyncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything written so far.
func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// WaitFor polls b until it contains s or timeout expires.
func (b *SyncBuffer) WaitFor(s string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if strings.Contains(b.String(), s) {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
