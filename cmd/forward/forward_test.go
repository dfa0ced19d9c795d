package forward

import (
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	mocks_tcp "dominicbreuker/gorelay/mocks/tcp"
	"dominicbreuker/gorelay/pkg/config"
	"dominicbreuker/gorelay/pkg/log"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()
	if cmd.Name != "forward" {
		t.Errorf("command name = %q; want %q", cmd.Name, "forward")
	}

	flagNames := make(map[string]bool)
	for _, flag := range cmd.Flags {
		flagNames[flag.Names()[0]] = true
	}
	for _, name := range []string{toFlag, limitFlag, "port", "timeout"} {
		if !flagNames[name] {
			t.Errorf("expected flag %q not found", name)
		}
	}
}

func TestGetCommand_InvalidArguments(t *testing.T) {
	t.Parallel()

	tests := [][]string{
		{"forward", "-p", "7300", "--to", "nohost"},
		{"forward", "-p", "7300", "--to", "localhost:80", "--limit", "-5"},
		{"forward", "-p", "7300"}, // --to is required
	}

	for _, args := range tests {
		if err := GetCommand().Run(context.Background(), args); err == nil {
			t.Errorf("Run(%q) error = nil, want error", args)
		}
	}
}

// startForward runs the forward command on port and an upstream on
// upstreamPort, which passes everything it receives to serve.
func startForward(t *testing.T, port, upstreamPort int, limit int64, serve func(net.Conn)) (*mocks_tcp.MockTCPNetwork, context.CancelFunc) {
	t.Helper()

	mockNet := mocks_tcp.NewMockTCPNetwork()

	upstream, err := mockNet.Listen(uint16(upstreamPort))
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	t.Cleanup(func() { upstream.Close() })

	go func() {
		for {
			conn, err := upstream.Accept()
			if err != nil {
				return
			}
			go serve(conn)
		}
	}()

	cfg := &config.Shared{
		Port:    port,
		Timeout: time.Second,
		Deps: &config.Dependencies{
			TCPListener: mockNet.Listen,
			TCPDialer:   mockNet.DialContext,
		},
	}
	fCfg := &config.Forward{
		Target: net.JoinHostPort("127.0.0.1", strconv.Itoa(upstreamPort)),
		Limit:  limit,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go Run(ctx, cfg, fCfg, log.NewLoggerTo(io.Discard, true))

	if _, err := mockNet.WaitForListener(port, 2000); err != nil {
		cancel()
		t.Fatalf("WaitForListener() error = %v", err)
	}
	return mockNet, cancel
}

func TestRun(t *testing.T) {
	t.Parallel()

	mockNet, cancel := startForward(t, 7301, 7302, 0, func(conn net.Conn) {
		defer conn.Close()
		buf := make([]byte, 5)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		conn.Write(bytes.ToUpper(buf))
	})
	defer cancel()

	conn, err := mockNet.Dial("127.0.0.1:7301")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	go conn.Write([]byte("hello"))

	buf := make([]byte, 5)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := io.ReadFull(conn, buf); err != nil {
		t.Fatalf("ReadFull() error = %v", err)
	}
	if string(buf) != "HELLO" {
		t.Errorf("reply = %q, want %q", buf, "HELLO")
	}
}

func TestRun_Limit(t *testing.T) {
	t.Parallel()

	received := make(chan []byte, 1)
	mockNet, cancel := startForward(t, 7303, 7304, 3, func(conn net.Conn) {
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	})
	defer cancel()

	conn, err := mockNet.Dial("127.0.0.1:7303")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	go conn.Write([]byte("hello"))

	select {
	case data := <-received:
		if string(data) != "hel" {
			t.Errorf("upstream received %q, want %q", data, "hel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("upstream connection was not closed after the limit")
	}
}
