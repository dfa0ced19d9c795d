package streamio

import (
	"bytes"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"
)

func TestRelay(t *testing.T) {
	t.Parallel()

	big := bytes.Repeat([]byte("abcdefgh"), 3*ChunkSize/8+17)

	tests := []struct {
		name string
		src  []byte
		n    int64
		want int64
	}{
		{name: "exactly n bytes", src: []byte("hello"), n: 5, want: 5},
		{name: "more than n available", src: []byte("hello world"), n: 5, want: 5},
		{name: "src ends early", src: []byte("hey"), n: 10, want: 3},
		{name: "several chunks", src: big, n: int64(len(big)), want: int64(len(big))},
		{name: "chunk boundary", src: big[:2*ChunkSize], n: 2 * ChunkSize, want: 2 * ChunkSize},
		{name: "src ends after chunks", src: big, n: int64(len(big)) + 100, want: int64(len(big))},
		{name: "nothing requested", src: []byte("abc"), n: 0, want: 0},
		{name: "empty src", src: nil, n: 10, want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var dst bytes.Buffer
			got, err := Relay(&dst, bytes.NewReader(tc.src), tc.n)
			if err != nil {
				t.Fatalf("Relay() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("Relay() = %d, want %d", got, tc.want)
			}
			if !bytes.Equal(dst.Bytes(), tc.src[:tc.want]) {
				t.Errorf("dst received %d bytes that differ from src", dst.Len())
			}
		})
	}
}

func TestRelay_PartialWrites(t *testing.T) {
	t.Parallel()

	src := bytes.Repeat([]byte("z"), ChunkSize+10)
	w := &trickleWriter{max: 1000}

	got, err := Relay(w, bytes.NewReader(src), int64(len(src)))
	if err != nil {
		t.Fatalf("Relay() error = %v", err)
	}
	if got != int64(len(src)) || !bytes.Equal(w.data, src) {
		t.Errorf("Relay() = %d, dst has %d bytes; want %d", got, len(w.data), len(src))
	}
}

func TestRelay_ReadError(t *testing.T) {
	t.Parallel()

	src := &chunkReader{chunks: [][]byte{bytes.Repeat([]byte("a"), ChunkSize)}, err: syscall.ECONNRESET}
	var dst bytes.Buffer

	got, err := Relay(&dst, src, 2*ChunkSize)
	if !errors.Is(err, ErrTransfer) || !errors.Is(err, syscall.ECONNRESET) {
		t.Fatalf("Relay() error = %v, want ErrTransfer wrapping ECONNRESET", err)
	}

	var te *TransferError
	if errors.As(err, &te) && te.Op != "relay read" {
		t.Errorf("TransferError.Op = %q, want \"relay read\"", te.Op)
	}
	if got != ChunkSize || dst.Len() != ChunkSize {
		t.Errorf("Relay() = %d with %d delivered, want first chunk delivered", got, dst.Len())
	}
}

func TestRelay_WriteError(t *testing.T) {
	t.Parallel()

	w := &limitWriter{limit: 10}
	got, err := Relay(w, bytes.NewReader(bytes.Repeat([]byte("b"), 100)), 100)
	if !errors.Is(err, errWriterFull) {
		t.Fatalf("Relay() error = %v, want errWriterFull", err)
	}

	var te *TransferError
	if errors.As(err, &te) && te.Op != "relay write" {
		t.Errorf("TransferError.Op = %q, want \"relay write\"", te.Op)
	}
	if got != 10 {
		t.Errorf("Relay() = %d, want 10", got)
	}
}

func TestRelay_BetweenConnections(t *testing.T) {
	t.Parallel()

	srcClient, srcServer := net.Pipe()
	dstClient, dstServer := net.Pipe()
	defer srcServer.Close()
	defer dstClient.Close()
	defer dstServer.Close()

	payload := bytes.Repeat([]byte("relay!"), 2000)
	go func() {
		srcClient.Write(payload[:5000])
		srcClient.Close()
	}()

	received := make(chan []byte, 1)
	go func() {
		buf := make([]byte, len(payload))
		n, _ := ReadExact(dstClient, buf)
		received <- buf[:n]
	}()

	got, err := Relay(dstServer, srcServer, int64(len(payload)))
	if err != nil {
		t.Fatalf("Relay() error = %v", err)
	}
	if got != 5000 {
		t.Errorf("Relay() = %d, want 5000", got)
	}
	dstServer.Close()

	select {
	case data := <-received:
		if !bytes.Equal(data, payload[:5000]) {
			t.Errorf("dst received %d bytes, want the 5000 sent", len(data))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dst reader did not finish")
	}
}
