//go:build linux

package tcp

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// listenTCP builds the socket by hand so that the backlog is exactly Backlog
// instead of the kernel's somaxconn.
func listenTCP(port uint16) (net.Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("socket(): %w", err)
	}

	if err := setupSocket(fd, port); err != nil {
		unix.Close(fd)
		return nil, err
	}

	f := os.NewFile(uintptr(fd), fmt.Sprintf("tcp-listener:%d", port))
	defer f.Close() // net.FileListener works on a dup

	nl, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("net.FileListener(): %w", err)
	}
	return nl, nil
}

func setupSocket(fd int, port uint16) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("setsockopt(SO_REUSEADDR): %w", err)
	}

	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: int(port)}); err != nil {
		return fmt.Errorf("bind(0.0.0.0:%d): %w", port, err)
	}

	if err := unix.Listen(fd, Backlog); err != nil {
		return fmt.Errorf("listen(%d): %w", Backlog, err)
	}
	return nil
}
