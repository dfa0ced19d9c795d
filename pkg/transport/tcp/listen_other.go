//go:build !linux

package tcp

import (
	"fmt"
	"net"
)

// listenTCP uses the default backlog of the platform.
func listenTCP(port uint16) (net.Listener, error) {
	nl, err := net.ListenTCP("tcp4", &net.TCPAddr{Port: int(port)})
	if err != nil {
		return nil, fmt.Errorf("listen(tcp4, :%d): %w", port, err)
	}
	return nl, nil
}
