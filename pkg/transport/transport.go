// Package transport defines what the server hands to connection handlers.
//
// The tcp subpackage creates the passive socket and accepts connections.
// Every accepted connection carries an idle timeout in both directions:
//   - each Read re-arms the read deadline
//   - each Write re-arms the write deadline
//
// A peer that stays silent for longer than the timeout makes the pending
// Read fail with a timeout error instead of blocking forever. The same holds
// for a Write that the peer does not drain.
package transport

import "net"

// Handler is a function that processes an incoming connection.
// It should handle the connection and return when done.
// The connection will be closed after the handler returns.
type Handler func(net.Conn) error
