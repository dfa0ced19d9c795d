// Package server accepts connections on a tcp.Listener and runs a handler
// for each of them in its own goroutine.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"dominicbreuker/gorelay/pkg/config"
	"dominicbreuker/gorelay/pkg/log"
	"dominicbreuker/gorelay/pkg/semaphore"
	"dominicbreuker/gorelay/pkg/transport"
	"dominicbreuker/gorelay/pkg/transport/tcp"
)

const maxAcceptBackoff = time.Second

// Server ...
type Server struct {
	ctx     context.Context
	cfg     *config.Shared
	handle  transport.Handler
	logger  *log.Logger
	l       *tcp.Listener
	sem     *semaphore.ConnSemaphore
	metrics *Metrics
}

// New creates the listener described by cfg. The listener is open once New
// returns; Serve starts accepting.
func New(ctx context.Context, cfg *config.Shared, handle transport.Handler, logger *log.Logger) (*Server, error) {
	l, err := tcp.NewListener(uint16(cfg.Port), cfg.Deps)
	if err != nil {
		return nil, fmt.Errorf("tcp.NewListener(%d): %w", cfg.Port, err)
	}
	l.SetIdleTimeout(cfg.Timeout)

	sem := semaphore.New(cfg.MaxConns, cfg.Timeout)
	metrics := NewMetrics()
	metrics.trackSlots(sem)

	return &Server{
		ctx:     ctx,
		cfg:     cfg,
		handle:  handle,
		logger:  logger,
		l:       l,
		sem:     sem,
		metrics: metrics,
	}, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.l.Addr()
}

// Metrics returns the server's counters.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Close stops accepting connections.
func (s *Server) Close() error {
	return s.l.Close()
}

// Serve accepts connections until the context is cancelled, in which case it
// returns nil, or until the listener is closed by someone else.
func (s *Server) Serve() error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-s.ctx.Done():
			s.l.Close()
		case <-done:
		}
	}()

	var backoff time.Duration
	for {
		conn, err := s.l.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return nil // cancelled
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("Accept(): %w", err)
			}

			// transient, e.g. out of file descriptors
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff *= 2
			}
			if backoff > maxAcceptBackoff {
				backoff = maxAcceptBackoff
			}
			s.logger.ErrorMsg("Accept(): %s; retrying in %v\n", err, backoff)
			s.metrics.acceptErrors.Inc()

			select {
			case <-time.After(backoff):
			case <-s.ctx.Done():
				return nil
			}
			continue
		}
		backoff = 0
		s.metrics.accepted.Inc()

		if !s.sem.TryAcquire() {
			s.logger.VerboseMsg("All connection slots busy, %s waits up to %v", conn.RemoteAddr(), s.cfg.Timeout)
			if err := s.sem.Acquire(s.ctx); err != nil {
				s.logger.ErrorMsg("Rejecting connection from %s: %s\n", conn.RemoteAddr(), err)
				s.metrics.rejected.Inc()
				conn.Close()
				continue
			}
		}

		go func() {
			defer s.sem.Release()
			s.serveConn(conn)
		}()
	}
}

func (s *Server) serveConn(conn net.Conn) {
	remote := conn.RemoteAddr()
	s.logger.InfoMsg("New TCP connection from %s\n", remote)

	s.metrics.active.Inc()
	defer s.metrics.active.Dec()

	conn = s.metrics.countConn(conn)
	if s.cfg.LogFile != "" {
		lc, err := log.NewLoggedConn(conn, s.cfg.LogFile)
		if err != nil {
			s.logger.ErrorMsg("Logging connection from %s: %s\n", remote, err)
		} else {
			conn = lc
		}
	}
	defer conn.Close()

	err := s.handle(conn)
	s.metrics.observe(err)
	if err != nil {
		s.logger.ErrorMsg("Handling connection from %s: %s\n", remote, err)
		return
	}

	s.logger.VerboseMsg("Connection from %s closed", remote)
}
