package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// DefaultAddr is where the service listens unless configured otherwise.
const DefaultAddr = "0.0.0.0:5000"

// acceptBackoff is the pause after a failed Accept before trying again.
const acceptBackoff = 50 * time.Millisecond

// Server accepts connections and runs one Session per connection.
type Server struct {
	addr     string
	dispatch Dispatcher
	log      *slog.Logger

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// NewServer creates a Server that will listen on addr.
func NewServer(addr string, d Dispatcher, logger *slog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:     addr,
		dispatch: d,
		log:      logger,
		conns:    make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on the configured TCP address and serves until
// ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("session: listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is cancelled. On shutdown it
// closes the listener and every open connection, then waits for their
// sessions to finish. A failing connection never stops the server.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.InfoContext(ctx, "listening", "addr", ln.Addr().String())

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = ln.Close()
		s.closeConns()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				break
			}
			s.log.WarnContext(ctx, "accept failed", "error", err)
			time.Sleep(acceptBackoff)
			continue
		}
		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			_ = New(conn, s.dispatch, s.log).Run(ctx)
		}()
	}

	s.closeConns()
	s.wg.Wait()
	s.log.InfoContext(ctx, "stopped")
	return nil
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}
