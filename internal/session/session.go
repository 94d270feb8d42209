// Package session runs the newline-delimited JSON protocol over stream
// connections: one Session per connection, accepted by a Server.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/HendryAvila/liftcoach/internal/protocol"
)

// readChunk is how many bytes a single read asks for. Messages longer than
// this simply span several reads.
const readChunk = 1024

// State is the position of a Session in its read/frame/dispatch cycle.
type State int32

const (
	StateAwaitingData State = iota
	StateFraming
	StateDispatching
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingData:
		return "awaiting_data"
	case StateFraming:
		return "framing"
	case StateDispatching:
		return "dispatching"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Dispatcher answers one framed message. protocol.Handler implements it.
type Dispatcher interface {
	HandleLine(ctx context.Context, line []byte) protocol.Response
}

// ErrInvalidUTF8 ends a session whose peer sent bytes that are not UTF-8.
var ErrInvalidUTF8 = errors.New("session: message is not valid UTF-8")

// Session serves one connection. Responses are written in the order the
// requests were received.
type Session struct {
	id       uuid.UUID
	conn     net.Conn
	dispatch Dispatcher
	log      *slog.Logger

	buf   []byte
	state atomic.Int32
}

// New creates a Session for conn.
func New(conn net.Conn, d Dispatcher, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()
	return &Session{
		id:       id,
		conn:     conn,
		dispatch: d,
		log: logger.With(
			"session", id.String(),
			"remote", remoteAddr(conn),
		),
	}
}

// ID returns the session's unique id.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the current state.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// Run serves the connection until the peer closes it or a transport error
// occurs, then closes the connection. A clean close by the peer returns
// nil. Bytes after the last newline are discarded.
func (s *Session) Run(ctx context.Context) error {
	s.log.InfoContext(ctx, "connected")
	defer func() {
		s.setState(StateClosed)
		_ = s.conn.Close()
		s.log.InfoContext(ctx, "disconnected", "discarded_bytes", len(s.buf))
	}()

	chunk := make([]byte, readChunk)
	for {
		s.setState(StateAwaitingData)
		n, err := s.conn.Read(chunk)
		if n > 0 {
			s.buf = append(s.buf, chunk[:n]...)
			if ferr := s.drain(ctx); ferr != nil {
				s.log.WarnContext(ctx, "closing session", "error", ferr)
				return ferr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.WarnContext(ctx, "read failed", "error", err)
			return fmt.Errorf("session: read: %w", err)
		}
	}
}

// drain answers every complete line in the buffer and keeps the rest.
func (s *Session) drain(ctx context.Context) error {
	for {
		s.setState(StateFraming)
		i := bytes.IndexByte(s.buf, '\n')
		if i < 0 {
			return nil
		}
		line := bytes.TrimSpace(s.buf[:i])
		s.buf = s.buf[i+1:]
		if len(line) == 0 {
			continue
		}
		if !utf8.Valid(line) {
			return ErrInvalidUTF8
		}

		s.setState(StateDispatching)
		s.log.DebugContext(ctx, "recv", "line", string(line))
		resp := s.dispatch.HandleLine(ctx, line)
		if err := s.write(ctx, resp); err != nil {
			return err
		}
	}
}

func (s *Session) write(ctx context.Context, resp protocol.Response) error {
	out, err := json.Marshal(resp)
	if err != nil {
		s.log.ErrorContext(ctx, "encoding response", "error", err)
		head := resp.Head()
		out, _ = json.Marshal(protocol.Envelope{Status: protocol.StatusError, Action: head.Action, Message: "internal error"})
	}
	out = append(out, '\n')
	if _, err := s.conn.Write(out); err != nil {
		return fmt.Errorf("session: write: %w", err)
	}
	return nil
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
