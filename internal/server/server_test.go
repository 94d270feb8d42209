package server

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/HendryAvila/liftcoach/internal/config"
	"github.com/HendryAvila/liftcoach/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_WiresEveryBackend(t *testing.T) {
	for _, backend := range []string{store.BackendMemory, store.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Store = backend

			app, cleanup, err := New(cfg, quietLogger())
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer cleanup()

			if app.Handler == nil || app.Store == nil {
				t.Fatal("app not fully wired")
			}
			if s := app.MCPServer(); s == nil {
				t.Fatal("MCPServer returned nil")
			}
		})
	}
}

func TestNew_BadExerciseDBURL(t *testing.T) {
	cfg := config.Default()
	cfg.ExerciseDB.BaseURL = "not-a-url"
	if _, cleanup, err := New(cfg, quietLogger()); err == nil {
		cleanup()
		t.Fatal("expected error for relative base URL")
	}
}

func TestServeTCP_PingAndShutdown(t *testing.T) {
	// Reserve a free port, then hand it to the app.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	cfg := config.Default()
	cfg.Addr = addr
	app, cleanup, err := New(cfg, quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.ServeTCP(ctx) }()

	var conn net.Conn
	for i := 0; i < 50; i++ {
		if conn, err = net.Dial("tcp", addr); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if conn == nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := io.WriteString(conn, "{\"action\":\"ping\"}\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if line != "{\"status\":\"ok\",\"echo\":\"pong\"}\n" {
		t.Errorf("response = %q", line)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ServeTCP = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ServeTCP did not stop")
	}
}
