// Package server wires the liftcoach components together.
//
// This is the composition root: it creates the concrete store, catalog
// search client and translator from the configuration and injects them
// into the protocol handler that both surfaces (TCP sessions and MCP
// tools) share. No business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/liftcoach/internal/config"
	"github.com/HendryAvila/liftcoach/internal/exercisedb"
	"github.com/HendryAvila/liftcoach/internal/i18n"
	"github.com/HendryAvila/liftcoach/internal/logging"
	"github.com/HendryAvila/liftcoach/internal/mcptools"
	"github.com/HendryAvila/liftcoach/internal/protocol"
	"github.com/HendryAvila/liftcoach/internal/session"
	"github.com/HendryAvila/liftcoach/internal/store"
)

// Version is set at build time via ldflags.
var Version = "dev"

// App holds the shared dependencies.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   store.Store
	Handler *protocol.Handler
}

// New resolves every dependency from cfg. The returned cleanup closes the
// store and is always safe to call.
func New(cfg *config.Config, logger *slog.Logger) (*App, func(), error) {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			logger.Warn("store close", "error", err)
		}
	}

	searcher, err := exercisedb.NewClient(cfg.ExerciseDB)
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("creating exercise search client: %w", err)
	}
	if cfg.ExerciseDB.APIKey == "" {
		logger.Warn("exercise search disabled", "reason", config.EnvExerciseDBKey+" not set")
	}

	tr, err := i18n.New(cfg.Locale)
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("loading messages: %w", err)
	}
	if tr.Language() != cfg.Locale {
		logger.Warn("unsupported locale, using default", "locale", cfg.Locale, "default", tr.Language())
	}

	h := protocol.NewHandler(protocol.Options{
		Store:      st,
		Searcher:   searcher,
		Translator: tr,
		Logger:     logging.Component(logger, "protocol"),
	})

	return &App{Config: cfg, Logger: logger, Store: st, Handler: h}, cleanup, nil
}

// ServeTCP runs the socket server until ctx is cancelled.
func (a *App) ServeTCP(ctx context.Context) error {
	srv := session.NewServer(a.Config.Addr, a.Handler, logging.Component(a.Logger, "session"))
	err := srv.ListenAndServe(ctx)
	a.logStats()
	return err
}

// MCPServer builds an MCP server exposing every action as a tool.
func (a *App) MCPServer() *server.MCPServer {
	s := server.NewMCPServer(
		"liftcoach",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)
	for _, tool := range mcptools.NewTools(a.Handler) {
		s.AddTool(tool.Definition(), tool.Handle)
	}
	return s
}

// ServeStdio runs the MCP server on stdin/stdout until the client hangs up.
func (a *App) ServeStdio() error {
	err := server.ServeStdio(a.MCPServer())
	a.logStats()
	return err
}

func (a *App) logStats() {
	st, err := a.Store.Stats(context.Background())
	if err != nil {
		a.Logger.Warn("store stats", "error", err)
		return
	}
	a.Logger.Info("state discarded on exit",
		"users", st.Users,
		"sets", st.Sets,
		"checkins", st.Checkins,
		"custom_exercises", st.Custom,
	)
}

// noop is the cleanup returned when nothing was opened.
func noop() {}

// serverInstructions tells the MCP client how the tools fit together.
func serverInstructions() string {
	return `You have access to liftcoach, a strength-training coach.

## Typical flow

1. checkin: record today's sleep, fatigue, soreness and stress (1-5 each, lower is better).
2. get_today_plan: suggested weight for each exercise. The suggestion follows the most
   recent set (+5% when it was easy at the top of the rep range, -5% when it was hard)
   and is reduced on low-readiness days unless the exercise was already trained today.
3. log_set after each set. The response says whether the set is a personal record.
4. get_history / get_summary to review progress.

Use search_exercises and add_exercise_from_api to add exercises beyond the three built-ins.

All state is held in memory and is lost when the server stops. userId is any id the
user chooses; use the same one on every call.`
}
