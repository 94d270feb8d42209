// liftcoach: adaptive strength-training coach
//
// A TCP service speaking newline-delimited JSON. Clients check in with
// their readiness, log sets, and receive a daily plan with suggested
// working weights. The same actions are available as MCP tools.
//
// Usage:
//
//	liftcoach serve    # Listen for TCP clients (LIFTCOACH_ADDR, default 0.0.0.0:5000)
//	liftcoach mcp      # Serve the actions as MCP tools on stdio
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/HendryAvila/liftcoach/internal/config"
	"github.com/HendryAvila/liftcoach/internal/logging"
	lcserver "github.com/HendryAvila/liftcoach/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(serveTCP); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := run(serveMCP); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("liftcoach v%s\n", lcserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(serve func(ctx context.Context, app *lcserver.App) error) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	app, cleanup, err := lcserver.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Graceful shutdown on interrupt.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "version", lcserver.Version, "store", cfg.Store, "locale", cfg.Locale)
	return serve(ctx, app)
}

func serveTCP(ctx context.Context, app *lcserver.App) error {
	return app.ServeTCP(ctx)
}

// serveMCP ignores ctx: the stdio server stops on its own signal handling
// or when the client closes stdin.
func serveMCP(_ context.Context, app *lcserver.App) error {
	return app.ServeStdio()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `liftcoach v%s — adaptive strength-training coach

Usage:
  liftcoach serve     Listen for TCP clients (newline-delimited JSON)
  liftcoach mcp       Serve the same actions as MCP tools (stdio transport)
  liftcoach version   Print the version

Environment:
  LIFTCOACH_ADDR        Listen address (default 0.0.0.0:5000)
  LIFTCOACH_STORE       memory or sqlite (default memory; both lose state on exit)
  LIFTCOACH_LOCALE      zh-TW or en (default zh-TW)
  LIFTCOACH_LOG_LEVEL   debug, info, warn or error (default info)
  LIFTCOACH_LOG_FORMAT  json or text (default json)
  EXERCISEDB_API_KEY    RapidAPI key for search_exercises
  EXERCISEDB_BASE_URL   ExerciseDB endpoint (default https://exercisedb.p.rapidapi.com)
  EXERCISEDB_TIMEOUT    Search request timeout (default 10s)

Example:
  printf '{"action":"ping"}\n' | nc localhost 5000
`, lcserver.Version)
}
