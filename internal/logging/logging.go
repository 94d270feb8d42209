// Package logging builds the process logger.
//
// Output always goes to stderr: the mcp subcommand owns stdout for the
// protocol stream.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options selects the handler.
type Options struct {
	Level slog.Level
	// Format is "json" (default) or "text".
	Format string
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// New returns a logger. JSON output uses "message" and "severity" as keys
// so log collectors pick them up without extra mapping.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}
	if opts.Format == "text" {
		return slog.New(slog.NewTextHandler(w, hopts))
	}

	hopts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) > 0 {
			return a
		}
		switch a.Key {
		case slog.MessageKey:
			return slog.Attr{Key: "message", Value: a.Value}
		case slog.LevelKey:
			return slog.Attr{Key: "severity", Value: a.Value}
		}
		return a
	}
	return slog.New(slog.NewJSONHandler(w, hopts))
}

// Component returns logger tagged with a component name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With("component", name)
}
