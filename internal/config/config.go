// Package config reads the service configuration from the environment.
//
// Every setting has a default, so an empty environment starts a working
// server on 0.0.0.0:5000 with the in-memory store. Catalog search needs
// EXERCISEDB_API_KEY; without it searches fail with the generic message.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/HendryAvila/liftcoach/internal/exercisedb"
	"github.com/HendryAvila/liftcoach/internal/i18n"
	"github.com/HendryAvila/liftcoach/internal/session"
	"github.com/HendryAvila/liftcoach/internal/store"
)

// Environment variable names.
const (
	EnvAddr          = "LIFTCOACH_ADDR"
	EnvStore         = "LIFTCOACH_STORE"
	EnvLocale        = "LIFTCOACH_LOCALE"
	EnvLogLevel      = "LIFTCOACH_LOG_LEVEL"
	EnvLogFormat     = "LIFTCOACH_LOG_FORMAT"
	EnvExerciseDBURL = "EXERCISEDB_BASE_URL"
	EnvExerciseDBKey = "EXERCISEDB_API_KEY"
	EnvExerciseDBTTL = "EXERCISEDB_TIMEOUT"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config is the full service configuration.
type Config struct {
	Addr      string
	Store     string
	Locale    i18n.Language
	LogLevel  slog.Level
	LogFormat string

	ExerciseDB exercisedb.Options
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Addr:      session.DefaultAddr,
		Store:     store.BackendMemory,
		Locale:    i18n.DefaultLang,
		LogLevel:  slog.LevelInfo,
		LogFormat: LogFormatJSON,
		ExerciseDB: exercisedb.Options{
			BaseURL: exercisedb.DefaultBaseURL,
			Timeout: exercisedb.DefaultTimeout,
		},
	}
}

// FromEnv reads the process environment.
func FromEnv() (*Config, error) {
	return Load(os.LookupEnv)
}

// Load builds a Config from lookup, starting from Default. Invalid values
// are errors; unset or empty values keep the default.
func Load(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvAddr); ok {
		cfg.Addr = v
	}
	if v, ok := get(EnvStore); ok {
		switch v = strings.ToLower(v); v {
		case store.BackendMemory, store.BackendSQLite:
			cfg.Store = v
		default:
			return nil, fmt.Errorf("config: %s: unknown store %q (want %s or %s)", EnvStore, v, store.BackendMemory, store.BackendSQLite)
		}
	}
	if v, ok := get(EnvLocale); ok {
		cfg.Locale = i18n.Language(v)
	}
	if v, ok := get(EnvLogLevel); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvLogLevel, err)
		}
	}
	if v, ok := get(EnvLogFormat); ok {
		switch v = strings.ToLower(v); v {
		case LogFormatJSON, LogFormatText:
			cfg.LogFormat = v
		default:
			return nil, fmt.Errorf("config: %s: unknown format %q (want %s or %s)", EnvLogFormat, v, LogFormatJSON, LogFormatText)
		}
	}

	if v, ok := get(EnvExerciseDBURL); ok {
		cfg.ExerciseDB.BaseURL = v
	}
	if v, ok := get(EnvExerciseDBKey); ok {
		cfg.ExerciseDB.APIKey = v
	}
	if v, ok := get(EnvExerciseDBTTL); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvExerciseDBTTL, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("config: %s: must be positive, got %s", EnvExerciseDBTTL, d)
		}
		cfg.ExerciseDB.Timeout = d
	}

	return cfg, nil
}
