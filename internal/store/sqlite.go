package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/HendryAvila/liftcoach/internal/catalog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteStore keeps state in an in-memory SQLite database owned by the
// process. The pool is pinned to one connection: an in-memory database
// disappears with its connection, and a single connection also serializes
// every transaction, which is what makes AppendSet's observe step atomic.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a fresh in-memory database and applies the schema.
func NewSQLite() (*SQLiteStore, error) {
	db, err := openDB("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the database; all state is discarded.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ─── Sets ────────────────────────────────────────────────────────────────────

func (s *SQLiteStore) AppendSet(ctx context.Context, user catalog.ID, set LoggedSet, observe func(prior []LoggedSet)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if observe != nil {
		prior, err := querySets(ctx, tx, user)
		if err != nil {
			return err
		}
		observe(prior)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO logged_sets (user_key, exercise_key, logged_at, weight, reps, difficulty)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.Key(), set.ExerciseID.Key(), set.Time.UnixNano(), set.Weight, set.Reps, set.Difficulty,
	); err != nil {
		return fmt.Errorf("store: insert set: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Sets(ctx context.Context, user catalog.ID) ([]LoggedSet, error) {
	return querySets(ctx, s.db, user)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func querySets(ctx context.Context, q queryer, user catalog.ID) ([]LoggedSet, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT exercise_key, logged_at, weight, reps, difficulty
		 FROM logged_sets
		 WHERE user_key = ?
		 ORDER BY seq`,
		user.Key(),
	)
	if err != nil {
		return nil, fmt.Errorf("store: query sets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sets []LoggedSet
	for rows.Next() {
		var (
			exKey    string
			loggedAt int64
			set      LoggedSet
		)
		if err := rows.Scan(&exKey, &loggedAt, &set.Weight, &set.Reps, &set.Difficulty); err != nil {
			return nil, fmt.Errorf("store: scan set: %w", err)
		}
		if set.ExerciseID, err = catalog.ParseKey(exKey); err != nil {
			return nil, err
		}
		set.Time = time.Unix(0, loggedAt)
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate sets: %w", err)
	}
	return sets, nil
}

// ─── Check-ins ───────────────────────────────────────────────────────────────

func (s *SQLiteStore) SetCheckin(ctx context.Context, user catalog.ID, c Checkin) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkins (user_key, checked_at, sleep, fatigue, soreness, stress, score)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_key) DO UPDATE SET
		     checked_at = excluded.checked_at,
		     sleep      = excluded.sleep,
		     fatigue    = excluded.fatigue,
		     soreness   = excluded.soreness,
		     stress     = excluded.stress,
		     score      = excluded.score`,
		user.Key(), c.Time.UnixNano(), c.Sleep, c.Fatigue, c.Soreness, c.Stress, c.Score,
	)
	if err != nil {
		return fmt.Errorf("store: upsert checkin: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Checkin(ctx context.Context, user catalog.ID) (Checkin, bool, error) {
	var (
		c         Checkin
		checkedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT checked_at, sleep, fatigue, soreness, stress, score
		 FROM checkins WHERE user_key = ?`,
		user.Key(),
	).Scan(&checkedAt, &c.Sleep, &c.Fatigue, &c.Soreness, &c.Stress, &c.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return Checkin{}, false, nil
	}
	if err != nil {
		return Checkin{}, false, fmt.Errorf("store: query checkin: %w", err)
	}
	c.Time = time.Unix(0, checkedAt)
	return c, true, nil
}

// ─── Custom exercises ────────────────────────────────────────────────────────

func (s *SQLiteStore) AddCustomExercise(ctx context.Context, user catalog.ID, ex catalog.Exercise) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO custom_exercises
		     (user_key, exercise_key, position, name, body_part, target, equipment, base_weight, min_reps, max_reps)
		 VALUES (?, ?,
		     (SELECT COALESCE(MAX(position), 0) + 1 FROM custom_exercises WHERE user_key = ?),
		     ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_key, exercise_key) DO UPDATE SET
		     name        = excluded.name,
		     body_part   = excluded.body_part,
		     target      = excluded.target,
		     equipment   = excluded.equipment,
		     base_weight = excluded.base_weight,
		     min_reps    = excluded.min_reps,
		     max_reps    = excluded.max_reps`,
		user.Key(), ex.ID.Key(), user.Key(),
		ex.Name, ex.BodyPart, ex.Target, ex.Equipment, ex.BaseWeight, ex.MinReps, ex.MaxReps,
	)
	if err != nil {
		return fmt.Errorf("store: upsert custom exercise: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CustomExercises(ctx context.Context, user catalog.ID) ([]catalog.Exercise, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT exercise_key, name, body_part, target, equipment, base_weight, min_reps, max_reps
		 FROM custom_exercises
		 WHERE user_key = ?
		 ORDER BY position`,
		user.Key(),
	)
	if err != nil {
		return nil, fmt.Errorf("store: query custom exercises: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []catalog.Exercise
	for rows.Next() {
		var (
			key string
			ex  catalog.Exercise
		)
		if err := rows.Scan(&key, &ex.Name, &ex.BodyPart, &ex.Target, &ex.Equipment,
			&ex.BaseWeight, &ex.MinReps, &ex.MaxReps); err != nil {
			return nil, fmt.Errorf("store: scan custom exercise: %w", err)
		}
		if ex.ID, err = catalog.ParseKey(key); err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate custom exercises: %w", err)
	}
	return out, nil
}

// ─── Stats ───────────────────────────────────────────────────────────────────

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT
		     (SELECT COUNT(*) FROM (
		         SELECT user_key FROM logged_sets
		         UNION SELECT user_key FROM checkins
		         UNION SELECT user_key FROM custom_exercises)),
		     (SELECT COUNT(*) FROM logged_sets),
		     (SELECT COUNT(*) FROM checkins),
		     (SELECT COUNT(*) FROM custom_exercises)`,
	).Scan(&st.Users, &st.Sets, &st.Checkins, &st.Custom)
	if err != nil {
		return Stats{}, fmt.Errorf("store: stats: %w", err)
	}
	return st, nil
}
