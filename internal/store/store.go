// Package store holds per-user training state: logged sets, the latest
// readiness check-in and custom exercises.
//
// State lives for the lifetime of the process. Two backends implement Store:
// MemoryStore (sharded maps with a lock per user) and SQLiteStore (a private
// in-memory SQLite database). Every operation is atomic per user, and reads
// return snapshots that later writes do not modify.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/HendryAvila/liftcoach/internal/catalog"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// LoggedSet is one completed set. Sets are never edited or deleted.
type LoggedSet struct {
	ExerciseID catalog.ID `json:"exerciseId"`
	Time       time.Time  `json:"time"`
	Weight     float64    `json:"weight"`
	Reps       int        `json:"reps"`
	Difficulty int        `json:"difficulty"`
}

// Volume is weight × reps.
func (s LoggedSet) Volume() float64 { return s.Weight * float64(s.Reps) }

// Checkin is a user's latest readiness report.
type Checkin struct {
	Time     time.Time `json:"time"`
	Sleep    int       `json:"sleep"`
	Fatigue  int       `json:"fatigue"`
	Soreness int       `json:"soreness"`
	Stress   int       `json:"stress"`
	Score    int       `json:"score"`
}

// Stats counts what the store currently holds.
type Stats struct {
	Users    int `json:"users"`
	Sets     int `json:"sets"`
	Checkins int `json:"checkins"`
	Custom   int `json:"custom"`
}

// Store is the shared user state used by every session.
type Store interface {
	// AppendSet adds set to the user's history. If observe is non-nil it is
	// called with the user's sets as they were immediately before the append,
	// and no other write for that user can happen in between. observe must
	// not call back into the store.
	AppendSet(ctx context.Context, user catalog.ID, set LoggedSet, observe func(prior []LoggedSet)) error

	// Sets returns a copy of the user's sets in insertion order.
	Sets(ctx context.Context, user catalog.ID) ([]LoggedSet, error)

	// SetCheckin replaces the user's check-in.
	SetCheckin(ctx context.Context, user catalog.ID, c Checkin) error

	// Checkin returns the user's latest check-in, if any.
	Checkin(ctx context.Context, user catalog.ID) (Checkin, bool, error)

	// AddCustomExercise stores ex for the user. Re-adding an id replaces the
	// definition but keeps its original position.
	AddCustomExercise(ctx context.Context, user catalog.ID, ex catalog.Exercise) error

	// CustomExercises returns the user's exercises in insertion order.
	CustomExercises(ctx context.Context, user catalog.ID) ([]catalog.Exercise, error)

	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Open returns the backend named by name.
func Open(name string) (Store, error) {
	switch name {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		return NewSQLite()
	}
	return nil, fmt.Errorf("store: unknown backend %q", name)
}
