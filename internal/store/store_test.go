package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/HendryAvila/liftcoach/internal/catalog"
	"github.com/HendryAvila/liftcoach/internal/store"
)

// backends runs fn once against every Store implementation.
func backends(t *testing.T, fn func(t *testing.T, s store.Store)) {
	t.Helper()
	for _, name := range []string{store.BackendMemory, store.BackendSQLite} {
		t.Run(name, func(t *testing.T) {
			s, err := store.Open(name)
			if err != nil {
				t.Fatalf("Open(%q): %v", name, err)
			}
			t.Cleanup(func() { _ = s.Close() })
			fn(t, s)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := store.Open("postgres"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestSets_EmptyForUnknownUser(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		sets, err := s.Sets(context.Background(), catalog.IntID(42))
		if err != nil {
			t.Fatalf("Sets: %v", err)
		}
		if len(sets) != 0 {
			t.Errorf("len = %d, want 0", len(sets))
		}
	})
}

func TestAppendSet_ObserveSeesPriorState(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		user := catalog.IntID(1)
		base := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

		for i, w := range []float64{50, 40} {
			var seen []store.LoggedSet
			err := s.AppendSet(ctx, user, store.LoggedSet{
				ExerciseID: catalog.IntID(1),
				Time:       base.Add(time.Duration(i) * time.Minute),
				Weight:     w,
				Reps:       5,
				Difficulty: 3,
			}, func(prior []store.LoggedSet) { seen = prior })
			if err != nil {
				t.Fatalf("AppendSet: %v", err)
			}
			if len(seen) != i {
				t.Errorf("append %d observed %d prior sets, want %d", i, len(seen), i)
			}
		}

		sets, err := s.Sets(ctx, user)
		if err != nil {
			t.Fatalf("Sets: %v", err)
		}
		if len(sets) != 2 {
			t.Fatalf("len = %d, want 2", len(sets))
		}
		if sets[0].Weight != 50 || sets[1].Weight != 40 {
			t.Errorf("weights = %v, %v", sets[0].Weight, sets[1].Weight)
		}
		if !sets[0].Time.Equal(base) {
			t.Errorf("time = %v, want %v", sets[0].Time, base)
		}
		if !sets[0].ExerciseID.Equal(catalog.IntID(1)) {
			t.Errorf("exercise id = %q", sets[0].ExerciseID.Key())
		}
	})
}

func TestSets_SnapshotIsolation(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		user := catalog.StringID("alice")
		set := store.LoggedSet{ExerciseID: catalog.IntID(2), Time: time.Now(), Weight: 30, Reps: 8}

		if err := s.AppendSet(ctx, user, set, nil); err != nil {
			t.Fatalf("AppendSet: %v", err)
		}
		snap, _ := s.Sets(ctx, user)
		snap[0].Weight = 999

		if err := s.AppendSet(ctx, user, set, nil); err != nil {
			t.Fatalf("AppendSet: %v", err)
		}
		if len(snap) != 1 {
			t.Errorf("snapshot grew to %d", len(snap))
		}
		fresh, _ := s.Sets(ctx, user)
		if fresh[0].Weight != 30 {
			t.Errorf("mutating a snapshot changed the store: %v", fresh[0].Weight)
		}
	})
}

func TestUsers_KeyedByTypedID(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		set := store.LoggedSet{ExerciseID: catalog.IntID(1), Time: time.Now(), Weight: 10, Reps: 1}
		if err := s.AppendSet(ctx, catalog.IntID(1), set, nil); err != nil {
			t.Fatalf("AppendSet: %v", err)
		}
		other, _ := s.Sets(ctx, catalog.StringID("1"))
		if len(other) != 0 {
			t.Errorf("string id \"1\" saw %d sets of numeric id 1", len(other))
		}
	})
}

func TestCheckin_LastWriteWins(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		user := catalog.IntID(7)

		if _, ok, _ := s.Checkin(ctx, user); ok {
			t.Fatal("expected no check-in for new user")
		}
		for _, score := range []int{12, 6} {
			c := store.Checkin{Time: time.Now(), Sleep: score / 4, Fatigue: score / 4, Soreness: score / 4, Stress: score / 4, Score: score}
			if err := s.SetCheckin(ctx, user, c); err != nil {
				t.Fatalf("SetCheckin: %v", err)
			}
		}
		c, ok, err := s.Checkin(ctx, user)
		if err != nil || !ok {
			t.Fatalf("Checkin: ok=%v err=%v", ok, err)
		}
		if c.Score != 6 {
			t.Errorf("Score = %d, want 6", c.Score)
		}
	})
}

func TestCustomExercises_OrderAndOverwrite(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		user := catalog.IntID(3)

		add := func(id, name string) {
			t.Helper()
			ex := catalog.NewCustom(catalog.StringID(id), name, "back", "lats", "cable")
			if err := s.AddCustomExercise(ctx, user, ex); err != nil {
				t.Fatalf("AddCustomExercise: %v", err)
			}
		}
		add("0010", "pulldown")
		add("0020", "row")
		add("0010", "wide pulldown")

		got, err := s.CustomExercises(ctx, user)
		if err != nil {
			t.Fatalf("CustomExercises: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].ID.String() != "0010" || got[0].Name != "wide pulldown" {
			t.Errorf("first = %q/%q, want 0010/wide pulldown", got[0].ID.String(), got[0].Name)
		}
		if got[1].ID.String() != "0020" {
			t.Errorf("second = %q, want 0020", got[1].ID.String())
		}
		if got[0].Equipment != "cable" || got[0].MaxReps != 12 {
			t.Errorf("fields not preserved: %+v", got[0])
		}
	})
}

func TestAppendSet_ConcurrentSameUser(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		user := catalog.IntID(1)
		const n = 64

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			observed = make(map[int]bool)
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				set := store.LoggedSet{ExerciseID: catalog.IntID(1), Time: time.Now(), Weight: float64(i), Reps: 1}
				err := s.AppendSet(ctx, user, set, func(prior []store.LoggedSet) {
					mu.Lock()
					observed[len(prior)] = true
					mu.Unlock()
				})
				if err != nil {
					t.Errorf("AppendSet: %v", err)
				}
			}(i)
		}
		wg.Wait()

		sets, err := s.Sets(ctx, user)
		if err != nil {
			t.Fatalf("Sets: %v", err)
		}
		if len(sets) != n {
			t.Errorf("stored %d sets, want %d", len(sets), n)
		}
		// Each append must have seen a distinct prior length 0..n-1.
		if len(observed) != n {
			t.Errorf("observed %d distinct prior lengths, want %d", len(observed), n)
		}
	})
}

func TestConcurrentUsers(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		const users, perUser = 8, 16

		var wg sync.WaitGroup
		for u := 0; u < users; u++ {
			for i := 0; i < perUser; i++ {
				wg.Add(1)
				go func(u int) {
					defer wg.Done()
					set := store.LoggedSet{ExerciseID: catalog.IntID(2), Time: time.Now(), Weight: 20, Reps: 5}
					if err := s.AppendSet(ctx, catalog.IntID(u), set, nil); err != nil {
						t.Errorf("AppendSet: %v", err)
					}
				}(u)
			}
		}
		wg.Wait()

		st, err := s.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if st.Users != users || st.Sets != users*perUser {
			t.Errorf("Stats = %+v, want %d users / %d sets", st, users, users*perUser)
		}
	})
}
