package store

import (
	"context"
	"hash/fnv"
	"slices"
	"sync"

	"github.com/HendryAvila/liftcoach/internal/catalog"
)

const shardCount = 32

// MemoryStore keeps state in maps. Users are spread over shards; a shard
// lock only guards finding or creating a user's record, and each record
// carries its own lock, so writes for different users never wait on each
// other.
type MemoryStore struct {
	shards [shardCount]shard
}

type shard struct {
	mu    sync.Mutex
	users map[string]*userState
}

type userState struct {
	mu          sync.RWMutex
	sets        []LoggedSet
	checkin     *Checkin
	customOrder []string
	custom      map[string]catalog.Exercise
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i].users = make(map[string]*userState)
	}
	return s
}

func (s *MemoryStore) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.shards[h.Sum32()%shardCount]
}

// user returns the record for id. With create=false it returns nil for
// users that have never written anything.
func (s *MemoryStore) user(id catalog.ID, create bool) *userState {
	key := id.Key()
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	u, ok := sh.users[key]
	if !ok && create {
		u = &userState{custom: make(map[string]catalog.Exercise)}
		sh.users[key] = u
	}
	return u
}

func (s *MemoryStore) AppendSet(ctx context.Context, user catalog.ID, set LoggedSet, observe func(prior []LoggedSet)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u := s.user(user, true)
	u.mu.Lock()
	defer u.mu.Unlock()

	if observe != nil {
		observe(slices.Clone(u.sets))
	}
	u.sets = append(u.sets, set)
	return nil
}

func (s *MemoryStore) Sets(ctx context.Context, user catalog.ID) ([]LoggedSet, error) {
	u := s.user(user, false)
	if u == nil {
		return nil, nil
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	return slices.Clone(u.sets), nil
}

func (s *MemoryStore) SetCheckin(ctx context.Context, user catalog.ID, c Checkin) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u := s.user(user, true)
	u.mu.Lock()
	defer u.mu.Unlock()
	u.checkin = &c
	return nil
}

func (s *MemoryStore) Checkin(ctx context.Context, user catalog.ID) (Checkin, bool, error) {
	u := s.user(user, false)
	if u == nil {
		return Checkin{}, false, nil
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.checkin == nil {
		return Checkin{}, false, nil
	}
	return *u.checkin, true, nil
}

func (s *MemoryStore) AddCustomExercise(ctx context.Context, user catalog.ID, ex catalog.Exercise) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u := s.user(user, true)
	u.mu.Lock()
	defer u.mu.Unlock()

	key := ex.ID.Key()
	if _, exists := u.custom[key]; !exists {
		u.customOrder = append(u.customOrder, key)
	}
	u.custom[key] = ex
	return nil
}

func (s *MemoryStore) CustomExercises(ctx context.Context, user catalog.ID) ([]catalog.Exercise, error) {
	u := s.user(user, false)
	if u == nil {
		return nil, nil
	}
	u.mu.RLock()
	defer u.mu.RUnlock()

	out := make([]catalog.Exercise, 0, len(u.customOrder))
	for _, key := range u.customOrder {
		out = append(out, u.custom[key])
	}
	return out, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		users := make([]*userState, 0, len(sh.users))
		for _, u := range sh.users {
			users = append(users, u)
		}
		sh.mu.Unlock()

		for _, u := range users {
			u.mu.RLock()
			st.Users++
			st.Sets += len(u.sets)
			st.Custom += len(u.customOrder)
			if u.checkin != nil {
				st.Checkins++
			}
			u.mu.RUnlock()
		}
	}
	return st, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
