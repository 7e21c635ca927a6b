package quizsessions

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultTTL bounds how long a started quiz waits for its submission.
const DefaultTTL = 30 * time.Minute

var ErrNoActiveQuiz = errors.New("no active quiz")

// Store remembers which questions a player was dealt until they submit.
type Store interface {
	Put(ctx context.Context, playerID string, questionIDs []int) error
	// Take returns and forgets the player's in-flight question ids.
	Take(ctx context.Context, playerID string) ([]int, error)
}

type memoryEntry struct {
	ids     []int
	expires time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Put(_ context.Context, playerID string, questionIDs []int) error {
	ids := append([]int(nil), questionIDs...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[playerID] = memoryEntry{ids: ids, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Take(_ context.Context, playerID string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[playerID]
	if !ok {
		return nil, ErrNoActiveQuiz
	}
	delete(s.entries, playerID)
	if s.now().After(entry.expires) {
		return nil, ErrNoActiveQuiz
	}
	return entry.ids, nil
}
