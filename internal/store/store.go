package store

import (
	"context"
	"sync"
	"time"

	"github.com/yangxiaofu/gridiron-clock/internal/models"
)

// TransitionStore persists game setups and the resulting stream of
// clock snapshots for downstream renderers.
type TransitionStore interface {
	SaveSetup(ctx context.Context, setup models.GameSetup, at time.Time) error
	SaveTransition(ctx context.Context, snap models.Snapshot) error
	Close() error
}

// MemoryStore keeps setups and transitions in process memory. It backs
// tests and local runs without Redis.
type MemoryStore struct {
	mu          sync.RWMutex
	setups      map[string]models.GameSetup
	transitions map[string][]models.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		setups:      make(map[string]models.GameSetup),
		transitions: make(map[string][]models.Snapshot),
	}
}

func (s *MemoryStore) SaveSetup(_ context.Context, setup models.GameSetup, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setups[setup.GameID] = setup
	return nil
}

func (s *MemoryStore) SaveTransition(_ context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions[snap.GameID] = append(s.transitions[snap.GameID], snap)
	return nil
}

// Transitions returns a copy of the recorded transitions for a game in
// arrival order.
func (s *MemoryStore) Transitions(gameID string) []models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Snapshot, len(s.transitions[gameID]))
	copy(out, s.transitions[gameID])
	return out
}

// Latest returns the most recent transition for a game.
func (s *MemoryStore) Latest(gameID string) (models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.transitions[gameID]
	if len(all) == 0 {
		return models.Snapshot{}, false
	}
	return all[len(all)-1], true
}

func (s *MemoryStore) Close() error { return nil }
