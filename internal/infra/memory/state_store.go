package memory

import (
	"context"
	"sync"

	"trivia-race-service/internal/domain"
)

// StateStore is an in-process implementation of app.StateStore.
type StateStore struct {
	mu  sync.RWMutex
	doc domain.RaceState
}

func NewStateStore() *StateStore {
	return &StateStore{doc: domain.NewRaceState()}
}

func (s *StateStore) LoadState(_ context.Context) (domain.RaceState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone(), nil
}

func (s *StateStore) SaveState(_ context.Context, doc domain.RaceState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.Version != s.doc.Version {
		return domain.ErrVersionConflict
	}
	next := doc.Clone()
	next.Version++
	s.doc = next
	return nil
}
