package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"trivia-race-service/internal/domain"
)

// StateStore keeps the RaceState as a JSON document on disk.
// The version check only serializes writers inside this process; writers in other
// processes sharing the directory still race on last-writer-wins.
type StateStore struct {
	path string
	mu   sync.Mutex
}

func NewStateStore(dir string) (*StateStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &StateStore{path: filepath.Join(dir, StateFileName)}, nil
}

func (s *StateStore) LoadState(_ context.Context) (domain.RaceState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *StateStore) SaveState(_ context.Context, doc domain.RaceState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return err
	}
	if current.Version != doc.Version {
		return domain.ErrVersionConflict
	}
	doc.Version++
	return writeJSON(s.path, doc)
}

func (s *StateStore) read() (domain.RaceState, error) {
	var doc domain.RaceState
	ok, err := readJSON(s.path, &doc)
	if err != nil {
		return domain.NewRaceState(), err
	}
	if !ok {
		return domain.NewRaceState(), nil
	}
	domain.EnsureKeys(&doc)
	return doc, nil
}
