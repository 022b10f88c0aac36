package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/talgya/agro-hegemony/internal/engine"
)

// MemoryStore keeps snapshots in process. States are stored as JSON so a
// load returns an independent copy, as a database would.
type MemoryStore struct {
	mu    sync.Mutex
	games map[string][]byte
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string][]byte)}
}

func (s *MemoryStore) SaveGame(_ context.Context, st *engine.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.games[st.GameID] = b
	s.saves++
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LoadGame(_ context.Context, id string) (*engine.State, error) {
	s.mu.Lock()
	b, ok := s.games[id]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var st engine.State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Saves counts successful SaveGame calls.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
