package store

import (
	"context"
	"fmt"
	"sync"

	"onboarding/internal/onboarding/navigation"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
)

// InMemoryStore keeps encoded snapshots in a map. Storing bytes rather than
// values means callers never share state with the store.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID][]byte
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[id.SessionID][]byte)}
}

func (s *InMemoryStore) Create(_ context.Context, snap navigation.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[snap.SessionID]; ok {
		return fmt.Errorf("session %s: %w", snap.SessionID, sentinel.ErrConflict)
	}
	s.sessions[snap.SessionID] = data
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, sessionID id.SessionID) (navigation.Snapshot, error) {
	s.mu.RLock()
	data, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return navigation.Snapshot{}, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	return decode(sessionID, data)
}

func (s *InMemoryStore) Save(_ context.Context, snap navigation.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[snap.SessionID]; !ok {
		return fmt.Errorf("session %s: %w", snap.SessionID, sentinel.ErrNotFound)
	}
	s.sessions[snap.SessionID] = data
	return nil
}
