package inmemory

import (
	"context"
	"sync"

	"github.com/newschat-ai/newschat/internal/models"
)

// Store is an in-memory session store for tests and local runs.
type Store struct {
	sessions map[string][]models.Message
	mu       sync.RWMutex
}

func NewStore() *Store {
	return &Store{sessions: make(map[string][]models.Message)}
}

func (s *Store) Append(_ context.Context, sessionID string, msg models.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], msg)
	return nil
}

func (s *Store) List(_ context.Context, sessionID string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.sessions[sessionID]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *Store) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
