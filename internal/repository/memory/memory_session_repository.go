package memory

import (
	"context"
	"sync"

	"github.com/honeynil/SocialWorld-web/internal/repository"
	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
)

// Backend keeps sessions in process memory. Sessions are lost on restart.
type Backend struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

func NewBackend() *Backend {
	return &Backend{sessions: make(map[string]map[string]string)}
}

func (b *Backend) Open(sessionID string) repository.SessionStore {
	return &store{backend: b, id: sessionID}
}

func (b *Backend) Close() error {
	return nil
}

// Len reports how many sessions hold at least one key.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}

type store struct {
	backend *Backend
	id      string
}

func (s *store) Get(_ context.Context, key string) (string, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	v, ok := s.backend.sessions[s.id][key]
	if !ok {
		return "", pkgerrors.ErrKeyNotFound
	}
	return v, nil
}

func (s *store) Set(_ context.Context, key, value string) error {
	if s.id == "" {
		return pkgerrors.ErrEmptySessionID
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	values, ok := s.backend.sessions[s.id]
	if !ok {
		values = make(map[string]string)
		s.backend.sessions[s.id] = values
	}
	values[key] = value
	return nil
}

func (s *store) Delete(_ context.Context, key string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	values, ok := s.backend.sessions[s.id]
	if !ok {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		delete(s.backend.sessions, s.id)
	}
	return nil
}

func (s *store) Clear(_ context.Context) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	delete(s.backend.sessions, s.id)
	return nil
}
