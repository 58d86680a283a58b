package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/repositories/credentials"
)

// TokenStore keeps the client's credentials between calls or runs.
type TokenStore interface {
	Load(ctx context.Context) (models.Credentials, error)
	Save(ctx context.Context, c models.Credentials) error
	Clear(ctx context.Context) error
}

// RepositoryTokenStore persists credentials for one server in the local
// SQLite store.
type RepositoryTokenStore struct {
	repo   credentials.Repository
	server string
}

func NewRepositoryTokenStore(repo credentials.Repository, server string) *RepositoryTokenStore {
	return &RepositoryTokenStore{repo: repo, server: server}
}

func (s *RepositoryTokenStore) Load(ctx context.Context) (models.Credentials, error) {
	c, err := s.repo.Get(ctx, s.server)
	if err != nil || c == nil {
		return models.Credentials{}, err
	}
	return *c, nil
}

func (s *RepositoryTokenStore) Save(ctx context.Context, c models.Credentials) error {
	return s.repo.Save(ctx, s.server, c)
}

func (s *RepositoryTokenStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, s.server)
}

// MemoryTokenStore keeps credentials for the life of the process.
type MemoryTokenStore struct {
	mu sync.Mutex
	c  models.Credentials
}

func (s *MemoryTokenStore) Load(context.Context) (models.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c, nil
}

func (s *MemoryTokenStore) Save(_ context.Context, c models.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c = c
	return nil
}

func (s *MemoryTokenStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c = models.Credentials{}
	return nil
}
