package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/research-chat/internal/domain"
)

type memoryCredentialRepository struct {
	mu      sync.RWMutex
	records map[string]domain.Credential
}

// NewMemoryCredentialRepository returns a process-local store for development and tests.
func NewMemoryCredentialRepository() CredentialRepository {
	return &memoryCredentialRepository{records: make(map[string]domain.Credential)}
}

func (r *memoryCredentialRepository) Get(_ context.Context, email string) (*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[email]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	return &rec, nil
}

func (r *memoryCredentialRepository) Create(_ context.Context, cred *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[cred.Email]; exists {
		return ErrCredentialExists
	}
	r.records[cred.Email] = *cred
	return nil
}

func (r *memoryCredentialRepository) Ping(context.Context) error {
	return nil
}
