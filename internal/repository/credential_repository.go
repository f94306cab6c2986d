package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/research-chat/internal/domain"
)

var (
	// ErrCredentialNotFound is returned when no record exists for an email.
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrCredentialExists is returned when a record for the email is already stored.
	ErrCredentialExists = errors.New("credential already exists")
)

// CredentialRepository defines persistence access for account credentials.
// Records are created once and never updated or deleted.
type CredentialRepository interface {
	Get(ctx context.Context, email string) (*domain.Credential, error)
	Create(ctx context.Context, cred *domain.Credential) error
	Ping(ctx context.Context) error
}
