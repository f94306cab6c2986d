package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/research-chat/internal/domain"
)

type postgresCredentialRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCredentialRepository returns a Postgres-backed implementation.
func NewPostgresCredentialRepository(pool *pgxpool.Pool) CredentialRepository {
	return &postgresCredentialRepository{pool: pool}
}

func (r *postgresCredentialRepository) Get(ctx context.Context, email string) (*domain.Credential, error) {
	const query = `
        SELECT email, display_name, password_hash, created_at
        FROM credentials WHERE email=$1`

	var cred domain.Credential
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&cred.Email,
		&cred.DisplayName,
		&cred.PasswordHash,
		&cred.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &cred, nil
}

func (r *postgresCredentialRepository) Create(ctx context.Context, cred *domain.Credential) error {
	const query = `
        INSERT INTO credentials (email, display_name, password_hash, created_at)
        VALUES ($1, $2, $3, $4)`

	if _, err := r.pool.Exec(ctx, query,
		cred.Email,
		cred.DisplayName,
		cred.PasswordHash,
		cred.CreatedAt,
	); err != nil {
		return mapPostgresError(err)
	}
	return nil
}

func (r *postgresCredentialRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func mapPostgresError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrCredentialExists
	}
	return fmt.Errorf("failed to create credential: %w", err)
}
