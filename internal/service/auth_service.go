package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/research-chat/internal/auth"
	"github.com/spec-kit/research-chat/internal/domain"
	"github.com/spec-kit/research-chat/internal/events"
	"github.com/spec-kit/research-chat/internal/repository"
	apperrors "github.com/spec-kit/research-chat/pkg/util"
)

// Caller-facing messages for the auth endpoints.
const (
	MsgCredentialsRequired = "Email and password are required"
	MsgUserExists          = "User with this email already exists"
	MsgInvalidCredentials  = "Invalid email or password"
)

// TokenIssuer issues session tokens.
type TokenIssuer interface {
	Issue(email string) (string, error)
}

// SignupInput is a validated signup request.
type SignupInput struct {
	FullName string
	Email    string
	Password string
}

// AuthService coordinates signup and login flows.
type AuthService struct {
	credentials repository.CredentialRepository
	tokens      TokenIssuer
	hasher      auth.PasswordHasher
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Credentials repository.CredentialRepository
	Tokens      TokenIssuer
	Hasher      auth.PasswordHasher
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	if deps.Dispatcher == nil {
		deps.Dispatcher = events.NewInMemoryDispatcher()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &AuthService{
		credentials: deps.Credentials,
		tokens:      deps.Tokens,
		hasher:      deps.Hasher,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		now:         time.Now,
	}
}

// Signup creates a credential record and returns a session token for it.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (string, error) {
	if in.Email == "" || in.Password == "" {
		return "", apperrors.NewValidationError(MsgCredentialsRequired)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	token, err := s.tokens.Issue(in.Email)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	err = s.credentials.Create(ctx, &domain.Credential{
		Email:        in.Email,
		DisplayName:  in.FullName,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if errors.Is(err, repository.ErrCredentialExists) {
		return "", apperrors.NewConflict(MsgUserExists)
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{Type: events.EventUserSignedUp, Subject: auth.Subject(in.Email)})
	return token, nil
}

// Login checks the password for email and returns a fresh session token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperrors.NewValidationError(MsgCredentialsRequired)
	}

	subject := auth.Subject(email)
	s.logger.Info("login attempt", zap.String("subject", subject))

	cred, err := s.credentials.Get(ctx, email)
	if errors.Is(err, repository.ErrCredentialNotFound) {
		s.rejectLogin(ctx, subject, "unknown email")
		return "", apperrors.NewUnauthorized(MsgInvalidCredentials)
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	if !s.hasher.Verify(password, cred.PasswordHash) {
		s.rejectLogin(ctx, subject, "password mismatch")
		return "", apperrors.NewUnauthorized(MsgInvalidCredentials)
	}

	token, err := s.tokens.Issue(email)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{Type: events.EventUserLoggedIn, Subject: subject})
	return token, nil
}

func (s *AuthService) rejectLogin(ctx context.Context, subject, reason string) {
	s.publish(ctx, events.Event{
		Type:    events.EventLoginRejected,
		Subject: subject,
		Payload: events.LoginRejectedPayload{Reason: reason},
	})
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	event.Timestamp = s.now()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("audit publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
