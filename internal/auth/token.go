package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/research-chat/internal/domain"
)

var (
	// ErrExpiredToken is returned when a token is presented at or after its expiry.
	ErrExpiredToken = errors.New("token has expired")
	// ErrInvalidToken covers bad signatures, malformed encodings and missing claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrSigningSecretMissing means the codec was built without a secret.
	ErrSigningSecretMissing = errors.New("signing secret is not configured")
	// ErrEmptyEmail is returned when a token is requested for an empty email.
	ErrEmptyEmail = errors.New("email is required")
)

const memoryIDPrefix = "memory-"

// Subject derives the stable pseudonymous identifier for an email.
func Subject(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// MemoryID is the agent long-term memory key for a subject.
func MemoryID(subject string) string {
	return memoryIDPrefix + subject
}

// Claims describes JWT payload.
type Claims struct {
	Email     string `json:"email"`
	SessionID string `json:"sessionId,omitempty"`
	jwt.RegisteredClaims
}

// Session converts verified claims into the domain view.
func (c *Claims) Session() domain.Session {
	s := domain.Session{
		Email:     c.Email,
		Subject:   c.RegisteredClaims.Subject,
		SessionID: c.SessionID,
	}
	if c.IssuedAt != nil {
		s.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

// TokenManager handles issuing and validating session tokens.
type TokenManager struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

// NewTokenManager builds a new manager for one of the HMAC algorithms.
func NewTokenManager(secret, algorithm string, ttl time.Duration, opts ...Option) (*TokenManager, error) {
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	tm := &TokenManager{secret: []byte(secret), method: method, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

// Issue signs a fresh session token for email. Every call gets a new session id.
func (tm *TokenManager) Issue(email string) (string, error) {
	if len(tm.secret) == 0 {
		return "", ErrSigningSecretMissing
	}
	if strings.TrimSpace(email) == "" {
		return "", ErrEmptyEmail
	}

	issuedAt := tm.now()
	claims := &Claims{
		Email:     email,
		SessionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   Subject(email),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(tm.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(tm.method, claims).SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify validates the signature and expiry and returns the claims.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	if len(tm.secret) == 0 {
		return nil, ErrSigningSecretMissing
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{tm.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
