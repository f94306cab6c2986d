package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/research-chat/internal/domain"
	apperrors "github.com/spec-kit/research-chat/pkg/util"
)

const sessionKey = "auth_session"

// Messages returned to callers when a session cannot be established.
const (
	MsgMissingAuthHeader = "Missing or invalid Authorization header"
	MsgTokenExpired      = "Token has expired"
	MsgInvalidToken      = "Invalid token"
	MsgMissingSessionID  = "Missing session ID in token"
)

// Verifier validates session tokens.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// SessionMiddleware validates bearer tokens and stores the session in locals.
type SessionMiddleware struct {
	tokens Verifier
	logger *zap.Logger
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens Verifier, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		m.logger.Warn("protected endpoint called without bearer token", zap.String("path", c.Path()))
		return apperrors.NewUnauthorized(MsgMissingAuthHeader)
	}

	claims, err := m.tokens.Verify(strings.TrimSpace(token))
	switch {
	case err == nil:
	case errors.Is(err, ErrExpiredToken):
		m.logger.Warn("protected endpoint called with expired token", zap.String("path", c.Path()))
		return apperrors.NewUnauthorized(MsgTokenExpired)
	case errors.Is(err, ErrInvalidToken):
		m.logger.Warn("protected endpoint called with invalid token", zap.String("path", c.Path()), zap.Error(err))
		return apperrors.NewUnauthorized(MsgInvalidToken)
	default:
		return apperrors.NewInternalError(err)
	}

	if claims.SessionID == "" {
		return apperrors.NewUnauthorized(MsgMissingSessionID)
	}

	c.Locals(sessionKey, claims.Session())
	return c.Next()
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (domain.Session, bool) {
	session, ok := c.Locals(sessionKey).(domain.Session)
	return session, ok
}
