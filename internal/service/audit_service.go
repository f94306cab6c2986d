package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/research-chat/internal/events"
)

// AuditService writes auth and chat events to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserSignedUp, a.handleUserSignedUp)
	a.dispatcher.Subscribe(events.EventUserLoggedIn, a.handleUserLoggedIn)
	a.dispatcher.Subscribe(events.EventLoginRejected, a.handleLoginRejected)
	a.dispatcher.Subscribe(events.EventChatCompleted, a.handleChatCompleted)
	a.dispatcher.Subscribe(events.EventGuardrailRefusal, a.handleGuardrailRefusal)
}

func (a *AuditService) handleUserSignedUp(_ context.Context, event events.Event) error {
	a.logger.Info("UserSignedUp", zap.String("subject", event.Subject), zap.String("session_id", event.SessionID))
	return nil
}

func (a *AuditService) handleUserLoggedIn(_ context.Context, event events.Event) error {
	a.logger.Info("UserLoggedIn", zap.String("subject", event.Subject), zap.String("session_id", event.SessionID))
	return nil
}

func (a *AuditService) handleLoginRejected(_ context.Context, event events.Event) error {
	a.logger.Warn("LoginRejected", zap.String("subject", event.Subject), zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleChatCompleted(_ context.Context, event events.Event) error {
	a.logger.Debug("ChatCompleted",
		zap.String("subject", event.Subject),
		zap.String("session_id", event.SessionID),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleGuardrailRefusal(_ context.Context, event events.Event) error {
	a.logger.Warn("Guardrail intervened in response generation",
		zap.String("subject", event.Subject),
		zap.String("session_id", event.SessionID))
	return nil
}
