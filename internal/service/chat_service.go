package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/research-chat/internal/agent"
	"github.com/spec-kit/research-chat/internal/auth"
	"github.com/spec-kit/research-chat/internal/config"
	"github.com/spec-kit/research-chat/internal/domain"
	"github.com/spec-kit/research-chat/internal/events"
	apperrors "github.com/spec-kit/research-chat/pkg/util"
)

// MsgMissingInput is returned when a chat request carries no input text.
const MsgMissingInput = "Missing 'input' field"

// ChatInput is one authenticated conversational turn.
type ChatInput struct {
	Session    domain.Session
	Input      string
	EndSession bool
}

// ChatService relays user input to the conversational agent.
type ChatService struct {
	agent      agent.Invoker
	cfg        config.AgentConfig
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewChatService builds the service.
func NewChatService(invoker agent.Invoker, cfg config.AgentConfig, dispatcher events.Dispatcher, logger *zap.Logger) *ChatService {
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{agent: invoker, cfg: cfg, dispatcher: dispatcher, logger: logger}
}

// Chat invokes the agent for one turn and returns the assembled completion.
// Long-term memory is keyed by the subject derived from the session email,
// the turn itself by the token's session id.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (string, error) {
	if in.Input == "" {
		return "", apperrors.NewValidationError(MsgMissingInput)
	}

	subject := auth.Subject(in.Session.Email)
	s.logger.Info("chat invoked", zap.String("subject", subject), zap.String("session_id", in.Session.SessionID))

	stream, err := s.agent.Invoke(ctx, agent.InvokeInput{
		AgentID:    s.cfg.AgentID,
		AliasID:    s.cfg.AgentAliasID,
		SessionID:  in.Session.SessionID,
		InputText:  in.Input,
		MemoryID:   auth.MemoryID(subject),
		EndSession: in.EndSession,
	})
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	completion, err := agent.Collect(stream)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	if s.cfg.RefusalMessage != "" && completion == s.cfg.RefusalMessage {
		s.publish(ctx, events.Event{Type: events.EventGuardrailRefusal, Subject: subject, SessionID: in.Session.SessionID})
	}
	s.publish(ctx, events.Event{
		Type:      events.EventChatCompleted,
		Subject:   subject,
		SessionID: in.Session.SessionID,
		Payload:   events.ChatCompletedPayload{EndSession: in.EndSession, ResponseLength: len(completion)},
	})

	return completion, nil
}

func (s *ChatService) publish(ctx context.Context, event events.Event) {
	event.Timestamp = time.Now()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("audit publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
