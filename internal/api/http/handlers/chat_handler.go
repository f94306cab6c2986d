package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/research-chat/internal/api/dto"
	"github.com/spec-kit/research-chat/internal/auth"
	"github.com/spec-kit/research-chat/internal/service"
	apperrors "github.com/spec-kit/research-chat/pkg/util"
)

// ChatHandler relays authenticated turns to the agent.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chatService}
}

// Chat handles POST /chat. The session middleware must run first.
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.MsgMissingAuthHeader)
	}

	var req dto.ChatRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}

	completion, err := h.chat.Chat(c.UserContext(), service.ChatInput{
		Session:    session,
		Input:      req.Input,
		EndSession: req.EndSession,
	})
	if err != nil {
		return err
	}

	return c.JSON(dto.ChatResponse{Response: completion})
}
