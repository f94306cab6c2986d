package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/research-chat/internal/api/dto"
	"github.com/spec-kit/research-chat/internal/service"
)

// Success messages for the auth endpoints.
const (
	MsgSignupSuccess = "User created successfully"
	MsgLoginSuccess  = "Login successful"
)

// AuthHandler exposes signup and login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}

	token, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(dto.AuthResponse{Message: MsgSignupSuccess, Token: token})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}

	token, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.AuthResponse{Message: MsgLoginSuccess, Token: token})
}
