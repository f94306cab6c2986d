package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/research-chat/internal/api/http/handlers"
	"github.com/spec-kit/research-chat/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Chat    *handlers.ChatHandler
	Session *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Post("/signup", cfg.Auth.Signup)
	app.Post("/login", cfg.Auth.Login)

	// Paths the web frontend posts to.
	user := app.Group("/user")
	user.Post("/signup", cfg.Auth.Signup)
	user.Post("/login", cfg.Auth.Login)

	app.Post("/chat", cfg.Session.Handle, cfg.Chat.Chat)
}
