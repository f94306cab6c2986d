package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/research-chat/pkg/util"
)

// RequestLogger logs one line per request and feeds the request counters.
// Errors returned by later handlers have not been rendered yet, so their
// status is taken from the mapped DomainError.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = apperrors.ToDomainError(err).HTTPStatus
		}

		path := c.Path()
		method := c.Method()
		metrics.RecordRequest(path, method, status, duration)
		logger.Info("request handled",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
		return err
	}
}
