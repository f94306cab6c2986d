package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/research-chat/pkg/util"
)

// MsgInvalidBody is returned for request bodies that are not valid JSON.
const MsgInvalidBody = "Invalid request body"

// decodeJSON reads the body as JSON whatever the Content-Type says. Browser
// clients post without one. An empty body decodes as {}.
func decodeJSON(c *fiber.Ctx, out any) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return nil
	}
	if err := c.App().Config().JSONDecoder(body, out); err != nil {
		return apperrors.NewValidationError(MsgInvalidBody)
	}
	return nil
}
