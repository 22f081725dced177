package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorHandler answers {"error", "code"}. Errors that are not *fiber.Error
// are logged and hidden behind a generic 500.
func ErrorHandler(logger logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			logger.WithError(err).WithFields(logrus.Fields{
				"method":  c.Method(),
				"path":    c.Path(),
				"user_id": c.Locals("user_id"),
			}).Error("Unhandled request error")
		}

		return c.Status(code).JSON(fiber.Map{
			"error": msg,
			"code":  code,
		})
	}
}
