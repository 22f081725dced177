package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/afterus/afterus-backend/internal/analysis"
	"github.com/afterus/afterus-backend/internal/auth"
	"github.com/afterus/afterus-backend/internal/companion"
	"github.com/afterus/afterus-backend/internal/repository"
	"github.com/afterus/afterus-backend/internal/services"
)

var badRequest = []error{
	services.ErrValidation,
	services.ErrUnsupportedFile,
	services.ErrInvalidEncoding,
	services.ErrUnsupportedFormat,
	analysis.ErrNoMessagesFound,
	analysis.ErrEmptyInput,
	companion.ErrEmptyMessage,
	companion.ErrInvalidPersonalityMode,
	auth.ErrInvalidInput,
	auth.ErrPasswordTooShort,
	auth.ErrPasswordTooWeak,
	auth.ErrEmailAlreadyExists,
}

var notFound = []error{
	services.ErrChatNotFound,
	services.ErrMemoryNotFound,
	services.ErrActivityNotFound,
	services.ErrJournalNotFound,
	auth.ErrUserNotFound,
	repository.ErrNotFound,
}

var unauthorized = []error{
	auth.ErrInvalidCredentials,
	auth.ErrInvalidToken,
	auth.ErrExpiredToken,
	auth.ErrSessionNotFound,
	auth.ErrSessionExpired,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusFor maps a service error to its HTTP status; zero means unknown
func statusFor(err error) int {
	switch {
	case isAny(err, badRequest):
		return fiber.StatusBadRequest
	case isAny(err, notFound):
		return fiber.StatusNotFound
	case isAny(err, unauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, auth.ErrUserInactive):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNoContactExists):
		return fiber.StatusConflict
	}
	return 0
}

// writeError answers with {"error": msg} for known errors. Anything else is
// returned to the app error handler, which logs it and answers 500.
func writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == 0 {
		return err
	}
	msg := err.Error()
	if status == fiber.StatusConflict {
		msg = "Entry already exists for this date"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func statusResponse(msg string) fiber.Map {
	return fiber.Map{"success": true, "message": msg}
}

func badRequestJSON(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// paramUUID parses a path parameter; a malformed ID reads as not found
func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %q: %w", name, c.Params(name), repository.ErrNotFound)
	}
	return id, nil
}

// queryInt reads an integer query parameter, falling back to def when absent
func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", services.ErrValidation, name)
	}
	return n, nil
}

func clientInfo(c *fiber.Ctx) auth.ClientInfo {
	return auth.ClientInfo{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}
