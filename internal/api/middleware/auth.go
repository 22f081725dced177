package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/afterus/afterus-backend/internal/auth"
	"github.com/afterus/afterus-backend/internal/models"
)

// TokenValidator resolves an access token to its user
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*models.User, *auth.JWTClaims, error)
}

// AuthConfig holds the auth middleware configuration
type AuthConfig struct {
	Validator TokenValidator
	Logger    logrus.FieldLogger
	// AllowQueryToken accepts ?token= for clients that cannot set headers,
	// such as browser websockets
	AllowQueryToken bool
}

// AuthRequired creates a middleware that requires a bearer token or the
// access_token cookie
func AuthRequired(validator TokenValidator, logger logrus.FieldLogger) fiber.Handler {
	return AuthMiddleware(AuthConfig{Validator: validator, Logger: logger})
}

// AuthMiddleware is the main authentication middleware
func AuthMiddleware(config AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.ExtractTokenFromBearer(c.Get("Authorization"))
		if token == "" {
			token = c.Cookies("access_token")
		}
		if token == "" && config.AllowQueryToken {
			token = c.Query("token")
		}

		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		user, claims, err := config.Validator.ValidateAccessToken(c.UserContext(), token)
		if err != nil {
			if config.Logger != nil {
				config.Logger.WithError(err).WithField("path", c.Path()).Debug("Rejected access token")
			}
			status := fiber.StatusUnauthorized
			if errors.Is(err, auth.ErrUserInactive) {
				status = fiber.StatusForbidden
			}
			return c.Status(status).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		storeUserContext(c, user, claims.SessionID)
		return c.Next()
	}
}

// storeUserContext stores user information in the fiber context
func storeUserContext(c *fiber.Ctx, user *models.User, sessionID string) {
	c.Locals("user_id", user.ID.String())
	c.Locals("session_id", sessionID)
	c.Locals("user", user)
	c.Locals("user_context", &models.UserContext{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		SessionID: sessionID,
	})
}

// GetUserContext returns the authenticated caller, or nil
func GetUserContext(c *fiber.Ctx) *models.UserContext {
	if uc, ok := c.Locals("user_context").(*models.UserContext); ok {
		return uc
	}
	return nil
}

// GetUser returns the authenticated user row, or nil
func GetUser(c *fiber.Ctx) *models.User {
	if u, ok := c.Locals("user").(*models.User); ok {
		return u
	}
	return nil
}

// GetUserID returns the authenticated user's ID, or uuid.Nil
func GetUserID(c *fiber.Ctx) uuid.UUID {
	if uc := GetUserContext(c); uc != nil {
		return uc.UserID
	}
	return uuid.Nil
}
