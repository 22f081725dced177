package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/afterus/afterus-backend/internal/api/middleware"
	"github.com/afterus/afterus-backend/internal/audit"
	"github.com/afterus/afterus-backend/internal/auth"
	"github.com/afterus/afterus-backend/internal/models"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

// RegisterRequest represents a signup request
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// setAuthCookies mirrors the tokens into cookies for web clients
func setAuthCookies(c *fiber.Ctx, result *auth.AuthResult) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    result.AccessToken,
		Expires:  time.Now().Add(auth.AccessTokenTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Strict",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    result.RefreshToken,
		Expires:  time.Now().Add(auth.RefreshTokenTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Strict",
	})
}

func clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   true,
			SameSite: "Strict",
		})
	}
}

// Register handles user registration. The new account is logged in.
func Register(authService *auth.Service, auditService *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequestJSON(c, "Invalid request body")
		}

		client := clientInfo(c)
		result, err := authService.Register(c.UserContext(), req.Email, req.Name, req.Password, client)
		if err != nil {
			return writeError(c, err)
		}

		auditService.Record(c.UserContext(),
			audit.NewEvent(audit.EventSignup, &result.User.ID, client.IPAddress, client.UserAgent))

		setAuthCookies(c, result)
		return c.Status(fiber.StatusCreated).JSON(result)
	}
}

// Login handles user login
func Login(authService *auth.Service, auditService *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequestJSON(c, "Invalid request body")
		}
		if req.Email == "" || req.Password == "" {
			return badRequestJSON(c, "Email and password are required")
		}

		client := clientInfo(c)
		client.DeviceName = req.DeviceName
		if client.DeviceName == "" {
			client.DeviceName = "Unknown Device"
		}

		result, err := authService.Login(c.UserContext(), req.Email, req.Password, client)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				auditService.Record(c.UserContext(),
					audit.NewEvent(audit.EventLoginFailed, nil, client.IPAddress, client.UserAgent).
						WithMeta("email", req.Email).
						Failed(err))
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Incorrect email or password",
				})
			}
			return writeError(c, err)
		}

		auditService.Record(c.UserContext(),
			audit.NewEvent(audit.EventLogin, &result.User.ID, client.IPAddress, client.UserAgent))

		setAuthCookies(c, result)
		return c.JSON(result)
	}
}

// RefreshToken rotates the token pair. The refresh token may come from the
// body or the refresh_token cookie.
func RefreshToken(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RefreshRequest
		_ = c.BodyParser(&req)
		if req.RefreshToken == "" {
			req.RefreshToken = c.Cookies("refresh_token")
		}
		if req.RefreshToken == "" {
			return badRequestJSON(c, "Refresh token is required")
		}

		result, err := authService.RefreshToken(c.UserContext(), req.RefreshToken)
		if err != nil {
			return writeError(c, err)
		}

		setAuthCookies(c, result)
		return c.JSON(result)
	}
}

// Logout revokes the current session
func Logout(authService *auth.Service, auditService *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userCtx := middleware.GetUserContext(c)
		if err := authService.Logout(c.UserContext(), userCtx.SessionID); err != nil {
			return writeError(c, err)
		}

		client := clientInfo(c)
		auditService.Record(c.UserContext(),
			audit.NewEvent(audit.EventLogout, &userCtx.UserID, client.IPAddress, client.UserAgent))

		clearAuthCookies(c)
		return c.JSON(statusResponse("Successfully logged out"))
	}
}

// GetCurrentUser returns the authenticated user
func GetCurrentUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(middleware.GetUser(c))
	}
}

// UpdateProfile applies the provided profile fields
func UpdateProfile(authService *auth.Service, auditService *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ProfileUpdate
		if err := c.BodyParser(&req); err != nil {
			return badRequestJSON(c, "Invalid request body")
		}

		userID := middleware.GetUserID(c)
		user, err := authService.UpdateProfile(c.UserContext(), userID, req)
		if err != nil {
			return writeError(c, err)
		}

		client := clientInfo(c)
		auditService.Record(c.UserContext(),
			audit.NewEvent(audit.EventProfileUpdate, &userID, client.IPAddress, client.UserAgent))

		return c.JSON(user)
	}
}

// ChangePassword changes the caller's password
func ChangePassword(authService *auth.Service, auditService *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ChangePasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequestJSON(c, "Invalid request body")
		}

		userID := middleware.GetUserID(c)
		client := clientInfo(c)
		err := authService.ChangePassword(c.UserContext(), userID, req.CurrentPassword, req.NewPassword)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			auditService.Record(c.UserContext(),
				audit.NewEvent(audit.EventPasswordChange, &userID, client.IPAddress, client.UserAgent).Failed(err))
			return badRequestJSON(c, "Incorrect password")
		}
		if err != nil {
			return writeError(c, err)
		}

		auditService.Record(c.UserContext(),
			audit.NewEvent(audit.EventPasswordChange, &userID, client.IPAddress, client.UserAgent))

		return c.JSON(statusResponse("Password updated successfully"))
	}
}
