package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const rateWindow = time.Minute

// limitKey keys by user once authenticated, otherwise by client IP
func limitKey(scope string, byUser bool) func(*fiber.Ctx) string {
	return func(c *fiber.Ctx) string {
		if byUser {
			if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
				return scope + ":user:" + userID
			}
		}
		return scope + ":ip:" + c.IP()
	}
}

func perMinute(max int, key func(*fiber.Ctx) string, message string, skipFailed bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:                max,
		Expiration:         rateWindow,
		KeyGenerator:       key,
		SkipFailedRequests: skipFailed,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": message})
		},
	})
}

// DefaultRateLimit allows 100 requests per minute per user, or per IP before
// authentication
func DefaultRateLimit() fiber.Handler {
	return perMinute(100, limitKey("api", true), "Rate limit exceeded. Please try again later.", false)
}

// AuthRateLimit allows 5 login or signup attempts per minute per IP
func AuthRateLimit() fiber.Handler {
	return perMinute(5, limitKey("auth", false), "Too many authentication attempts. Please try again later.", false)
}

// CompanionRateLimit allows 30 companion messages per minute per user.
// Failed requests are not counted.
func CompanionRateLimit() fiber.Handler {
	return perMinute(30, limitKey("companion", true), "Slow down a little. Please wait before sending more messages.", true)
}
