package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/afterus/afterus-backend/internal/api/middleware"
	"github.com/afterus/afterus-backend/internal/services"
)

// DashboardStats returns the headline numbers
func DashboardStats(dashboardService *services.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := dashboardService.Stats(c.UserContext(), middleware.GetUserID(c))
		if err != nil {
			return err
		}
		return c.JSON(stats)
	}
}

// RecentActivity returns the merged activity feed
func RecentActivity(dashboardService *services.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := queryInt(c, "limit", services.DefaultActivityLimit)
		if err != nil {
			return writeError(c, err)
		}

		feed, err := dashboardService.RecentActivity(c.UserContext(), middleware.GetUserID(c), limit)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(feed)
	}
}

// Health reports database and provider status. A degraded service still
// answers 200.
func Health(monitor *services.HealthMonitor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(monitor.Check(c.UserContext()))
	}
}
