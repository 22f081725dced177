package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/afterus/afterus-backend/internal/api/middleware"
	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/services"
)

type noContactBody struct {
	Date    Date    `json:"date"`
	Success bool    `json:"success"`
	Mood    *string `json:"mood"`
	Notes   *string `json:"notes"`
}

type activityBody struct {
	Completed     *bool `json:"completed"`
	CompletedDate *Date `json:"completed_date"`
}

// dateQuery reads an optional YYYY-MM-DD query parameter
func dateQuery(c *fiber.Ctx, name string) (*Date, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", services.ErrValidation, name, err)
	}
	return &Date{Time: t}, nil
}

// ListNoContactDays returns logged days, newest first, optionally bounded by
// start_date and end_date
func ListNoContactDays(healingService *services.HealingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, err := dateQuery(c, "start_date")
		if err != nil {
			return writeError(c, err)
		}
		end, err := dateQuery(c, "end_date")
		if err != nil {
			return writeError(c, err)
		}

		days, err := healingService.ListNoContactDays(c.UserContext(), middleware.GetUserID(c), models.DateRange{
			Start: timePtr(start),
			End:   timePtr(end),
		})
		if err != nil {
			return err
		}
		return c.JSON(days)
	}
}

// LogNoContactDay records one day; a second entry for the date answers 409
func LogNoContactDay(healingService *services.HealingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body noContactBody
		if err := c.BodyParser(&body); err != nil {
			return badRequestJSON(c, "Invalid request body")
		}

		day, err := healingService.LogNoContactDay(c.UserContext(), middleware.GetUserID(c), services.CreateNoContactRequest{
			Date:    body.Date.Time,
			Success: body.Success,
			Mood:    body.Mood,
			Notes:   body.Notes,
		}, clientInfo(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(day)
	}
}

// GetStreak returns the current and longest no-contact streaks
func GetStreak(healingService *services.HealingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := healingService.Streak(c.UserContext(), middleware.GetUserID(c))
		if err != nil {
			return err
		}
		return c.JSON(summary)
	}
}

// ListClosureActivities returns the caller's activities
func ListClosureActivities(healingService *services.HealingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		activities, err := healingService.ListActivities(c.UserContext(), middleware.GetUserID(c))
		if err != nil {
			return err
		}
		return c.JSON(activities)
	}
}

// UpdateClosureActivity completes or reopens an activity
func UpdateClosureActivity(healingService *services.HealingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "id")
		if err != nil {
			return writeError(c, err)
		}

		var body activityBody
		if err := c.BodyParser(&body); err != nil {
			return badRequestJSON(c, "Invalid request body")
		}

		activity, err := healingService.UpdateActivity(c.UserContext(), middleware.GetUserID(c), id, models.ActivityUpdate{
			Completed:     body.Completed,
			CompletedDate: timePtr(body.CompletedDate),
		})
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(activity)
	}
}

// GetAIPersonality returns the companion settings, creating defaults on first read
func GetAIPersonality(healingService *services.HealingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := healingService.Personality(c.UserContext(), middleware.GetUserID(c))
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// UpdateAIPersonality upserts the provided fields
func UpdateAIPersonality(healingService *services.HealingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var upd models.PersonalityUpdate
		if err := c.BodyParser(&upd); err != nil {
			return badRequestJSON(c, "Invalid request body")
		}

		p, err := healingService.UpdatePersonality(c.UserContext(), middleware.GetUserID(c), upd)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(p)
	}
}
