package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/afterus/afterus-backend/internal/api/middleware"
	"github.com/afterus/afterus-backend/internal/services"
)

const defaultJournalLimit = 20

type journalBody struct {
	Description *string `json:"description"`
	Date        *Date   `json:"date"`
}

func (b journalBody) request() services.JournalRequest {
	return services.JournalRequest{Description: b.Description, Date: timePtr(b.Date)}
}

// ListJournal returns entries, newest date first
func ListJournal(journalService *services.JournalService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := queryInt(c, "limit", defaultJournalLimit)
		if err != nil {
			return writeError(c, err)
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil {
			return writeError(c, err)
		}

		entries, err := journalService.List(c.UserContext(), middleware.GetUserID(c), limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}

// CreateJournal stores a new entry
func CreateJournal(journalService *services.JournalService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body journalBody
		if err := c.BodyParser(&body); err != nil {
			return badRequestJSON(c, "Invalid request body")
		}

		entry, err := journalService.Create(c.UserContext(), middleware.GetUserID(c), body.request())
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// UpdateJournal edits an entry
func UpdateJournal(journalService *services.JournalService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "id")
		if err != nil {
			return writeError(c, err)
		}

		var body journalBody
		if err := c.BodyParser(&body); err != nil {
			return badRequestJSON(c, "Invalid request body")
		}

		entry, err := journalService.Update(c.UserContext(), middleware.GetUserID(c), id, body.request())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(entry)
	}
}

// DeleteJournal removes an entry
func DeleteJournal(journalService *services.JournalService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "id")
		if err != nil {
			return writeError(c, err)
		}

		if err := journalService.Delete(c.UserContext(), middleware.GetUserID(c), id); err != nil {
			return writeError(c, err)
		}
		return c.JSON(statusResponse("Journal entry deleted successfully"))
	}
}
