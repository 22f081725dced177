package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/afterus/afterus-backend/internal/api/middleware"
	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/services"
)

type createMemoryBody struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Date         Date               `json:"date"`
	Type         *models.MemoryType `json:"type"`
	Mood         *string            `json:"mood"`
	Participants []string           `json:"participants"`
	ImageURL     *string            `json:"image_url"`
}

type updateMemoryBody struct {
	Title        *string            `json:"title"`
	Description  *string            `json:"description"`
	Date         *Date              `json:"date"`
	Type         *models.MemoryType `json:"type"`
	Mood         *string            `json:"mood"`
	Participants []string           `json:"participants"`
	ImageURL     *string            `json:"image_url"`
}

// ListMemories returns memories filtered by ?type with limit/offset paging
func ListMemories(memoryService *services.MemoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := queryInt(c, "limit", services.DefaultMemoryLimit)
		if err != nil {
			return writeError(c, err)
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil {
			return writeError(c, err)
		}

		memories, err := memoryService.List(c.UserContext(), middleware.GetUserID(c), c.Query("type"), limit, offset)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(memories)
	}
}

// CreateMemory stores a hand-entered memory
func CreateMemory(memoryService *services.MemoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body createMemoryBody
		if err := c.BodyParser(&body); err != nil {
			return badRequestJSON(c, "Invalid request body")
		}

		memory, err := memoryService.Create(c.UserContext(), middleware.GetUserID(c), services.CreateMemoryRequest{
			Title:        body.Title,
			Description:  body.Description,
			Date:         body.Date.Time,
			Type:         body.Type,
			Mood:         body.Mood,
			Participants: body.Participants,
			ImageURL:     body.ImageURL,
		})
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(memory)
	}
}

// UpdateMemory applies the provided fields
func UpdateMemory(memoryService *services.MemoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "id")
		if err != nil {
			return writeError(c, err)
		}

		var body updateMemoryBody
		if err := c.BodyParser(&body); err != nil {
			return badRequestJSON(c, "Invalid request body")
		}

		memory, err := memoryService.Update(c.UserContext(), middleware.GetUserID(c), id, models.MemoryUpdate{
			Title:        body.Title,
			Description:  body.Description,
			Date:         timePtr(body.Date),
			Type:         body.Type,
			Mood:         body.Mood,
			Participants: body.Participants,
			ImageURL:     body.ImageURL,
		})
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(memory)
	}
}

// DeleteMemory removes a memory
func DeleteMemory(memoryService *services.MemoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "id")
		if err != nil {
			return writeError(c, err)
		}

		if err := memoryService.Delete(c.UserContext(), middleware.GetUserID(c), id); err != nil {
			return writeError(c, err)
		}
		return c.JSON(statusResponse("Memory deleted successfully"))
	}
}

// ExtractMemories turns a stored chat into memories
func ExtractMemories(memoryService *services.MemoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "session_id")
		if err != nil {
			return writeError(c, err)
		}

		memories, err := memoryService.Extract(c.UserContext(), middleware.GetUserID(c), id, clientInfo(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(memories)
	}
}
