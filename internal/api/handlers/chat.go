package handlers

import (
	"bytes"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/afterus/afterus-backend/internal/api/middleware"
	"github.com/afterus/afterus-backend/internal/services"
)

// UploadChat stores a WhatsApp export sent as multipart field "file"
func UploadChat(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header, err := c.FormFile("file")
		if err != nil {
			return badRequestJSON(c, "A .txt file is required in field \"file\"")
		}

		f, err := header.Open()
		if err != nil {
			return err
		}
		defer f.Close()

		content, err := io.ReadAll(f)
		if err != nil {
			return err
		}

		session, err := chatService.Upload(c.UserContext(), middleware.GetUser(c), header.Filename, content, clientInfo(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(session)
	}
}

// ListChatSessions returns the caller's uploads
func ListChatSessions(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := queryInt(c, "limit", 10)
		if err != nil {
			return writeError(c, err)
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil {
			return writeError(c, err)
		}

		sessions, err := chatService.List(c.UserContext(), middleware.GetUserID(c), limit, offset)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(sessions)
	}
}

// GetChatSession returns a session with every message
func GetChatSession(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "id")
		if err != nil {
			return writeError(c, err)
		}

		detail, err := chatService.Detail(c.UserContext(), middleware.GetUserID(c), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(detail)
	}
}

// GetChatMessages pages through a session's messages
func GetChatMessages(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "id")
		if err != nil {
			return writeError(c, err)
		}
		limit, err := queryInt(c, "limit", 50)
		if err != nil {
			return writeError(c, err)
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil {
			return writeError(c, err)
		}

		messages, err := chatService.Messages(c.UserContext(), middleware.GetUserID(c), id, limit, offset)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(messages)
	}
}

// DeleteChatSession removes a session and its messages
func DeleteChatSession(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "id")
		if err != nil {
			return writeError(c, err)
		}

		if err := chatService.Delete(c.UserContext(), middleware.GetUserID(c), id, clientInfo(c)); err != nil {
			return writeError(c, err)
		}
		return c.JSON(statusResponse("Chat session deleted successfully"))
	}
}

// ExportChatSession downloads a session as JSON (default) or YAML
func ExportChatSession(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "id")
		if err != nil {
			return writeError(c, err)
		}

		format := strings.ToLower(strings.TrimSpace(c.Query("format")))
		if format == "" {
			format = services.FormatJSON
		}
		var buf bytes.Buffer
		if err := chatService.Export(c.UserContext(), middleware.GetUserID(c), id, format, &buf); err != nil {
			return writeError(c, err)
		}

		c.Attachment("chat-" + id.String() + "." + format)
		if format == services.FormatYAML {
			c.Set(fiber.HeaderContentType, "application/yaml")
		} else {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		}
		return c.Send(buf.Bytes())
	}
}

// GetInsights derives the relationship report for a session
func GetInsights(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "session_id")
		if err != nil {
			return writeError(c, err)
		}

		report, err := chatService.Insights(c.UserContext(), middleware.GetUserID(c), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(report)
	}
}
