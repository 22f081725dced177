package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"github.com/afterus/afterus-backend/internal/api/middleware"
	"github.com/afterus/afterus-backend/internal/companion"
	"github.com/afterus/afterus-backend/internal/llm"
	"github.com/afterus/afterus-backend/internal/models"
)

// wsReplyTimeout bounds one websocket reply, provider call included
const wsReplyTimeout = 60 * time.Second

// CompanionChat answers one message
func CompanionChat(companionService *companion.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req companion.ChatRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequestJSON(c, "Invalid request body")
		}

		resp, err := companionService.Reply(c.UserContext(), middleware.GetUserID(c), req)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(resp)
	}
}

// StartHealingSession opens a guided session
func StartHealingSession(companionService *companion.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req companion.HealingSessionRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequestJSON(c, "Invalid request body")
		}

		session, err := companionService.StartHealingSession(c.UserContext(), middleware.GetUserID(c), req)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(session)
	}
}

// wsError is the frame sent when a request cannot be answered
type wsError struct {
	Error string `json:"error"`
}

// CompanionSocket answers one JSON ChatRequest per frame with one
// ChatResponse frame. The upgrade route must run the auth middleware first.
func CompanionSocket(companionService *companion.Service, limiter llm.RateLimiter, logger logrus.FieldLogger) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		defer conn.Close()

		userCtx, ok := conn.Locals("user_context").(*models.UserContext)
		if !ok {
			_ = conn.WriteJSON(wsError{Error: "Authentication required"})
			return
		}
		log := logger.WithFields(logrus.Fields{
			"component": "companion_ws",
			"user_id":   userCtx.UserID,
		})
		key := userCtx.UserID.String()

		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.WithError(err).Debug("Websocket closed")
				}
				return
			}

			var req companion.ChatRequest
			if err := json.Unmarshal(frame, &req); err != nil {
				if err := conn.WriteJSON(wsError{Error: "Invalid request"}); err != nil {
					return
				}
				continue
			}

			if !limiter.Allow(key) {
				if err := conn.WriteJSON(wsError{Error: "Slow down a little. Please wait before sending more messages."}); err != nil {
					return
				}
				continue
			}

			var out interface{}
			ctx, cancel := context.WithTimeout(context.Background(), wsReplyTimeout)
			resp, err := companionService.Reply(ctx, userCtx.UserID, req)
			cancel()
			switch {
			case err == nil:
				out = resp
			case statusFor(err) == fiber.StatusBadRequest:
				out = wsError{Error: err.Error()}
			default:
				log.WithError(err).Error("Companion reply failed")
				out = wsError{Error: "Internal server error"}
			}

			if err := conn.WriteJSON(out); err != nil {
				return
			}
		}
	}
}
