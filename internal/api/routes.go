package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"github.com/afterus/afterus-backend/internal/api/handlers"
	"github.com/afterus/afterus-backend/internal/api/middleware"
	"github.com/afterus/afterus-backend/internal/llm"
	"github.com/afterus/afterus-backend/internal/services"
)

// Websocket companion frames allowed per user per minute
const companionFramesPerMinute = 30

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, svc *services.Services, logger logrus.FieldLogger) {
	api := app.Group("/api/v1")

	api.Get("/health", handlers.Health(svc.Health))

	// ========================================
	// Public auth routes
	// ========================================

	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.AuthRateLimit(), handlers.Register(svc.Auth, svc.Audit))
	authGroup.Post("/login", middleware.AuthRateLimit(), handlers.Login(svc.Auth, svc.Audit))
	authGroup.Post("/refresh", middleware.AuthRateLimit(), handlers.RefreshToken(svc.Auth))

	// ========================================
	// Protected routes
	// ========================================

	protected := api.Group("", middleware.AuthRequired(svc.Auth, logger), middleware.DefaultRateLimit())

	protected.Post("/auth/logout", handlers.Logout(svc.Auth, svc.Audit))
	protected.Get("/auth/me", handlers.GetCurrentUser())
	protected.Put("/auth/profile", handlers.UpdateProfile(svc.Auth, svc.Audit))
	protected.Put("/auth/password", handlers.ChangePassword(svc.Auth, svc.Audit))

	// Chat exports
	protected.Post("/chat/upload", handlers.UploadChat(svc.Chat))
	protected.Get("/chat/sessions", handlers.ListChatSessions(svc.Chat))
	protected.Get("/chat/sessions/:id", handlers.GetChatSession(svc.Chat))
	protected.Get("/chat/sessions/:id/messages", handlers.GetChatMessages(svc.Chat))
	protected.Get("/chat/sessions/:id/export", handlers.ExportChatSession(svc.Chat))
	protected.Delete("/chat/sessions/:id", handlers.DeleteChatSession(svc.Chat))

	// Companion and insights
	protected.Get("/ai/insights/:session_id", handlers.GetInsights(svc.Chat))
	protected.Post("/ai/chat", middleware.CompanionRateLimit(), handlers.CompanionChat(svc.Companion))
	protected.Post("/ai/healing-session", handlers.StartHealingSession(svc.Companion))

	// Memories
	protected.Get("/memories", handlers.ListMemories(svc.Memory))
	protected.Post("/memories", handlers.CreateMemory(svc.Memory))
	protected.Post("/memories/extract/:session_id", handlers.ExtractMemories(svc.Memory))
	protected.Put("/memories/:id", handlers.UpdateMemory(svc.Memory))
	protected.Delete("/memories/:id", handlers.DeleteMemory(svc.Memory))

	// Healing
	protected.Get("/healing/no-contact-days", handlers.ListNoContactDays(svc.Healing))
	protected.Post("/healing/no-contact-days", handlers.LogNoContactDay(svc.Healing))
	protected.Get("/healing/streak", handlers.GetStreak(svc.Healing))
	protected.Get("/healing/closure-activities", handlers.ListClosureActivities(svc.Healing))
	protected.Put("/healing/closure-activities/:id", handlers.UpdateClosureActivity(svc.Healing))
	protected.Get("/healing/ai-personality", handlers.GetAIPersonality(svc.Healing))
	protected.Put("/healing/ai-personality", handlers.UpdateAIPersonality(svc.Healing))

	// Journal
	protected.Get("/journal", handlers.ListJournal(svc.Journal))
	protected.Post("/journal", handlers.CreateJournal(svc.Journal))
	protected.Put("/journal/:id", handlers.UpdateJournal(svc.Journal))
	protected.Delete("/journal/:id", handlers.DeleteJournal(svc.Journal))

	// Dashboard
	protected.Get("/dashboard/stats", handlers.DashboardStats(svc.Dashboard))
	protected.Get("/dashboard/recent-activity", handlers.RecentActivity(svc.Dashboard))

	// ========================================
	// WebSocket routes (with auth)
	// ========================================

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	frames := llm.NewSlidingWindowLimiter(companionFramesPerMinute, time.Minute)
	app.Get("/ws/companion",
		middleware.AuthMiddleware(middleware.AuthConfig{Validator: svc.Auth, Logger: logger, AllowQueryToken: true}),
		websocket.New(handlers.CompanionSocket(svc.Companion, frames, logger)),
	)
}
