package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/afterus/afterus-backend/internal/api"
	"github.com/afterus/afterus-backend/internal/config"
	"github.com/afterus/afterus-backend/internal/database"
	"github.com/afterus/afterus-backend/internal/logging"
	"github.com/afterus/afterus-backend/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.New(config.LogConfig{}).WithError(err).Fatal("Failed to load configuration")
	}

	log := logging.New(cfg.Log)
	if cfg.Auth.UsesDevSecret() {
		log.Warn("Using the development JWT secret; set AFTERUS_JWT_SECRET in production")
	}

	// Connect to database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	svc, err := services.NewServices(cfg, services.NewPostgresRepositories(db.DB), db, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize services")
	}
	svc.Maintenance.Start()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "After Us Backend",
		ErrorHandler: api.ErrorHandler(log),
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.Origins(), ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	api.SetupRoutes(app, svc, log)

	srvLog := logging.Component(log, "server")

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		srvLog.Info("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			srvLog.WithError(err).Warn("HTTP shutdown incomplete")
		}
		svc.Maintenance.Stop(ctx)
	}()

	srvLog.WithFields(logrus.Fields{
		"addr":     cfg.Server.Addr(),
		"provider": svc.Companion.ProviderName(),
	}).Info("Server starting")
	if err := app.Listen(cfg.Server.Addr()); err != nil {
		srvLog.WithError(err).Fatal("Server stopped")
	}
}
