package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contacts-api/internal/contacts/config"
	"contacts-api/internal/di"
	"contacts-api/internal/shared/logger"
	"contacts-api/internal/shared/middleware"
	"contacts-api/internal/shared/ratelimit"
	"contacts-api/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

const (
	startupTimeout  = 30 * time.Second
	healthTimeout   = 5 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	fmt.Println("🚀 Contacts API - Starting Application...")

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewLogger()
	appLogger.Info("Application configuration loaded successfully")

	accessLogger, err := logger.NewAccessLogger()
	if err != nil {
		log.Fatalf("Failed to create access logger: %v", err)
	}
	defer func() { _ = accessLogger.Sync() }()

	container := di.NewContainer(cfg, appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	err = container.InitializeContacts(ctx)
	cancel()
	if err != nil {
		appLogger.Errorf("Failed to initialize contacts module: %v", err)
		return
	}
	appLogger.Info("Contacts module initialized successfully")

	app := fiber.New(fiber.Config{
		AppName:      "Contacts API v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: newErrorHandler(appLogger),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(accessLogger))

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	if cfg.RateLimit.Enabled {
		store := ratelimit.NewStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		store.StartJanitor(janitorCtx)
		app.Use(ratelimit.New(ratelimit.Options{
			Store:              store,
			TrustXForwardedFor: cfg.RateLimit.TrustXForwardedFor,
			AddHeaders:         true,
		}))
		appLogger.Infof("Rate limiting enabled: %.2f rps, burst %d, trust X-Forwarded-For %t",
			cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TrustXForwardedFor)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.Errorf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "UNHEALTHY",
				"error":   err.Error(),
				"message": "One or more services are unhealthy",
			})
		}

		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"message":   "Contacts API is running",
			"timestamp": time.Now().UTC(),
		})
	})

	container.GetContactsModule().RegisterRoutes(app)
	appLogger.Info("Contacts routes registered")

	serverAddr := cfg.Server.Addr()
	appLogger.Infof("🌟 Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Errorf("Server failed: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)
		fmt.Println("🛑 Shutting down server gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}

	fmt.Println("✅ Application stopped gracefully.")
}

// newErrorHandler renders errors that escape handlers as {error}. Fiber's own
// errors (unknown route, upgrade required) keep their status and message.
func newErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		log.WithFields(map[string]interface{}{
			"request_id": utils.GetRequestIDOrDefault(c.UserContext(), "unknown"),
			"path":       c.Path(),
		}).Errorf("HTTP Error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		})
	}
}
