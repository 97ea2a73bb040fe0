package main

import (
	"fmt"
	"log"

	"github.com/TeachingLabHQ/tl-form-hub/app/config"
	"github.com/TeachingLabHQ/tl-form-hub/app/database"
	"github.com/TeachingLabHQ/tl-form-hub/app/routes/auth"
	"github.com/TeachingLabHQ/tl-form-hub/app/routes/jobs"
	"github.com/TeachingLabHQ/tl-form-hub/app/routes/payments"
	"github.com/TeachingLabHQ/tl-form-hub/app/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
)

// errorHandler returns a structured JSON body for any error that escapes a
// handler, so a failed job invocation never crashes the process silently
func errorHandler(c *fiber.Ctx, err error) error {
	// Status code defaults to 500
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a *fiber.Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"name":  fmt.Sprintf("%T", err),
		"code":  code,
	})
}

func main() {
	// Load .env if present; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration and database
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	defer cfg.DB.Close()

	// Run database migrations
	if err := database.RunMigrations(cfg.DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Start background scheduler
	services.StartScheduler(cfg)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Setup auth routes
	auth.SetupAuthRoutes(app, cfg)

	// Setup vendor payment form routes
	payments.SetupPaymentsRoutes(app, cfg)

	// Setup summary job routes
	jobs.SetupJobsRoutes(app, cfg)

	// Catch-all route for 404 errors (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	})

	// Start server
	log.Printf("Server starting on %s", cfg.Addr)
	log.Fatal(app.Listen(cfg.Addr))
}
