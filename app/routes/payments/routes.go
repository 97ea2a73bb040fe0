package payments

import (
	"github.com/TeachingLabHQ/tl-form-hub/app/config"
	"github.com/TeachingLabHQ/tl-form-hub/app/routes/auth"
	"github.com/gofiber/fiber/v2"
)

func SetupPaymentsRoutes(app *fiber.App, cfg *config.Config) {
	api := app.Group("/api/vendor-payments")
	api.Use(auth.AuthMiddleware(cfg))

	api.Get("/", func(c *fiber.Ctx) error {
		return GetMySubmissionsAPI(c, cfg)
	})
	api.Post("/", func(c *fiber.Ctx) error {
		return CreateSubmissionAPI(c, cfg)
	})
	api.Get("/:id", func(c *fiber.Ctx) error {
		return GetSubmissionAPI(c, cfg)
	})
	api.Delete("/:id", func(c *fiber.Ctx) error {
		return DeleteSubmissionAPI(c, cfg)
	})
}
