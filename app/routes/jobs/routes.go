package jobs

import (
	"github.com/TeachingLabHQ/tl-form-hub/app/config"
	"github.com/TeachingLabHQ/tl-form-hub/app/routes/auth"
	"github.com/TeachingLabHQ/tl-form-hub/app/services"
	"github.com/gofiber/fiber/v2"
)

func SetupJobsRoutes(app *fiber.App, cfg *config.Config) {
	app.All(services.SummaryJobPath,
		methodGuard,
		auth.ServiceAuthMiddleware(cfg),
		func(c *fiber.Ctx) error {
			return SendVendorPaymentSummariesAPI(c, cfg)
		})
}

// methodGuard rejects everything but POST before auth runs
func methodGuard(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Method not allowed"})
	}
	return c.Next()
}
