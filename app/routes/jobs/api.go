package jobs

import (
	"fmt"
	"log"

	"github.com/TeachingLabHQ/tl-form-hub/app/config"
	"github.com/TeachingLabHQ/tl-form-hub/app/services"
	"github.com/gofiber/fiber/v2"
)

// SendVendorPaymentSummariesAPI runs one bounded batch of the monthly
// summary job. The self-trigger and the monthly schedule both land here.
func SendVendorPaymentSummariesAPI(c *fiber.Ctx, cfg *config.Config) error {
	job := services.NewSummaryJob(cfg)
	return RunSummaryJob(c, job)
}

// RunSummaryJob executes the job and maps its outcome onto the response
// contract: 200 with batch counts, 200 with a bare message when the month
// had no submissions, 500 with a structured error body otherwise.
func RunSummaryJob(c *fiber.Ctx, job *services.SummaryJob) error {
	result, err := job.Run()
	if err != nil {
		log.Printf("Summary job failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
			"name":  fmt.Sprintf("%T", err),
		})
	}

	if result.NoSubmissions {
		return c.JSON(fiber.Map{"message": result.Message})
	}

	log.Println(result.Message)
	return c.JSON(result)
}
