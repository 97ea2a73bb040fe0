package payments

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/TeachingLabHQ/tl-form-hub/app/config"
	"github.com/TeachingLabHQ/tl-form-hub/app/database"
	"github.com/TeachingLabHQ/tl-form-hub/app/models"
	"github.com/gofiber/fiber/v2"
)

type entryRequest struct {
	TaskName    string  `json:"task_name"`
	ProjectName string  `json:"project_name"`
	WorkHours   float64 `json:"work_hours"`
	Rate        float64 `json:"rate"`
	EntryPay    float64 `json:"entry_pay"`
}

type createSubmissionRequest struct {
	TotalPay       float64        `json:"total_pay"`
	SubmissionDate string         `json:"submission_date"`
	Entries        []entryRequest `json:"entries"`
}

// CreateSubmissionAPI records a vendor payment submission with its entries.
// Requester identity comes from the session, never from the body.
func CreateSubmissionAPI(c *fiber.Ctx, cfg *config.Config) error {
	var req createSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if len(req.Entries) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "At least one entry is required"})
	}

	submissionDate, err := time.Parse("2006-01-02", req.SubmissionDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid submission_date, expected YYYY-MM-DD"})
	}

	submission := &models.VendorPaymentSubmission{
		CFEmail:        c.Locals("user_email").(string),
		CFName:         c.Locals("user_name").(string),
		CFTier:         c.Locals("user_tier").(string),
		TotalPay:       req.TotalPay,
		SubmissionDate: submissionDate,
	}

	for _, e := range req.Entries {
		entryPay := e.EntryPay
		if entryPay == 0 {
			entryPay = e.WorkHours * e.Rate
		}
		submission.Entries = append(submission.Entries, &models.VendorPaymentEntry{
			TaskName:    e.TaskName,
			ProjectName: e.ProjectName,
			WorkHours:   e.WorkHours,
			Rate:        e.Rate,
			EntryPay:    entryPay,
		})
	}

	if err := database.CreateSubmission(cfg.DB, submission); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to create submission",
			"details": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(submission)
}

func GetMySubmissionsAPI(c *fiber.Ctx, cfg *config.Config) error {
	email := c.Locals("user_email").(string)

	submissions, err := database.GetSubmissionsByEmail(cfg.DB, email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to load submissions",
			"details": err.Error(),
		})
	}
	return c.JSON(submissions)
}

func GetSubmissionAPI(c *fiber.Ctx, cfg *config.Config) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid submission id"})
	}

	submission, err := database.GetSubmissionByID(cfg.DB, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load submission"})
	}

	if submission.CFEmail != c.Locals("user_email").(string) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}

	return c.JSON(submission)
}

func DeleteSubmissionAPI(c *fiber.Ctx, cfg *config.Config) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid submission id"})
	}

	submission, err := database.GetSubmissionByID(cfg.DB, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load submission"})
	}

	if submission.CFEmail != c.Locals("user_email").(string) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}

	if err := database.DeleteSubmission(cfg.DB, id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete submission"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
