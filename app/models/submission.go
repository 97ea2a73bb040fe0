package models

import "time"

// VendorPaymentSubmission represents one vendor payment form post.
// Submissions are immutable after creation; the submitter may delete them.
type VendorPaymentSubmission struct {
	ID             int64                 `json:"id"`
	CFEmail        string                `json:"cf_email"`
	CFName         string                `json:"cf_name"`
	CFTier         string                `json:"cf_tier"`
	TotalPay       float64               `json:"total_pay"`
	SubmissionDate time.Time             `json:"submission_date"`
	CreatedAt      time.Time             `json:"created_at"`
	Entries        []*VendorPaymentEntry `json:"entries"`
}

// VendorPaymentEntry is one task/hours/rate line item within a submission.
type VendorPaymentEntry struct {
	ID           int64   `json:"id"`
	SubmissionID int64   `json:"submission_id"`
	TaskName     string  `json:"task_name"`
	ProjectName  string  `json:"project_name"`
	WorkHours    float64 `json:"work_hours"`
	Rate         float64 `json:"rate"`
	EntryPay     float64 `json:"entry_pay"`
}
