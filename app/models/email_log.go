package models

import "time"

// EmailLogStatus defines the possible status values for a summary email log row.
type EmailLogStatus string

const (
	EmailLogPending EmailLogStatus = "pending"
	EmailLogSent    EmailLogStatus = "sent"
	EmailLogFailed  EmailLogStatus = "failed"
)

// EmailLog is the durable delivery record for one (project, person, month)
// summary email. A row with status "sent" is proof of prior delivery and
// permanently excludes that combination from later runs; "failed" rows do
// not block retries.
type EmailLog struct {
	ID           int64          `json:"id"`
	ProjectName  string         `json:"project_name"`
	CFEmail      string         `json:"cf_email"`
	Month        time.Time      `json:"month"`
	Status       EmailLogStatus `json:"status"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
	ErrorMessage *string        `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
