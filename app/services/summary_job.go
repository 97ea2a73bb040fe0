package services

import (
	"fmt"
	"log"
	"time"

	"github.com/TeachingLabHQ/tl-form-hub/app/config"
	"github.com/TeachingLabHQ/tl-form-hub/app/models"
)

// SubmissionStore provides the month's vendor payment submissions.
type SubmissionStore interface {
	ListSubmissionsInRange(start, end time.Time) ([]*models.VendorPaymentSubmission, error)
}

// EmailLogStore is the durable delivery ledger for summary emails.
type EmailLogStore interface {
	InsertEmailLog(projectName, email string, month time.Time, status models.EmailLogStatus) (int64, error)
	InsertFailedEmailLog(projectName, email string, month time.Time, errorMessage string) error
	MarkEmailLogSent(id int64, sentAt time.Time) error
	MarkEmailLogFailed(id int64, errorMessage string) error
	ListSentEmailLogs(month time.Time) ([]*models.EmailLog, error)
}

// ReportGenerator renders a person's project summary into a PDF.
type ReportGenerator interface {
	RenderPDF(projectName string, summary *models.PersonProjectSummary, logID int64) ([]byte, error)
}

// Notifier sends the summary email with the PDF attached.
type Notifier interface {
	SendSummaryEmail(projectName string, summary *models.PersonProjectSummary, pdf []byte) error
}

// ContinuationTrigger schedules another invocation of the job for the
// batch that remains. Dispatch failures must not fail the current run.
type ContinuationTrigger interface {
	TriggerNextBatch() error
}

// BatchResult is the JSON body returned by a successful job invocation.
type BatchResult struct {
	Message            string `json:"message"`
	BatchComplete      bool   `json:"batchComplete"`
	Processed          int    `json:"processedInThisBatch"`
	Failed             int    `json:"failedInThisBatch"`
	TotalAttempted     int    `json:"totalAttemptedInThisBatch"`
	Remaining          int    `json:"remainingAfterBatch"`
	AllComplete        bool   `json:"allComplete"`
	NextBatchTriggered bool   `json:"nextBatchTriggered"`

	// NoSubmissions marks the short-circuit path: nothing was found for the
	// month, no batch fields belong in the response.
	NoSubmissions bool `json:"-"`
}

// SummaryJob aggregates the previous month's vendor payment submissions
// into per-project, per-person summaries and emails each person a PDF
// report, at most BatchSize per invocation with EmailDelay between sends.
// Delivery state lives in the email log, which makes the job idempotent
// and resumable: combinations with a "sent" row are never reprocessed.
type SummaryJob struct {
	Store    SubmissionStore
	Logs     EmailLogStore
	Renderer ReportGenerator
	Notifier Notifier
	Trigger  ContinuationTrigger

	BatchSize  int
	EmailDelay time.Duration

	// Now and Sleep are injectable for tests; nil means the real clock.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// NewSummaryJob wires the job against the database, the PDF renderer, the
// SMTP notifier and the HTTP self-trigger.
func NewSummaryJob(cfg *config.Config) *SummaryJob {
	return &SummaryJob{
		Store:      &dbSubmissionStore{db: cfg.DB},
		Logs:       &dbEmailLogStore{db: cfg.DB},
		Renderer:   &PDFReportGenerator{},
		Notifier:   NewSMTPNotifier(cfg.SMTP),
		Trigger:    NewHTTPTrigger(cfg.Job),
		BatchSize:  cfg.Job.BatchSize,
		EmailDelay: cfg.Job.EmailDelay,
	}
}

type pendingCombo struct {
	projectName string
	summary     *models.PersonProjectSummary
}

// PreviousMonthWindow returns [first of previous month, first of current
// month) for the given instant. The lower bound doubles as the month key
// stamped on email log rows.
func PreviousMonthWindow(now time.Time) (start, end time.Time) {
	end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start = end.AddDate(0, -1, 0)
	return start, end
}

func logKey(projectName, email string) string {
	return projectName + "|" + email
}

// Run executes one bounded batch. A returned error means the whole
// invocation failed (e.g. the submissions could not be loaded); per-item
// failures are counted in the result instead.
func (j *SummaryJob) Run() (*BatchResult, error) {
	month, monthEnd := PreviousMonthWindow(j.clock())
	log.Printf("Processing submissions for previous month: %s to %s",
		month.Format(time.RFC3339), monthEnd.Format(time.RFC3339))

	submissions, err := j.Store.ListSubmissionsInRange(month, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %v", err)
	}

	log.Printf("Found %d submissions", len(submissions))
	if len(submissions) == 0 {
		return &BatchResult{
			Message: fmt.Sprintf("No submissions found for the previous month (%s to %s)",
				month.Format("2006-01-02"), monthEnd.Format("2006-01-02")),
			NoSubmissions: true,
			AllComplete:   true,
		}, nil
	}

	groups := GroupSubmissionsByProject(submissions)
	log.Printf("Grouped entries into %d projects", len(groups))

	// Sent rows are the idempotency boundary. If the lookup fails we
	// proceed as if nothing was sent, accepting the duplicate-send risk.
	sentSet := make(map[string]bool)
	sentLogs, err := j.Logs.ListSentEmailLogs(month)
	if err != nil {
		log.Printf("Error fetching sent email logs: %v (continuing as if none were sent)", err)
	} else {
		for _, l := range sentLogs {
			sentSet[logKey(l.ProjectName, l.CFEmail)] = true
		}
		log.Printf("Found %d already-sent email logs", len(sentLogs))
	}

	var pending []pendingCombo
	for _, group := range groups {
		for _, summary := range group.PeopleSummaries {
			if sentSet[logKey(group.ProjectName, summary.CFEmail)] {
				log.Printf("-- Skipping already-sent: %s / %s", summary.CFEmail, group.ProjectName)
				continue
			}
			pending = append(pending, pendingCombo{projectName: group.ProjectName, summary: summary})
		}
	}
	log.Printf("Total pending emails: %d", len(pending))

	batchSize := j.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}
	batch := pending
	if len(batch) > batchSize {
		batch = batch[:batchSize]
	}
	remaining := len(pending) - len(batch)
	log.Printf("Processing batch of %d emails (%d will remain after this batch)", len(batch), remaining)

	processed := 0
	failed := 0
	for _, combo := range batch {
		if j.processItem(combo, month) {
			processed++
		} else {
			failed++
		}
		// Unconditional delay between emails to respect the send-rate limit.
		j.pause(j.emailDelay())
	}

	nextTriggered := remaining > 0
	if remaining > 0 {
		log.Printf("Triggering next batch: %d emails remaining", remaining)
		if err := j.Trigger.TriggerNextBatch(); err != nil {
			// The monthly schedule will eventually pick up what's left.
			log.Printf("Failed to trigger next batch: %v", err)
		}
	} else {
		log.Println("All emails processed, batch processing complete")
	}

	return &BatchResult{
		Message: fmt.Sprintf("Batch processing completed. Processed: %d, Failed: %d, Remaining: %d.",
			processed, failed, remaining),
		BatchComplete:      true,
		Processed:          processed,
		Failed:             failed,
		TotalAttempted:     len(batch),
		Remaining:          remaining,
		AllComplete:        remaining == 0,
		NextBatchTriggered: nextTriggered,
	}, nil
}

// processItem handles one (project, person) pair and reports whether it
// counts as processed. The email log row moves pending -> sent on success
// and pending -> failed when rendering or sending fails.
func (j *SummaryJob) processItem(combo pendingCombo, month time.Time) bool {
	email := combo.summary.CFEmail
	log.Printf("-- Processing person: %s for project: %s", email, combo.projectName)

	logID, err := j.Logs.InsertEmailLog(combo.projectName, email, month, models.EmailLogPending)
	if err != nil {
		// Nothing downstream ran, so there is no state to roll back.
		log.Printf("-- Error creating pending log for %s/%s: %v", email, combo.projectName, err)
		return false
	}

	pdf, err := j.Renderer.RenderPDF(combo.projectName, combo.summary, logID)
	if err == nil {
		err = j.Notifier.SendSummaryEmail(combo.projectName, combo.summary, pdf)
	}

	if err != nil {
		log.Printf("-- Error processing email for %s on project %s: %v", email, combo.projectName, err)
		if logID != 0 {
			if updateErr := j.Logs.MarkEmailLogFailed(logID, err.Error()); updateErr != nil {
				log.Printf("-- CRITICAL: failed to mark log %d as failed for %s/%s: %v", logID, email, combo.projectName, updateErr)
			}
		} else {
			// The insert reported success without an id; record the failure
			// in a fresh row so it isn't lost.
			msg := fmt.Sprintf("processing failed before log id obtained: %v", err)
			if insertErr := j.Logs.InsertFailedEmailLog(combo.projectName, email, month, msg); insertErr != nil {
				log.Printf("-- CRITICAL: failed to insert substitute failed log for %s/%s: %v", email, combo.projectName, insertErr)
			}
		}
		return false
	}

	// The email went out. A failed status update leaves a stale pending row
	// that may cause a resend next run, which is preferred over losing the
	// failure record; the item still counts as processed.
	if err := j.Logs.MarkEmailLogSent(logID, j.clock()); err != nil {
		log.Printf("-- Error updating log %d to sent for %s/%s (email was sent): %v", logID, email, combo.projectName, err)
	}

	log.Printf("-- Email sent to %s for project %s", email, combo.projectName)
	return true
}

func (j *SummaryJob) clock() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *SummaryJob) pause(d time.Duration) {
	if j.Sleep != nil {
		j.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (j *SummaryJob) emailDelay() time.Duration {
	if j.EmailDelay > 0 {
		return j.EmailDelay
	}
	return config.DefaultEmailDelay
}
