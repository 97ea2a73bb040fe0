package services

import (
	"database/sql"
	"time"

	"github.com/TeachingLabHQ/tl-form-hub/app/database"
	"github.com/TeachingLabHQ/tl-form-hub/app/models"
)

// dbSubmissionStore and dbEmailLogStore adapt the database query layer to
// the job's collaborator interfaces.

type dbSubmissionStore struct {
	db *sql.DB
}

func (s *dbSubmissionStore) ListSubmissionsInRange(start, end time.Time) ([]*models.VendorPaymentSubmission, error) {
	return database.ListSubmissionsInRange(s.db, start, end)
}

type dbEmailLogStore struct {
	db *sql.DB
}

func (s *dbEmailLogStore) InsertEmailLog(projectName, email string, month time.Time, status models.EmailLogStatus) (int64, error) {
	return database.InsertEmailLog(s.db, projectName, email, month, status)
}

func (s *dbEmailLogStore) InsertFailedEmailLog(projectName, email string, month time.Time, errorMessage string) error {
	return database.InsertFailedEmailLog(s.db, projectName, email, month, errorMessage)
}

func (s *dbEmailLogStore) MarkEmailLogSent(id int64, sentAt time.Time) error {
	return database.MarkEmailLogSent(s.db, id, sentAt)
}

func (s *dbEmailLogStore) MarkEmailLogFailed(id int64, errorMessage string) error {
	return database.MarkEmailLogFailed(s.db, id, errorMessage)
}

func (s *dbEmailLogStore) ListSentEmailLogs(month time.Time) ([]*models.EmailLog, error) {
	return database.ListSentEmailLogs(s.db, month)
}
