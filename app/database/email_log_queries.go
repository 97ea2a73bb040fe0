package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/TeachingLabHQ/tl-form-hub/app/models"
)

// InsertEmailLog creates a new delivery log row and returns its id
func InsertEmailLog(db *sql.DB, projectName, email string, month time.Time, status models.EmailLogStatus) (int64, error) {
	var id int64
	query := `INSERT INTO vendor_payment_email_logs (project_name, cf_email, month, status)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	err := db.QueryRow(query, projectName, email, month, string(status)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert email log: %v", err)
	}
	return id, nil
}

// InsertFailedEmailLog records a failure when no pending row id is available
func InsertFailedEmailLog(db *sql.DB, projectName, email string, month time.Time, errorMessage string) error {
	query := `INSERT INTO vendor_payment_email_logs (project_name, cf_email, month, status, error_message)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := db.Exec(query, projectName, email, month, string(models.EmailLogFailed), errorMessage)
	if err != nil {
		return fmt.Errorf("failed to insert failed email log: %v", err)
	}
	return nil
}

// MarkEmailLogSent transitions a log row to 'sent' with the dispatch timestamp
func MarkEmailLogSent(db *sql.DB, id int64, sentAt time.Time) error {
	query := `UPDATE vendor_payment_email_logs SET status = $1, sent_at = $2 WHERE id = $3`
	_, err := db.Exec(query, string(models.EmailLogSent), sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to update email log %d to sent: %v", id, err)
	}
	return nil
}

// MarkEmailLogFailed transitions a log row to 'failed' with the captured error
func MarkEmailLogFailed(db *sql.DB, id int64, errorMessage string) error {
	query := `UPDATE vendor_payment_email_logs SET status = $1, error_message = $2 WHERE id = $3`
	_, err := db.Exec(query, string(models.EmailLogFailed), errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update email log %d to failed: %v", id, err)
	}
	return nil
}

// ListEmailLogs retrieves all log rows for a month with the given status
func ListEmailLogs(db *sql.DB, month time.Time, status models.EmailLogStatus) ([]*models.EmailLog, error) {
	query := `SELECT id, project_name, cf_email, month, status, sent_at, error_message, created_at
	          FROM vendor_payment_email_logs
	          WHERE month = $1 AND status = $2
	          ORDER BY id`

	rows, err := db.Query(query, month, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.EmailLog
	for rows.Next() {
		l := &models.EmailLog{}
		var rowStatus string
		var sentAt sql.NullTime
		var errorMessage sql.NullString
		err := rows.Scan(&l.ID, &l.ProjectName, &l.CFEmail, &l.Month, &rowStatus, &sentAt, &errorMessage, &l.CreatedAt)
		if err != nil {
			return nil, err
		}
		l.Status = models.EmailLogStatus(rowStatus)
		if sentAt.Valid {
			t := sentAt.Time
			l.SentAt = &t
		}
		if errorMessage.Valid {
			msg := errorMessage.String
			l.ErrorMessage = &msg
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ListSentEmailLogs retrieves the 'sent' rows used to filter out
// already-delivered (project, person) combinations for the month
func ListSentEmailLogs(db *sql.DB, month time.Time) ([]*models.EmailLog, error) {
	return ListEmailLogs(db, month, models.EmailLogSent)
}
