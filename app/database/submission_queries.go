package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/TeachingLabHQ/tl-form-hub/app/models"
	"github.com/lib/pq"
)

// CreateSubmission inserts a submission and all of its entries in a transaction
func CreateSubmission(db *sql.DB, submission *models.VendorPaymentSubmission) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	querySubmission := `INSERT INTO vendor_payment_submissions (cf_email, cf_name, cf_tier, total_pay, submission_date)
	                    VALUES ($1, $2, $3, $4, $5)
	                    RETURNING id, created_at`
	err = tx.QueryRow(querySubmission,
		submission.CFEmail,
		submission.CFName,
		submission.CFTier,
		submission.TotalPay,
		submission.SubmissionDate,
	).Scan(&submission.ID, &submission.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %v", err)
	}

	queryEntry := `INSERT INTO vendor_payment_entries (submission_id, task_name, project_name, work_hours, rate, entry_pay)
	               VALUES ($1, $2, $3, $4, $5, $6)
	               RETURNING id`
	for _, entry := range submission.Entries {
		entry.SubmissionID = submission.ID
		err = tx.QueryRow(queryEntry,
			entry.SubmissionID,
			entry.TaskName,
			entry.ProjectName,
			entry.WorkHours,
			entry.Rate,
			entry.EntryPay,
		).Scan(&entry.ID)
		if err != nil {
			return fmt.Errorf("failed to insert entry: %v", err)
		}
	}

	return tx.Commit()
}

// GetSubmissionByID retrieves a single submission with its entries
func GetSubmissionByID(db *sql.DB, id int64) (*models.VendorPaymentSubmission, error) {
	s := &models.VendorPaymentSubmission{}
	query := `SELECT id, cf_email, cf_name, cf_tier, total_pay, submission_date, created_at
	          FROM vendor_payment_submissions WHERE id = $1`

	err := db.QueryRow(query, id).Scan(
		&s.ID, &s.CFEmail, &s.CFName, &s.CFTier,
		&s.TotalPay, &s.SubmissionDate, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := loadEntries(db, []*models.VendorPaymentSubmission{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// GetSubmissionsByEmail retrieves all submissions for one requester, newest first
func GetSubmissionsByEmail(db *sql.DB, email string) ([]*models.VendorPaymentSubmission, error) {
	query := `SELECT id, cf_email, cf_name, cf_tier, total_pay, submission_date, created_at
	          FROM vendor_payment_submissions
	          WHERE cf_email = $1
	          ORDER BY created_at DESC`

	return querySubmissions(db, query, email)
}

// ListSubmissionsInRange retrieves all submissions whose submission_date
// falls in [start, end), with entries attached, ordered by insertion.
func ListSubmissionsInRange(db *sql.DB, start, end time.Time) ([]*models.VendorPaymentSubmission, error) {
	query := `SELECT id, cf_email, cf_name, cf_tier, total_pay, submission_date, created_at
	          FROM vendor_payment_submissions
	          WHERE submission_date >= $1 AND submission_date < $2
	          ORDER BY id`

	return querySubmissions(db, query, start, end)
}

// DeleteSubmission removes a submission; entries cascade
func DeleteSubmission(db *sql.DB, id int64) error {
	result, err := db.Exec(`DELETE FROM vendor_payment_submissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func querySubmissions(db *sql.DB, query string, args ...interface{}) ([]*models.VendorPaymentSubmission, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []*models.VendorPaymentSubmission
	for rows.Next() {
		s := &models.VendorPaymentSubmission{}
		err := rows.Scan(
			&s.ID, &s.CFEmail, &s.CFName, &s.CFTier,
			&s.TotalPay, &s.SubmissionDate, &s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadEntries(db, submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

func loadEntries(db *sql.DB, submissions []*models.VendorPaymentSubmission) error {
	if len(submissions) == 0 {
		return nil
	}

	byID := make(map[int64]*models.VendorPaymentSubmission, len(submissions))
	ids := make([]int64, 0, len(submissions))
	for _, s := range submissions {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	query := `SELECT id, submission_id, task_name, project_name, work_hours, rate, entry_pay
	          FROM vendor_payment_entries
	          WHERE submission_id = ANY($1)
	          ORDER BY id`

	rows, err := db.Query(query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		e := &models.VendorPaymentEntry{}
		err := rows.Scan(&e.ID, &e.SubmissionID, &e.TaskName, &e.ProjectName, &e.WorkHours, &e.Rate, &e.EntryPay)
		if err != nil {
			return err
		}
		if s, ok := byID[e.SubmissionID]; ok {
			s.Entries = append(s.Entries, e)
		}
	}
	return rows.Err()
}
