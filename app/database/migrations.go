package database

import (
	"database/sql"
	"log"
)

// RunMigrations checks and applies necessary schema updates
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	migrations := []func(*sql.DB) error{
		createUsersTable,
		createSubmissionsTable,
		createEntriesTable,
		createEmailLogsTable,
	}

	for _, migrate := range migrations {
		if err := migrate(db); err != nil {
			return err
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createUsersTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			tier VARCHAR(50) NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.Exec(query)
	if err != nil {
		log.Printf("Failed to run migration for users table: %v", err)
		return err
	}
	return nil
}

func createSubmissionsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS vendor_payment_submissions (
			id BIGSERIAL PRIMARY KEY,
			cf_email VARCHAR(255) NOT NULL,
			cf_name VARCHAR(255) NOT NULL,
			cf_tier VARCHAR(100) NOT NULL DEFAULT '',
			total_pay DOUBLE PRECISION NOT NULL DEFAULT 0,
			submission_date TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_submissions_date ON vendor_payment_submissions (submission_date);
		CREATE INDEX IF NOT EXISTS idx_submissions_email ON vendor_payment_submissions (cf_email);
	`
	_, err := db.Exec(query)
	if err != nil {
		log.Printf("Failed to run migration for vendor_payment_submissions table: %v", err)
		return err
	}
	return nil
}

func createEntriesTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS vendor_payment_entries (
			id BIGSERIAL PRIMARY KEY,
			submission_id BIGINT NOT NULL REFERENCES vendor_payment_submissions(id) ON DELETE CASCADE,
			task_name VARCHAR(255) NOT NULL,
			project_name VARCHAR(255) NOT NULL DEFAULT '',
			work_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			entry_pay DOUBLE PRECISION NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_entries_submission ON vendor_payment_entries (submission_id);
	`
	_, err := db.Exec(query)
	if err != nil {
		log.Printf("Failed to run migration for vendor_payment_entries table: %v", err)
		return err
	}
	return nil
}

// Note: there is deliberately no uniqueness constraint on
// (project_name, cf_email, month). Overlapping job invocations can race on
// the same key and double-send; the pending row narrows that window but
// does not close it.
func createEmailLogsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS vendor_payment_email_logs (
			id BIGSERIAL PRIMARY KEY,
			project_name VARCHAR(255) NOT NULL,
			cf_email VARCHAR(255) NOT NULL,
			month TIMESTAMPTZ NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			sent_at TIMESTAMPTZ,
			error_message TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_email_logs_month_status ON vendor_payment_email_logs (month, status);
	`
	_, err := db.Exec(query)
	if err != nil {
		log.Printf("Failed to run migration for vendor_payment_email_logs table: %v", err)
		return err
	}
	return nil
}
