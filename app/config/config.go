package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// Config holds everything the application needs at runtime. It is built
// once in main and passed by reference; there is no package-level instance.
type Config struct {
	DB   *sql.DB
	SMTP SMTPConfig
	Job  JobConfig

	JWTSecret string
	Addr      string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// JobConfig controls the monthly summary job: batch size, the delay
// between emails (the provider allows 2 requests/second), and the
// credentials for the fire-and-forget self-trigger.
type JobConfig struct {
	BatchSize    int
	EmailDelay   time.Duration
	BaseURL      string
	ServiceToken string
}

const (
	DefaultBatchSize  = 15
	DefaultEmailDelay = 600 * time.Millisecond
)

// Load reads configuration from the environment and opens the database
// connection pool.
func Load() (*Config, error) {
	psqlInfo := os.Getenv("DATABASE_URL")
	if psqlInfo == "" {
		host := envOr("DB_HOST", "localhost")
		port := envIntOr("DB_PORT", 5432)
		user := envOr("DB_USER", "postgres")
		password := os.Getenv("DB_PASSWORD")
		dbname := envOr("DB_NAME", "tl_form_hub")

		psqlInfo = fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable connect_timeout=60", host, port, user, dbname)
		if password != "" {
			psqlInfo += " password=" + password
		}
		log.Printf("Connecting to database %s at %s:%d", dbname, host, port)
	}

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %v", err)
	}

	// Connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Println("Testing database connection...")
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("cannot establish database connection: %v", err)
	}
	log.Println("Database connected successfully")

	cfg := &Config{
		DB: db,
		SMTP: SMTPConfig{
			Host:     envOr("SMTP_HOST", "smtp.gmail.com"),
			Port:     envIntOr("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     envOr("SMTP_FROM", "payments@teachinglab.org"),
		},
		Job: JobConfig{
			BatchSize:    envIntOr("SUMMARY_BATCH_SIZE", DefaultBatchSize),
			EmailDelay:   time.Duration(envIntOr("SUMMARY_EMAIL_DELAY_MS", 600)) * time.Millisecond,
			BaseURL:      os.Getenv("APP_BASE_URL"),
			ServiceToken: os.Getenv("JOB_SERVICE_TOKEN"),
		},
		JWTSecret: envOr("JWT_SECRET", "tl-form-hub-secret-key"),
		Addr:      envOr("LISTEN_ADDR", ":8080"),
	}

	if cfg.Job.BaseURL == "" || cfg.Job.ServiceToken == "" {
		log.Println("Warning: APP_BASE_URL or JOB_SERVICE_TOKEN not set; summary job batches will not self-trigger")
	}

	log.Println("Email configuration initialized")
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
