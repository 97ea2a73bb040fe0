package services

import (
	"log"
	"time"

	"github.com/TeachingLabHQ/tl-form-hub/app/config"
)

// StartScheduler starts the background task scheduler
func StartScheduler(cfg *config.Config) {
	go func() {
		log.Println("Scheduler started...")
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			now := time.Now()

			// Kick off the previous month's summary run on the 6th at 02:05
			if now.Day() == 6 && now.Hour() == 2 && now.Minute() == 5 {
				log.Println("Triggering scheduled tasks [6th 02:05]...")

				trigger := NewHTTPTrigger(cfg.Job)
				if err := trigger.TriggerNextBatch(); err != nil {
					log.Printf("Error triggering monthly summary job: %v", err)
				}
			}
		}
	}()
}
