package services

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/TeachingLabHQ/tl-form-hub/app/config"
)

// SummaryJobPath is the route the self-trigger re-invokes.
const SummaryJobPath = "/api/jobs/send-vendor-payment-summaries"

// HTTPTrigger re-invokes the summary job endpoint with the service
// credential, fire-and-forget: the request runs in a goroutine and the
// response is discarded. Only missing configuration is reported as an
// error; dispatch failures are logged and left to the monthly schedule.
type HTTPTrigger struct {
	BaseURL      string
	ServiceToken string
	Client       *http.Client
}

func NewHTTPTrigger(job config.JobConfig) *HTTPTrigger {
	return &HTTPTrigger{
		BaseURL:      job.BaseURL,
		ServiceToken: job.ServiceToken,
		Client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *HTTPTrigger) TriggerNextBatch() error {
	if t.BaseURL == "" || t.ServiceToken == "" {
		return fmt.Errorf("cannot trigger next batch: missing APP_BASE_URL or JOB_SERVICE_TOKEN")
	}

	url := strings.TrimRight(t.BaseURL, "/") + SummaryJobPath
	go func() {
		req, err := http.NewRequest(http.MethodPost, url, strings.NewReader("{}"))
		if err != nil {
			log.Printf("Failed to build next batch request: %v", err)
			return
		}
		req.Header.Set("Authorization", "Bearer "+t.ServiceToken)
		req.Header.Set("Content-Type", "application/json")

		resp, err := t.client().Do(req)
		if err != nil {
			log.Printf("Failed to trigger next batch: %v", err)
			return
		}
		resp.Body.Close()
	}()

	log.Println("Next batch trigger dispatched")
	return nil
}

func (t *HTTPTrigger) client() *http.Client {
	if t.Client != nil {
		return t.Client
	}
	return http.DefaultClient
}
