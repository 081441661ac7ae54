package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeEmail       JobType = "email"
	JobTypeContactSync JobType = "contact_sync"
)

// Job represents a background job
type Job struct {
	ID         string          `json:"id"`
	Type       JobType         `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
	RetryCount int             `json:"retry_count"`
	MaxRetries int             `json:"max_retries"`
}

// EmailJobPayload contains the payload for transactional email jobs
type EmailJobPayload struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body"`
}

// ContactSyncJobPayload contains the payload for marketing contact sync jobs
type ContactSyncJobPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
