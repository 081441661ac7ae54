package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Redis keys
	JobQueueKey = "notification_queue"

	// Job settings
	DefaultMaxRetries = 3
	dequeueTimeout    = 5 * time.Second
)

// Notifier delivers a queued email job.
type Notifier interface {
	Send(to, subject, htmlBody, textBody string) error
}

// ContactSync delivers a queued contact sync job.
type ContactSync interface {
	AddContact(name, email string) error
}

// Queue manages deferred notification jobs using Redis, so webhook responses
// never wait on SMTP or the marketing API.
type Queue struct {
	client   *redis.Client
	notifier Notifier
	contacts ContactSync
	workers  int
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// NewQueue creates a new notification queue
func NewQueue(client *redis.Client, notifier Notifier, contacts ContactSync, workers int) *Queue {
	if workers <= 0 {
		workers = 2
	}
	return &Queue{
		client:   client,
		notifier: notifier,
		contacts: contacts,
		workers:  workers,
		stopCh:   make(chan struct{}),
	}
}

// EnqueueEmail queues a transactional email for delivery.
func (q *Queue) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return q.enqueue(ctx, JobTypeEmail, payload)
}

// EnqueueContactSync queues a marketing contact sync.
func (q *Queue) EnqueueContactSync(ctx context.Context, payload ContactSyncJobPayload) error {
	return q.enqueue(ctx, JobTypeContactSync, payload)
}

func (q *Queue) enqueue(ctx context.Context, jobType JobType, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    raw,
		CreatedAt:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, JobQueueKey, data).Err()
}

// Start starts the queue workers
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}
	q.running = true
	log.Printf("[JobQueue] Starting %d workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop stops the queue workers and waits for them to drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}
	q.running = false
	close(q.stopCh)
	q.wg.Wait()
	log.Printf("[JobQueue] Stopped")
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			return
		default:
		}

		result, err := q.client.BRPop(ctx, dequeueTimeout, JobQueueKey).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Printf("[JobQueue] worker %d dequeue error: %v", id, err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("[JobQueue] worker %d dropping malformed job: %v", id, err)
			continue
		}

		if err := q.process(&job); err != nil {
			q.retry(ctx, &job, err)
		}
	}
}

func (q *Queue) process(job *Job) error {
	switch job.Type {
	case JobTypeEmail:
		var payload EmailJobPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return err
		}
		return q.notifier.Send(payload.To, payload.Subject, payload.HTMLBody, payload.TextBody)
	case JobTypeContactSync:
		var payload ContactSyncJobPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return err
		}
		return q.contacts.AddContact(payload.Name, payload.Email)
	default:
		log.Printf("[JobQueue] dropping job %s with unknown type %q", job.ID, job.Type)
		return nil
	}
}

func (q *Queue) retry(ctx context.Context, job *Job, cause error) {
	job.RetryCount++
	if job.RetryCount > job.MaxRetries {
		log.Printf("[JobQueue] job %s (%s) failed permanently after %d retries: %v", job.ID, job.Type, job.MaxRetries, cause)
		return
	}
	log.Printf("[JobQueue] job %s (%s) failed (attempt %d/%d), requeueing: %v", job.ID, job.Type, job.RetryCount, job.MaxRetries, cause)
	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := q.client.LPush(ctx, JobQueueKey, data).Err(); err != nil {
		log.Printf("[JobQueue] requeue of job %s failed: %v", job.ID, err)
	}
}
