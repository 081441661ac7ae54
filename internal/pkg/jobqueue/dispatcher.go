package jobqueue

import (
	"context"
	"log"
)

// Dispatcher fronts the queue with the same interfaces the reconciler
// depends on. Side effects are enqueued so the webhook response never waits
// on SMTP or the marketing API; when enqueueing fails (redis down) it falls
// back to direct delivery.
type Dispatcher struct {
	queue    *Queue
	notifier Notifier
	contacts ContactSync
}

// NewDispatcher creates a dispatcher over the queue and its direct fallbacks.
func NewDispatcher(queue *Queue, notifier Notifier, contacts ContactSync) *Dispatcher {
	return &Dispatcher{queue: queue, notifier: notifier, contacts: contacts}
}

func (d *Dispatcher) Send(to, subject, htmlBody, textBody string) error {
	err := d.queue.EnqueueEmail(context.Background(), EmailJobPayload{
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	if err == nil {
		return nil
	}
	log.Printf("[JobQueue] enqueue failed, sending email to %s directly: %v", to, err)
	return d.notifier.Send(to, subject, htmlBody, textBody)
}

func (d *Dispatcher) AddContact(name, email string) error {
	err := d.queue.EnqueueContactSync(context.Background(), ContactSyncJobPayload{
		Name:  name,
		Email: email,
	})
	if err == nil {
		return nil
	}
	log.Printf("[JobQueue] enqueue failed, syncing contact %s directly: %v", email, err)
	return d.contacts.AddContact(name, email)
}
