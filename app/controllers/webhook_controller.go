package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/viniciusbm/onboardly/app/models"
	"github.com/viniciusbm/onboardly/internal/pkg/billing"
	"github.com/viniciusbm/onboardly/internal/pkg/env"
	"github.com/viniciusbm/onboardly/internal/pkg/metrics/counter"
)

const reconcileTimeout = 15 * time.Second

// HandleStripeWebhook receives signed provider deliveries. The response is
// always a 200 acknowledgment once the event has been normalized and
// dispatched; only signature verification failures produce a 4xx, so the
// provider retries those and nothing else.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")
	return handleWebhook(c, rawBody, signature, false)
}

// HandleTestWebhook accepts already-parsed JSON payloads from internal
// test/admin tooling, including operator replay of stored audit payloads.
// No signature material; only mounted in dev mode.
func HandleTestWebhook(c *fiber.Ctx) error {
	if !env.IsDev() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}
	rawBody := append([]byte(nil), c.BodyRaw()...)
	return handleWebhook(c, rawBody, "", true)
}

func handleWebhook(c *fiber.Ctx, rawBody []byte, signature string, unsigned bool) error {
	corrID := uuid.NewString()

	var event *billing.NormalizedPaymentEvent
	var err error
	if unsigned {
		event, err = deps.Normalizer.NormalizeUnsigned(rawBody)
	} else {
		event, err = deps.Normalizer.Normalize(rawBody, signature)
	}
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			log.Printf("[%s] rejecting webhook: %v", corrID, err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
		}
		log.Printf("[%s] rejecting unparseable webhook payload: %v", corrID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	event.CorrelationID = corrID

	if err := counter.AddWebhookEvent(string(event.Kind)); err != nil {
		log.Printf("[%s] webhook counter increment failed: %v", corrID, err)
	}

	eventID := event.ProviderEventID
	if eventID == "" {
		sum := sha256.Sum256(rawBody)
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	created, stored, err := deps.Repos.WebhookEvent.CreateIfNotExists(&models.WebhookEvent{
		Provider:        billing.ProviderStripe,
		ProviderEventID: eventID,
		EventType:       event.EventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signature != "",
	})
	if err != nil {
		// Persistence of the audit row failed; still reconcile, the
		// reconciler itself is idempotent.
		log.Printf("[%s] webhook event persistence failed: %v", corrID, err)
	} else if !created {
		// The fast path only applies to cleanly processed deliveries. A stored
		// row with a processing error, or one never marked processed, must be
		// reprocessable: that is how operators repair accounts stuck in
		// pending after a transient outage (replay through the test endpoint).
		if stored.ProcessedAt != nil && stored.ProcessingError == "" {
			log.Printf("[%s] duplicate delivery of event %s, acknowledging without reprocessing", corrID, eventID)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
		}
		log.Printf("[%s] redelivery of event %s whose processing did not complete cleanly, reprocessing", corrID, eventID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	procErr := deps.Reconciler.Process(ctx, event)
	if procErr != nil {
		// Logged and acknowledged: retrying an unresolvable event would only
		// pile up duplicate work (see IdentityConflict handling).
		log.Printf("[%s] reconciliation failed: kind=%s email=%q err=%v", corrID, event.Kind, event.CustomerEmail, procErr)
	}
	if stored != nil {
		errMsg := ""
		if procErr != nil {
			errMsg = procErr.Error()
		}
		if err := deps.Repos.WebhookEvent.MarkProcessed(stored.ID, errMsg); err != nil {
			log.Printf("[%s] failed to mark webhook event processed: %v", corrID, err)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
