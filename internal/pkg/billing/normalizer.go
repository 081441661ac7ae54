package billing

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Normalizer converts inbound webhook transport shapes into a
// NormalizedPaymentEvent. It is side-effect free: no store or provider calls.
type Normalizer struct {
	webhookSecret string
}

// NewNormalizer creates a normalizer. An empty secret disables signature
// verification (development/test mode only).
func NewNormalizer(webhookSecret string) *Normalizer {
	return &Normalizer{webhookSecret: strings.TrimSpace(webhookSecret)}
}

// Normalize parses one inbound webhook delivery. With a configured secret the
// raw payload must carry a valid signature header; a missing or failing
// signature returns ErrInvalidSignature. Only with no secret configured is
// the body accepted as-is, which is not production-safe and is logged as
// such.
func (n *Normalizer) Normalize(body []byte, signatureHeader string) (*NormalizedPaymentEvent, error) {
	var event stripe.Event

	sig := strings.TrimSpace(signatureHeader)
	if n.webhookSecret != "" {
		if sig == "" {
			return nil, fmt.Errorf("%w: missing signature header", ErrInvalidSignature)
		}
		verified, err := webhook.ConstructEventWithOptions(body, sig, n.webhookSecret, webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		event = verified
		return n.normalizeEvent(&event)
	}

	return n.NormalizeUnsigned(body)
}

// NormalizeUnsigned parses a delivery without any signature check. Reserved
// for the dev-gated test endpoint and secretless development setups.
func (n *Normalizer) NormalizeUnsigned(body []byte) (*NormalizedPaymentEvent, error) {
	log.Printf("WARNING: accepting unsigned webhook payload; this path is not production-safe")

	var event stripe.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	return n.normalizeEvent(&event)
}

func (n *Normalizer) normalizeEvent(event *stripe.Event) (*NormalizedPaymentEvent, error) {
	out := &NormalizedPaymentEvent{
		Kind:            mapEventKind(event.Type),
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
	}
	if out.Kind == KindUnhandled {
		return out, nil
	}
	if event.Data == nil {
		return out, nil
	}

	switch out.Kind {
	case KindCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to parse checkout session payload: %w", err)
		}
		n.fillFromCheckoutSession(out, &session)
	case KindInvoicePaid, KindInvoicePaymentFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return nil, fmt.Errorf("failed to parse invoice payload: %w", err)
		}
		n.fillFromInvoice(out, &invoice)
	case KindSubscriptionCreated, KindSubscriptionUpdated, KindSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to parse subscription payload: %w", err)
		}
		n.fillFromSubscription(out, &sub)
	}
	return out, nil
}

func (n *Normalizer) fillFromCheckoutSession(out *NormalizedPaymentEvent, session *stripe.CheckoutSession) {
	out.CustomerEmail = firstNonEmpty(
		session.CustomerEmail,
		customerDetailsEmail(session.CustomerDetails),
		metadataValue(session.Metadata, "email"),
	)
	if session.Customer != nil {
		out.CustomerRef = session.Customer.ID
	}
	out.AccountIDHint = accountIDFromMetadata(session.Metadata)
	out.EncodedCredential = firstNonEmpty(
		metadataValue(session.Metadata, "senha"),
		metadataValue(session.Metadata, "password"),
	)
	out.PlanHint = metadataValue(session.Metadata, "plan")
	out.RawAmount = session.AmountTotal
	out.IsTrialFlow = session.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired ||
		strings.EqualFold(metadataValue(session.Metadata, "trial"), "true")
}

func (n *Normalizer) fillFromInvoice(out *NormalizedPaymentEvent, invoice *stripe.Invoice) {
	out.CustomerEmail = firstNonEmpty(
		invoice.CustomerEmail,
		metadataValue(invoice.Metadata, "email"),
	)
	if invoice.Customer != nil {
		out.CustomerRef = invoice.Customer.ID
	}
	out.AccountIDHint = accountIDFromMetadata(invoice.Metadata)
	out.RawAmount = invoice.AmountDue
	out.BillingReasonIsRenewal = invoice.BillingReason == stripe.InvoiceBillingReasonSubscriptionCycle
}

func (n *Normalizer) fillFromSubscription(out *NormalizedPaymentEvent, sub *stripe.Subscription) {
	if sub.Customer != nil {
		out.CustomerRef = sub.Customer.ID
		out.CustomerEmail = sub.Customer.Email
	}
	out.AccountIDHint = accountIDFromMetadata(sub.Metadata)
	out.PlanHint = metadataValue(sub.Metadata, "plan")
	out.SubscriptionStatus = string(sub.Status)
}

func mapEventKind(eventType stripe.EventType) EventKind {
	switch eventType {
	case stripe.EventTypeCheckoutSessionCompleted:
		return KindCheckoutCompleted
	case stripe.EventTypeInvoicePaid, stripe.EventTypeInvoicePaymentSucceeded:
		return KindInvoicePaid
	case stripe.EventTypeInvoicePaymentFailed:
		return KindInvoicePaymentFailed
	case stripe.EventTypeCustomerSubscriptionCreated:
		return KindSubscriptionCreated
	case stripe.EventTypeCustomerSubscriptionUpdated:
		return KindSubscriptionUpdated
	case stripe.EventTypeCustomerSubscriptionDeleted:
		return KindSubscriptionDeleted
	default:
		return KindUnhandled
	}
}

// accountIDFromMetadata reads the caller-supplied correlation id. An invalid
// value is treated as absent, never as an error.
func accountIDFromMetadata(metadata map[string]string) uint {
	raw := firstNonEmpty(
		metadataValue(metadata, "userId"),
		metadataValue(metadata, "user_id"),
	)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

func customerDetailsEmail(details *stripe.CheckoutSessionCustomerDetails) string {
	if details == nil {
		return ""
	}
	return details.Email
}

func metadataValue(metadata map[string]string, key string) string {
	if metadata == nil {
		return ""
	}
	return strings.TrimSpace(metadata[key])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
