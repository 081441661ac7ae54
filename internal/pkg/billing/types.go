package billing

import "errors"

// Provider constant used for webhook event persistence.
const ProviderStripe = "stripe"

// EventKind is the canonical classification of an inbound payment event.
type EventKind string

const (
	KindCheckoutCompleted    EventKind = "checkout_completed"
	KindInvoicePaid          EventKind = "invoice_paid"
	KindInvoicePaymentFailed EventKind = "invoice_payment_failed"
	KindSubscriptionCreated  EventKind = "subscription_created"
	KindSubscriptionUpdated  EventKind = "subscription_updated"
	KindSubscriptionDeleted  EventKind = "subscription_deleted"
	// KindUnhandled marks event types this system does not process. They are
	// acknowledged without error so new provider event types never hard-fail.
	KindUnhandled EventKind = "unhandled"
)

// ErrInvalidSignature is returned by the normalizer when the webhook
// signature does not verify against the raw payload. The only normalizer
// error that maps to a 4xx response.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// NormalizedPaymentEvent is the provider-agnostic envelope the reconciler
// consumes. Constructed per request, never persisted.
type NormalizedPaymentEvent struct {
	Kind            EventKind
	ProviderEventID string
	EventType       string
	// CorrelationID ties all log lines for one delivery together. Assigned
	// by the webhook handler.
	CorrelationID string

	// CustomerEmail is the first non-empty of: top-level customer email,
	// customer-details email, metadata email.
	CustomerEmail string
	// CustomerRef is the provider-side customer reference, used to resolve
	// accounts for subscription lifecycle events that carry no email.
	CustomerRef string
	// AccountIDHint is the caller-supplied correlation id from metadata
	// (userId/user_id). Zero means absent.
	AccountIDHint uint
	// EncodedCredential is the transport-encoded secret from metadata. Only
	// Credential Recovery decodes it.
	EncodedCredential string

	PlanHint string
	// SubscriptionStatus carries the provider's subscription status for
	// subscription-updated events.
	SubscriptionStatus     string
	RawAmount              int64
	IsTrialFlow            bool
	BillingReasonIsRenewal bool
}
