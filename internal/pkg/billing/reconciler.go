package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/viniciusbm/onboardly/app/models"
	"github.com/viniciusbm/onboardly/app/repository"
	"github.com/viniciusbm/onboardly/internal/pkg/identity"
)

// Notifier sends transactional email. Best-effort from the reconciler's point
// of view: a send failure never fails reconciliation.
type Notifier interface {
	Send(to, subject, htmlBody, textBody string) error
}

// ContactSync adds a contact to the marketing list. Best-effort.
type ContactSync interface {
	AddContact(name, email string) error
}

// CustomerResolver resolves a provider customer reference to an email, for
// subscription lifecycle events that carry no email of their own.
type CustomerResolver interface {
	EmailForCustomer(ctx context.Context, customerRef string) (string, error)
}

// Policy captures the configurable reconciliation decisions.
type Policy struct {
	// BlockOnFirstInvoiceFailure also blocks accounts when the very first
	// invoice fails, not just renewals. Off by default: the first invoice is
	// treated as a grace period.
	BlockOnFirstInvoiceFailure bool
	// TrialDays is the trial window stamped on trial-flow checkouts.
	TrialDays int
}

// DefaultPolicy returns the production policy.
func DefaultPolicy() Policy {
	return Policy{BlockOnFirstInvoiceFailure: false, TrialDays: 7}
}

// Reconciler drives Account Store and Identity Provider state to a consistent
// end state for each normalized payment event. Every step is safely
// repeatable: duplicate and out-of-order deliveries converge on the same
// state without duplicate side effects.
type Reconciler struct {
	accounts  repository.AccountRepository
	subs      repository.SubscriptionRepository
	identity  identity.Provider
	notifier  Notifier
	contacts  ContactSync
	customers CustomerResolver
	policy    Policy
	now       func() time.Time
}

// NewReconciler wires a reconciler from its collaborators. customers may be
// nil when no customer-reference resolution is available.
func NewReconciler(
	accounts repository.AccountRepository,
	subs repository.SubscriptionRepository,
	idp identity.Provider,
	notifier Notifier,
	contacts ContactSync,
	customers CustomerResolver,
	policy Policy,
) *Reconciler {
	return &Reconciler{
		accounts:  accounts,
		subs:      subs,
		identity:  idp,
		notifier:  notifier,
		contacts:  contacts,
		customers: customers,
		policy:    policy,
		now:       time.Now,
	}
}

// Process reconciles one event. The returned error is for logging/audit only;
// webhook handlers acknowledge receipt regardless, except for signature
// failures which never reach this point.
func (r *Reconciler) Process(ctx context.Context, event *NormalizedPaymentEvent) error {
	switch event.Kind {
	case KindUnhandled:
		log.Printf("[%s] ignoring unhandled event type %q", event.CorrelationID, event.EventType)
		return nil
	case KindCheckoutCompleted:
		return r.handleCheckoutCompleted(ctx, event)
	case KindInvoicePaid:
		return r.handleInvoicePaid(ctx, event)
	case KindSubscriptionCreated:
		// Informational only: checkout completion already establishes state.
		log.Printf("[%s] subscription created for customer %s (no-op)", event.CorrelationID, event.CustomerRef)
		return nil
	case KindSubscriptionUpdated:
		return r.handleSubscriptionUpdated(ctx, event)
	case KindSubscriptionDeleted:
		return r.handleSubscriptionDeleted(ctx, event)
	case KindInvoicePaymentFailed:
		return r.handleInvoicePaymentFailed(ctx, event)
	default:
		log.Printf("[%s] ignoring unknown event kind %q", event.CorrelationID, event.Kind)
		return nil
	}
}

func (r *Reconciler) handleCheckoutCompleted(ctx context.Context, event *NormalizedPaymentEvent) error {
	account, err := r.resolveAccount(ctx, event, true)
	if err != nil {
		return err
	}
	if account == nil {
		log.Printf("[%s] checkout completed without resolvable account (hint=%d email=%q), skipping",
			event.CorrelationID, event.AccountIDHint, event.CustomerEmail)
		return nil
	}

	if err := r.ensureIdentity(ctx, event, account); err != nil {
		return err
	}

	tier := ResolvePlanTier(event.PlanHint, event.RawAmount)
	start, end := r.subscriptionPeriod(tier)
	if _, err := r.subs.Upsert(account.ID, tier, models.BillingStatusActive, start, end); err != nil {
		return fmt.Errorf("subscription upsert for account %d failed: %w", account.ID, err)
	}

	if event.IsTrialFlow {
		trialStart := r.now()
		trialEnd := trialStart.AddDate(0, 0, r.policy.TrialDays)
		if err := r.accounts.SetTrialWindow(account.ID, trialStart, trialEnd); err != nil {
			log.Printf("[%s] failed to stamp trial window on account %d: %v", event.CorrelationID, account.ID, err)
		}
	}

	log.Printf("[%s] checkout completed reconciled: account=%d email=%s tier=%s",
		event.CorrelationID, account.ID, account.Email, tier)
	return nil
}

// ensureIdentity guarantees the account ends up linked to exactly one
// provider identity and active. The welcome notification fires only on the
// branch that actually created the identity, so duplicate deliveries never
// produce duplicate welcome emails.
func (r *Reconciler) ensureIdentity(ctx context.Context, event *NormalizedPaymentEvent, account *models.Account) error {
	existing, err := r.identity.FindByEmail(ctx, account.Email)
	if err != nil {
		return fmt.Errorf("identity lookup failed: %w", err)
	}
	if existing != nil {
		return r.adoptIdentity(event, account, existing)
	}

	secret, source := ResolveCredential(event, account)
	created, err := r.identity.Create(ctx, account.Email, secret, account.DisplayName)
	if err != nil {
		if errors.Is(err, identity.ErrAlreadyExists) {
			// Lost the race against a concurrent delivery; the identity
			// exists now, adopt it.
			existing, ferr := r.identity.FindByEmail(ctx, account.Email)
			if ferr != nil {
				return fmt.Errorf("identity re-fetch after creation race failed: %w", ferr)
			}
			if existing == nil {
				return fmt.Errorf("identity reported existing but not found for %s", account.Email)
			}
			return r.adoptIdentity(event, account, existing)
		}
		return fmt.Errorf("identity creation failed: %w", err)
	}

	if err := r.adoptIdentity(event, account, created); err != nil {
		return err
	}
	if err := r.accounts.ClearPendingCredential(account.ID); err != nil {
		log.Printf("[%s] failed to clear pending credential for account %d: %v", event.CorrelationID, account.ID, err)
	}

	r.sendWelcome(ctx, event, account, source)
	return nil
}

func (r *Reconciler) adoptIdentity(event *NormalizedPaymentEvent, account *models.Account, id *identity.Identity) error {
	if _, err := r.accounts.LinkIdentity(account.ID, id.Ref); err != nil {
		if errors.Is(err, repository.ErrIdentityConflict) {
			// Two identities claim this account; do not guess which one is
			// authoritative.
			return fmt.Errorf("account %d (%s): %w", account.ID, account.Email, err)
		}
		return fmt.Errorf("identity link for account %d failed: %w", account.ID, err)
	}
	if _, err := r.accounts.SetStatus(account.ID, models.AccountStatusActive); err != nil {
		return fmt.Errorf("activation of account %d failed: %w", account.ID, err)
	}
	return nil
}

// sendWelcome triggers the one-time welcome email and marketing sync. Both
// are best-effort.
func (r *Reconciler) sendWelcome(ctx context.Context, event *NormalizedPaymentEvent, account *models.Account, source CredentialSource) {
	resetLink := ""
	if source == CredentialGenerated {
		// The user never saw the generated secret; hand them a reset link.
		link, err := r.identity.GenerateResetLink(ctx, account.Email)
		if err != nil {
			log.Printf("[%s] reset link generation for %s failed: %v", event.CorrelationID, account.Email, err)
		} else {
			resetLink = link
		}
	}

	subject, html, text := welcomeMessage(account.DisplayName, resetLink)
	if err := r.notifier.Send(account.Email, subject, html, text); err != nil {
		log.Printf("[%s] welcome email to %s failed: %v", event.CorrelationID, account.Email, err)
	}
	if err := r.contacts.AddContact(account.DisplayName, account.Email); err != nil {
		log.Printf("[%s] marketing contact sync for %s failed: %v", event.CorrelationID, account.Email, err)
	}
}

func (r *Reconciler) handleInvoicePaid(ctx context.Context, event *NormalizedPaymentEvent) error {
	account, err := r.resolveAccount(ctx, event, false)
	if err != nil {
		return err
	}
	if account == nil {
		// The invoice can race ahead of checkout-completed processing; no
		// retry is attempted here.
		log.Printf("[%s] invoice paid for unknown account (email=%q), skipping", event.CorrelationID, event.CustomerEmail)
		return nil
	}
	if _, err := r.subs.UpdateStatus(account.ID, models.BillingStatusActive); err != nil {
		if errors.Is(err, repository.ErrNoSubscription) {
			log.Printf("[%s] invoice paid but account %d has no subscription yet, skipping", event.CorrelationID, account.ID)
			return nil
		}
		return fmt.Errorf("subscription status update for account %d failed: %w", account.ID, err)
	}
	log.Printf("[%s] invoice paid reconciled: account=%d email=%s", event.CorrelationID, account.ID, account.Email)
	return nil
}

func (r *Reconciler) handleSubscriptionUpdated(ctx context.Context, event *NormalizedPaymentEvent) error {
	account, err := r.resolveAccount(ctx, event, false)
	if err != nil {
		return err
	}
	if account == nil {
		log.Printf("[%s] subscription update for unknown account (customer=%q), skipping", event.CorrelationID, event.CustomerRef)
		return nil
	}
	status := MapProviderSubscriptionStatus(event.SubscriptionStatus)
	if _, err := r.subs.UpdateStatus(account.ID, status); err != nil {
		if errors.Is(err, repository.ErrNoSubscription) {
			log.Printf("[%s] subscription update but account %d has no record yet, skipping", event.CorrelationID, account.ID)
			return nil
		}
		return fmt.Errorf("subscription status update for account %d failed: %w", account.ID, err)
	}
	log.Printf("[%s] subscription updated reconciled: account=%d status=%s", event.CorrelationID, account.ID, status)
	return nil
}

func (r *Reconciler) handleSubscriptionDeleted(ctx context.Context, event *NormalizedPaymentEvent) error {
	account, err := r.resolveAccount(ctx, event, false)
	if err != nil {
		return err
	}
	if account == nil {
		log.Printf("[%s] subscription deletion for unknown account (customer=%q), skipping", event.CorrelationID, event.CustomerRef)
		return nil
	}
	if _, err := r.subs.UpdateStatus(account.ID, models.BillingStatusCanceled); err != nil {
		if errors.Is(err, repository.ErrNoSubscription) {
			log.Printf("[%s] subscription deletion but account %d has no record, skipping", event.CorrelationID, account.ID)
			return nil
		}
		return fmt.Errorf("subscription cancellation for account %d failed: %w", account.ID, err)
	}

	subject, html, text := farewellMessage(account.DisplayName)
	if err := r.notifier.Send(account.Email, subject, html, text); err != nil {
		log.Printf("[%s] farewell email to %s failed: %v", event.CorrelationID, account.Email, err)
	}

	log.Printf("[%s] subscription deleted reconciled: account=%d email=%s", event.CorrelationID, account.ID, account.Email)
	return nil
}

func (r *Reconciler) handleInvoicePaymentFailed(ctx context.Context, event *NormalizedPaymentEvent) error {
	if !event.BillingReasonIsRenewal && !r.policy.BlockOnFirstInvoiceFailure {
		// First-invoice failures are not escalated: the provider retries and
		// the account has not been granted access on the strength of this
		// invoice.
		log.Printf("[%s] first-invoice payment failure (email=%q), not escalating", event.CorrelationID, event.CustomerEmail)
		return nil
	}

	account, err := r.resolveAccount(ctx, event, false)
	if err != nil {
		return err
	}
	if account == nil {
		log.Printf("[%s] payment failure for unknown account (email=%q), skipping", event.CorrelationID, event.CustomerEmail)
		return nil
	}
	if _, err := r.accounts.SetStatus(account.ID, models.AccountStatusBlocked); err != nil {
		return fmt.Errorf("blocking account %d failed: %w", account.ID, err)
	}
	if _, err := r.subs.UpdateStatus(account.ID, models.BillingStatusUnpaid); err != nil {
		if errors.Is(err, repository.ErrNoSubscription) {
			log.Printf("[%s] payment failure but account %d has no subscription record", event.CorrelationID, account.ID)
			return nil
		}
		return fmt.Errorf("marking subscription unpaid for account %d failed: %w", account.ID, err)
	}
	log.Printf("[%s] payment failure reconciled: account=%d email=%s blocked", event.CorrelationID, account.ID, account.Email)
	return nil
}

// resolveAccount finds the target account: id hint first, then email, then
// provider customer reference. With createIfMissing it defensively creates a
// pending account from the email, because some delivery paths cannot
// pre-register before the provider notifies completion. Returns (nil, nil)
// when nothing resolves.
func (r *Reconciler) resolveAccount(ctx context.Context, event *NormalizedPaymentEvent, createIfMissing bool) (*models.Account, error) {
	if event.AccountIDHint != 0 {
		account, err := r.accounts.GetByID(event.AccountIDHint)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return nil, fmt.Errorf("account lookup by id %d failed: %w", event.AccountIDHint, err)
		}
		log.Printf("[%s] account id hint %d does not resolve, falling back to email", event.CorrelationID, event.AccountIDHint)
	}

	email := event.CustomerEmail
	if email == "" && event.CustomerRef != "" && r.customers != nil {
		resolved, err := r.customers.EmailForCustomer(ctx, event.CustomerRef)
		if err != nil {
			log.Printf("[%s] customer reference %s did not resolve to an email: %v", event.CorrelationID, event.CustomerRef, err)
		} else {
			email = resolved
		}
	}
	if email == "" {
		return nil, nil
	}

	account, err := r.accounts.GetByEmail(email)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("account lookup by email failed: %w", err)
	}
	if !createIfMissing {
		return nil, nil
	}

	created := models.NewPendingAccount(email, models.DisplayNameFromEmail(email))
	if err := r.accounts.Create(created); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// Concurrent delivery created it first; adopt that row.
			return r.accounts.GetByEmail(email)
		}
		return nil, fmt.Errorf("defensive account creation for %s failed: %w", email, err)
	}
	log.Printf("[%s] created pending account %d for unknown email %s", event.CorrelationID, created.ID, created.Email)
	return created, nil
}

func (r *Reconciler) subscriptionPeriod(tier string) (*time.Time, *time.Time) {
	start := r.now()
	switch tier {
	case models.PlanTierMonthly:
		end := start.AddDate(0, 1, 0)
		return &start, &end
	case models.PlanTierAnnual:
		end := start.AddDate(1, 0, 0)
		return &start, &end
	default:
		// Lifetime has no period end.
		return &start, nil
	}
}
