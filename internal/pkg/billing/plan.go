package billing

import (
	"strconv"
	"strings"

	"github.com/viniciusbm/onboardly/app/models"
	"github.com/viniciusbm/onboardly/internal/pkg/env"
)

// Amount thresholds (in cents) for inferring a plan tier when the event
// carries no explicit plan metadata. This is a documented approximation kept
// only as a last resort; explicit metadata always wins.
const (
	defaultAnnualThresholdCents   = 9700
	defaultLifetimeThresholdCents = 49700
)

// ResolvePlanTier maps the event's plan hint to an internal tier, falling
// back to amount thresholds when no hint is present.
func ResolvePlanTier(planHint string, rawAmount int64) string {
	if tier := normalizePlanHint(planHint); tier != "" {
		return tier
	}
	return tierFromAmount(rawAmount)
}

func normalizePlanHint(hint string) string {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "monthly", "month", "mensal":
		return models.PlanTierMonthly
	case "annual", "yearly", "year", "anual":
		return models.PlanTierAnnual
	case "lifetime", "vitalicio":
		return models.PlanTierLifetime
	default:
		return ""
	}
}

func tierFromAmount(amountCents int64) string {
	if amountCents >= envInt64("PLAN_LIFETIME_THRESHOLD_CENTS", defaultLifetimeThresholdCents) {
		return models.PlanTierLifetime
	}
	if amountCents >= envInt64("PLAN_ANNUAL_THRESHOLD_CENTS", defaultAnnualThresholdCents) {
		return models.PlanTierAnnual
	}
	return models.PlanTierMonthly
}

func envInt64(key string, def int64) int64 {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}

// MapProviderSubscriptionStatus maps a provider subscription status string to
// an internal billing status for subscription-updated events.
func MapProviderSubscriptionStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "trialing":
		return models.BillingStatusActive
	case "past_due", "incomplete":
		return models.BillingStatusPastDue
	case "unpaid", "incomplete_expired":
		return models.BillingStatusUnpaid
	case "canceled":
		return models.BillingStatusCanceled
	default:
		return models.BillingStatusActive
	}
}
