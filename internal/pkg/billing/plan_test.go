package billing

import (
	"testing"

	"github.com/viniciusbm/onboardly/app/models"
)

func TestResolvePlanTier(t *testing.T) {
	tests := []struct {
		name   string
		hint   string
		amount int64
		want   string
	}{
		{"hint_monthly", "monthly", 0, models.PlanTierMonthly},
		{"hint_mensal", "mensal", 0, models.PlanTierMonthly},
		{"hint_annual", "annual", 0, models.PlanTierAnnual},
		{"hint_yearly", "yearly", 0, models.PlanTierAnnual},
		{"hint_anual", "Anual", 0, models.PlanTierAnnual},
		{"hint_lifetime", "lifetime", 0, models.PlanTierLifetime},
		{"hint_vitalicio", "vitalicio", 0, models.PlanTierLifetime},
		{"hint_wins_over_amount", "monthly", 99900, models.PlanTierMonthly},
		{"amount_small_is_monthly", "", 1990, models.PlanTierMonthly},
		{"amount_below_annual_threshold", "", 9699, models.PlanTierMonthly},
		{"amount_at_annual_threshold", "", 9700, models.PlanTierAnnual},
		{"amount_at_lifetime_threshold", "", 49700, models.PlanTierLifetime},
		{"unknown_hint_falls_back_to_amount", "platinum", 9700, models.PlanTierAnnual},
		{"zero_amount_no_hint", "", 0, models.PlanTierMonthly},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolvePlanTier(tc.hint, tc.amount)
			if got != tc.want {
				t.Fatalf("ResolvePlanTier(%q, %d) = %q, want %q", tc.hint, tc.amount, got, tc.want)
			}
		})
	}
}

func TestMapProviderSubscriptionStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"active", models.BillingStatusActive},
		{"trialing", models.BillingStatusActive},
		{"past_due", models.BillingStatusPastDue},
		{"incomplete", models.BillingStatusPastDue},
		{"unpaid", models.BillingStatusUnpaid},
		{"incomplete_expired", models.BillingStatusUnpaid},
		{"canceled", models.BillingStatusCanceled},
		{"something_new", models.BillingStatusActive},
		{"", models.BillingStatusActive},
	}

	for _, tc := range tests {
		if got := MapProviderSubscriptionStatus(tc.status); got != tc.want {
			t.Errorf("MapProviderSubscriptionStatus(%q) = %q, want %q", tc.status, got, tc.want)
		}
	}
}
