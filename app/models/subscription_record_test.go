package models

import "testing"

func TestIsValidPlanTier(t *testing.T) {
	for _, tier := range []string{PlanTierMonthly, PlanTierAnnual, PlanTierLifetime} {
		if !IsValidPlanTier(tier) {
			t.Errorf("IsValidPlanTier(%q) = false, want true", tier)
		}
	}
	for _, tier := range []string{"", "weekly", "MONTHLY"} {
		if IsValidPlanTier(tier) {
			t.Errorf("IsValidPlanTier(%q) = true, want false", tier)
		}
	}
}

func TestIsValidBillingStatus(t *testing.T) {
	for _, status := range []string{BillingStatusActive, BillingStatusCanceled, BillingStatusPastDue, BillingStatusUnpaid} {
		if !IsValidBillingStatus(status) {
			t.Errorf("IsValidBillingStatus(%q) = false, want true", status)
		}
	}
	for _, status := range []string{"", "paused", "Active"} {
		if IsValidBillingStatus(status) {
			t.Errorf("IsValidBillingStatus(%q) = true, want false", status)
		}
	}
}
