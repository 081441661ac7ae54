package entitlements

import (
	"github.com/viniciusbm/onboardly/app/models"
)

// Entitlements describes what a subscriber can do at their plan tier.
type Entitlements struct {
	MaxProjects     int  `json:"max_projects"`
	MaxTeamSeats    int  `json:"max_team_seats"`
	APIAccess       bool `json:"api_access"`
	PrioritySupport bool `json:"priority_support"`
}

// ForTier returns the entitlements granted by a plan tier.
func ForTier(tier string) Entitlements {
	switch tier {
	case models.PlanTierLifetime:
		return Entitlements{MaxProjects: 100, MaxTeamSeats: 25, APIAccess: true, PrioritySupport: true}
	case models.PlanTierAnnual:
		return Entitlements{MaxProjects: 50, MaxTeamSeats: 10, APIAccess: true, PrioritySupport: true}
	case models.PlanTierMonthly:
		return Entitlements{MaxProjects: 10, MaxTeamSeats: 3, APIAccess: true, PrioritySupport: false}
	default:
		return Entitlements{}
	}
}

// ForAccount combines account status and subscription state. Blocked and
// pending accounts get no entitlements regardless of their plan; a canceled
// or unpaid subscription likewise grants nothing.
func ForAccount(account *models.Account, sub *models.SubscriptionRecord) Entitlements {
	if account == nil || !account.IsActive() {
		return Entitlements{}
	}
	if sub == nil || sub.BillingStatus == models.BillingStatusCanceled || sub.BillingStatus == models.BillingStatusUnpaid {
		return Entitlements{}
	}
	return ForTier(sub.PlanTier)
}
