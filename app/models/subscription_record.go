package models

import "time"

const (
	PlanTierMonthly  = "monthly"
	PlanTierAnnual   = "annual"
	PlanTierLifetime = "lifetime"
)

const (
	BillingStatusActive   = "active"
	BillingStatusCanceled = "canceled"
	BillingStatusPastDue  = "past_due"
	BillingStatusUnpaid   = "unpaid"
)

// SubscriptionRecord mirrors billing state for one account. At most one record
// exists per account; lifecycle events only ever mutate status and period
// fields, the plan tier is fixed at creation.
type SubscriptionRecord struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	AccountID          uint       `gorm:"not null;uniqueIndex:ux_subscription_records_account" json:"account_id"`
	PlanTier           string     `gorm:"type:varchar(20);not null" json:"plan_tier"`
	BillingStatus      string     `gorm:"type:varchar(20);not null;default:'active';index" json:"billing_status"`
	CurrentPeriodStart *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsValidPlanTier reports whether s names a known plan tier.
func IsValidPlanTier(s string) bool {
	switch s {
	case PlanTierMonthly, PlanTierAnnual, PlanTierLifetime:
		return true
	default:
		return false
	}
}

// IsValidBillingStatus reports whether s names a known billing status.
func IsValidBillingStatus(s string) bool {
	switch s {
	case BillingStatusActive, BillingStatusCanceled, BillingStatusPastDue, BillingStatusUnpaid:
		return true
	default:
		return false
	}
}
