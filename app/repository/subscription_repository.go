package repository

import (
	"errors"
	"time"

	"github.com/viniciusbm/onboardly/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// GetByAccountID returns the account's subscription record, if any.
func (r *subscriptionRepository) GetByAccountID(accountID uint) (*models.SubscriptionRecord, error) {
	var sub models.SubscriptionRecord
	err := r.db.Where("account_id = ?", accountID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSubscription
		}
		return nil, err
	}
	return &sub, nil
}

// Upsert creates the account's subscription record or updates its billing
// status and period fields. The plan tier is only written on creation; the
// unique index on account_id makes concurrent duplicate deliveries converge
// on a single row.
func (r *subscriptionRepository) Upsert(accountID uint, planTier, billingStatus string, periodStart, periodEnd *time.Time) (*models.SubscriptionRecord, error) {
	sub := &models.SubscriptionRecord{
		AccountID:          accountID,
		PlanTier:           planTier,
		BillingStatus:      billingStatus,
		CurrentPeriodStart: periodStart,
		CurrentPeriodEnd:   periodEnd,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"billing_status",
			"current_period_start",
			"current_period_end",
			"updated_at",
		}),
	}).Create(sub).Error
	if err != nil {
		return nil, err
	}

	// Re-read so ID and the preserved plan tier are populated after upsert.
	return r.GetByAccountID(accountID)
}

// UpdateStatus mutates only the billing status. Absence of a record surfaces
// as ErrNoSubscription so callers can treat racing lifecycle events as
// non-fatal.
func (r *subscriptionRepository) UpdateStatus(accountID uint, billingStatus string) (*models.SubscriptionRecord, error) {
	tx := r.db.Model(&models.SubscriptionRecord{}).
		Where("account_id = ?", accountID).
		Update("billing_status", billingStatus)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		// Either no record or the status already matched; disambiguate.
		sub, err := r.GetByAccountID(accountID)
		if err != nil {
			return nil, err
		}
		return sub, nil
	}
	return r.GetByAccountID(accountID)
}
