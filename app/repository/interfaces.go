package repository

import (
	"errors"
	"time"

	"github.com/viniciusbm/onboardly/app/models"
	"gorm.io/gorm"
)

// Sentinel errors surfaced by the repositories. Callers branch on these with
// errors.Is; everything else is treated as a transport/store failure.
var (
	ErrDuplicateEmail   = errors.New("account with this email already exists")
	ErrIdentityConflict = errors.New("account is linked to a different identity")
	ErrNoSubscription   = errors.New("account has no subscription record")
	ErrAccountNotFound  = errors.New("account not found")
)

// AccountRepository defines the interface for account-related database operations
type AccountRepository interface {
	Create(account *models.Account) error
	GetByID(id uint) (*models.Account, error)
	GetByEmail(email string) (*models.Account, error)
	Update(account *models.Account) error
	LinkIdentity(accountID uint, identityRef string) (*models.Account, error)
	SetStatus(accountID uint, status string) (*models.Account, error)
	SetTrialWindow(accountID uint, start, end time.Time) error
	SetPendingCredential(accountID uint, encodedSecret string) error
	ClearPendingCredential(accountID uint) error
	List(offset, limit int) ([]models.Account, error)
	Count() (int64, error)
}

// SubscriptionRepository defines the interface for subscription records
type SubscriptionRepository interface {
	GetByAccountID(accountID uint) (*models.SubscriptionRecord, error)
	Upsert(accountID uint, planTier, billingStatus string, periodStart, periodEnd *time.Time) (*models.SubscriptionRecord, error)
	UpdateStatus(accountID uint, billingStatus string) (*models.SubscriptionRecord, error)
}

// WebhookEventRepository defines the interface for webhook payload dedup/audit
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Account      AccountRepository
	Subscription SubscriptionRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Account:      NewAccountRepository(db),
		Subscription: NewSubscriptionRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
