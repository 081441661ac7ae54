package repository

import (
	"errors"
	"time"

	"github.com/viniciusbm/onboardly/app/models"
	"gorm.io/gorm"
)

// accountRepository implements the AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository instance
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new account. The unique index on email is the concurrency
// guard; a duplicate insert surfaces as ErrDuplicateEmail.
func (r *accountRepository) Create(account *models.Account) error {
	account.Email = models.NormalizeEmail(account.Email)
	if err := r.db.Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByID retrieves an account by its ID
func (r *accountRepository) GetByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetByEmail retrieves an account by email, matched case-insensitively.
func (r *accountRepository) GetByEmail(email string) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("email = ?", models.NormalizeEmail(email)).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Update saves an existing account
func (r *accountRepository) Update(account *models.Account) error {
	return r.db.Save(account).Error
}

// LinkIdentity attaches an external identity reference to an account.
// Linking the same ref twice is a no-op; linking a different ref is refused
// with ErrIdentityConflict, the ref is never silently reassigned.
func (r *accountRepository) LinkIdentity(accountID uint, identityRef string) (*models.Account, error) {
	account, err := r.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if account.IdentityRef != nil && *account.IdentityRef != "" {
		if *account.IdentityRef == identityRef {
			return account, nil
		}
		return nil, ErrIdentityConflict
	}
	if err := r.db.Model(account).Update("identity_ref", identityRef).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Unique index on identity_ref: the ref is already claimed by
			// another account.
			return nil, ErrIdentityConflict
		}
		return nil, err
	}
	account.IdentityRef = &identityRef
	return account, nil
}

// SetStatus performs an unconditional status transition.
func (r *accountRepository) SetStatus(accountID uint, status string) (*models.Account, error) {
	account, err := r.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if account.Status == status {
		return account, nil
	}
	if err := r.db.Model(account).Update("status", status).Error; err != nil {
		return nil, err
	}
	account.Status = status
	return account, nil
}

// SetTrialWindow stamps the trial start/end on the account.
func (r *accountRepository) SetTrialWindow(accountID uint, start, end time.Time) error {
	return r.db.Model(&models.Account{}).Where("id = ?", accountID).Updates(map[string]interface{}{
		"trial_started_at": start,
		"trial_ends_at":    end,
	}).Error
}

// SetPendingCredential stores the transport-encoded secret captured at
// registration time. It is consumed once by identity creation.
func (r *accountRepository) SetPendingCredential(accountID uint, encodedSecret string) error {
	return r.db.Model(&models.Account{}).Where("id = ?", accountID).
		Update("pending_credential_secret", encodedSecret).Error
}

// ClearPendingCredential drops the stored secret after identity creation.
func (r *accountRepository) ClearPendingCredential(accountID uint) error {
	return r.db.Model(&models.Account{}).Where("id = ?", accountID).
		Update("pending_credential_secret", nil).Error
}

// List retrieves a paginated list of accounts
func (r *accountRepository) List(offset, limit int) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&accounts).Error
	return accounts, err
}

// Count returns the total number of accounts
func (r *accountRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Account{}).Count(&count).Error
	return count, err
}
