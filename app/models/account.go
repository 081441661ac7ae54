package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	AccountStatusPending = "pending"
	AccountStatusActive  = "active"
	AccountStatusBlocked = "blocked"
)

// Account is the canonical user record. The external identity provider holds
// the login credential; this row owns billing/status state. IdentityRef is
// never reassigned once set, only confirmed.
type Account struct {
	ID                      uint       `gorm:"primaryKey" json:"id"`
	Email                   string     `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_general_ci" json:"email" validate:"required,email,min=5,max=200"`
	DisplayName             string     `gorm:"type:varchar(150)" json:"display_name" validate:"required,min=1,max=150"`
	Status                  string     `gorm:"type:varchar(20);default:'pending';index" json:"status" validate:"oneof=pending active blocked"`
	IdentityRef             *string    `gorm:"type:varchar(128);default:null;uniqueIndex:ux_accounts_identity_ref" json:"-"`
	PendingCredentialSecret *string    `gorm:"type:text;default:null" json:"-"`
	TrialStartedAt          *time.Time `gorm:"type:timestamp;default:null" json:"trial_started_at,omitempty"`
	TrialEndsAt             *time.Time `gorm:"type:timestamp;default:null" json:"trial_ends_at,omitempty"`
	CreatedAt               time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Account) Validate() error {
	v := validator.New()

	return v.Struct(a)
}

// NormalizeEmail lowercases and trims an email for case-insensitive matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayNameFromEmail synthesizes a display name from the local part of an
// email address. Used when the reconciler has to create an account for an
// email it has never seen.
func DisplayNameFromEmail(email string) string {
	local := NormalizeEmail(email)
	if at := strings.Index(local, "@"); at > 0 {
		local = local[:at]
	}
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	local = strings.TrimSpace(local)
	if local == "" {
		return "Subscriber"
	}
	return local
}

// NewPendingAccount builds an unsaved account in the pending state.
func NewPendingAccount(email, displayName string) *Account {
	return &Account{
		Email:       NormalizeEmail(email),
		DisplayName: displayName,
		Status:      AccountStatusPending,
	}
}

// IsActive reports whether the account status is active.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// HasIdentity reports whether the account is linked to an external identity.
func (a *Account) HasIdentity() bool {
	return a.IdentityRef != nil && *a.IdentityRef != ""
}

// InTrial reports whether the account's trial window covers the given time.
func (a *Account) InTrial(now time.Time) bool {
	if a.TrialStartedAt == nil || a.TrialEndsAt == nil {
		return false
	}
	return !now.Before(*a.TrialStartedAt) && now.Before(*a.TrialEndsAt)
}
