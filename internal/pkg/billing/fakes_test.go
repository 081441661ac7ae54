package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/viniciusbm/onboardly/app/models"
	"github.com/viniciusbm/onboardly/app/repository"
	"github.com/viniciusbm/onboardly/internal/pkg/identity"
)

// In-memory doubles for the reconciler's collaborators. They enforce the same
// uniqueness semantics as the real repositories so idempotency tests are
// meaningful.

type fakeAccountRepo struct {
	mu       sync.Mutex
	nextID   uint
	accounts map[uint]*models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uint]*models.Account)}
}

func (r *fakeAccountRepo) Create(account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account.Email = models.NormalizeEmail(account.Email)
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.nextID++
	account.ID = r.nextID
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) GetByID(id uint) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAccountRepo) GetByEmail(email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = models.NormalizeEmail(email)
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (r *fakeAccountRepo) Update(account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; !ok {
		return repository.ErrAccountNotFound
	}
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) LinkIdentity(accountID uint, identityRef string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	if a.IdentityRef != nil && *a.IdentityRef != "" {
		if *a.IdentityRef == identityRef {
			cp := *a
			return &cp, nil
		}
		return nil, repository.ErrIdentityConflict
	}
	for _, other := range r.accounts {
		if other.ID != accountID && other.IdentityRef != nil && *other.IdentityRef == identityRef {
			return nil, repository.ErrIdentityConflict
		}
	}
	a.IdentityRef = &identityRef
	cp := *a
	return &cp, nil
}

func (r *fakeAccountRepo) SetStatus(accountID uint, status string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	a.Status = status
	cp := *a
	return &cp, nil
}

func (r *fakeAccountRepo) SetTrialWindow(accountID uint, start, end time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	a.TrialStartedAt = &start
	a.TrialEndsAt = &end
	return nil
}

func (r *fakeAccountRepo) SetPendingCredential(accountID uint, encodedSecret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	a.PendingCredentialSecret = &encodedSecret
	return nil
}

func (r *fakeAccountRepo) ClearPendingCredential(accountID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	a.PendingCredentialSecret = nil
	return nil
}

func (r *fakeAccountRepo) List(offset, limit int) ([]models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Account
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAccountRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.accounts)), nil
}

type fakeSubscriptionRepo struct {
	mu     sync.Mutex
	nextID uint
	subs   map[uint]*models.SubscriptionRecord
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[uint]*models.SubscriptionRecord)}
}

func (r *fakeSubscriptionRepo) GetByAccountID(accountID uint) (*models.SubscriptionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[accountID]
	if !ok {
		return nil, repository.ErrNoSubscription
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubscriptionRepo) Upsert(accountID uint, planTier, billingStatus string, periodStart, periodEnd *time.Time) (*models.SubscriptionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.subs[accountID]; ok {
		existing.BillingStatus = billingStatus
		existing.CurrentPeriodStart = periodStart
		existing.CurrentPeriodEnd = periodEnd
		cp := *existing
		return &cp, nil
	}
	r.nextID++
	sub := &models.SubscriptionRecord{
		ID:                 r.nextID,
		AccountID:          accountID,
		PlanTier:           planTier,
		BillingStatus:      billingStatus,
		CurrentPeriodStart: periodStart,
		CurrentPeriodEnd:   periodEnd,
	}
	r.subs[accountID] = sub
	cp := *sub
	return &cp, nil
}

func (r *fakeSubscriptionRepo) UpdateStatus(accountID uint, billingStatus string) (*models.SubscriptionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[accountID]
	if !ok {
		return nil, repository.ErrNoSubscription
	}
	s.BillingStatus = billingStatus
	cp := *s
	return &cp, nil
}

func (r *fakeSubscriptionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

type fakeIdentityProvider struct {
	mu         sync.Mutex
	nextRef    int
	identities map[string]*identity.Identity // keyed by email
	creates    int
	resetLinks int
	// raceOnCreate simulates a concurrent delivery creating the identity
	// between lookup and create.
	raceOnCreate bool
	createErr    error
	lastSecrets  []string
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{identities: make(map[string]*identity.Identity)}
}

func (p *fakeIdentityProvider) FindByEmail(_ context.Context, email string) (*identity.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.identities[email]
	if !ok {
		return nil, nil
	}
	cp := *id
	return &cp, nil
}

func (p *fakeIdentityProvider) Create(_ context.Context, email, secret, displayName string) (*identity.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}
	if p.raceOnCreate {
		p.raceOnCreate = false
		p.nextRef++
		p.identities[email] = &identity.Identity{
			Ref:         fmt.Sprintf("race-ref-%d", p.nextRef),
			Email:       email,
			DisplayName: displayName,
		}
		return nil, identity.ErrAlreadyExists
	}
	if _, ok := p.identities[email]; ok {
		return nil, identity.ErrAlreadyExists
	}
	p.nextRef++
	p.creates++
	id := &identity.Identity{
		Ref:         fmt.Sprintf("ref-%d", p.nextRef),
		Email:       email,
		DisplayName: displayName,
	}
	p.identities[email] = id
	p.lastSecrets = append(p.lastSecrets, secret)
	cp := *id
	return &cp, nil
}

func (p *fakeIdentityProvider) GenerateResetLink(_ context.Context, email string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.identities[email]; !ok {
		return "", identity.ErrAccountNotFound
	}
	p.resetLinks++
	return "https://auth.example/reset?email=" + email, nil
}

func (p *fakeIdentityProvider) Delete(_ context.Context, ref string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for email, id := range p.identities {
		if id.Ref == ref {
			delete(p.identities, email)
			return nil
		}
	}
	return identity.ErrAccountNotFound
}

func (p *fakeIdentityProvider) lastSecret() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.lastSecrets) == 0 {
		return ""
	}
	return p.lastSecrets[len(p.lastSecrets)-1]
}

type sentMail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (n *fakeNotifier) Send(to, subject, htmlBody, textBody string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, HTML: htmlBody, Text: textBody})
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeContacts struct {
	mu    sync.Mutex
	added []string
}

func (c *fakeContacts) AddContact(name, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.added = append(c.added, email)
	return nil
}

func (c *fakeContacts) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.added)
}

type fakeCustomers struct {
	emails map[string]string
}

func (f *fakeCustomers) EmailForCustomer(_ context.Context, customerRef string) (string, error) {
	email, ok := f.emails[customerRef]
	if !ok {
		return "", errors.New("unknown customer")
	}
	return email, nil
}
