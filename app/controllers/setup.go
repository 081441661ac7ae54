package controllers

import (
	"github.com/stripe/stripe-go/v76/client"

	"github.com/viniciusbm/onboardly/app/repository"
	"github.com/viniciusbm/onboardly/internal/pkg/billing"
	"github.com/viniciusbm/onboardly/internal/pkg/identity"
)

// Dependencies bundles everything the handlers need. Wired once from main so
// provider clients are injected instead of living in package globals.
type Dependencies struct {
	Repos      *repository.Repositories
	Normalizer *billing.Normalizer
	Reconciler *billing.Reconciler
	Identity   identity.Provider
	Contacts   billing.ContactSync
	Stripe     *client.API
}

var deps *Dependencies

// Initialize installs the handler dependencies.
func Initialize(d *Dependencies) {
	deps = d
}
