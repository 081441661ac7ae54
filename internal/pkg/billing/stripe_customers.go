package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeCustomerResolver resolves provider customer references to emails via
// the Stripe API. Constructor-injected so the reconciler never touches the
// package-global stripe key.
type StripeCustomerResolver struct {
	api *client.API
}

// NewStripeCustomerResolver builds a resolver with its own API client.
func NewStripeCustomerResolver(secretKey string) *StripeCustomerResolver {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeCustomerResolver{api: api}
}

func (r *StripeCustomerResolver) EmailForCustomer(ctx context.Context, customerRef string) (string, error) {
	params := &stripe.CustomerParams{Params: stripe.Params{Context: ctx}}
	cust, err := r.api.Customers.Get(customerRef, params)
	if err != nil {
		return "", fmt.Errorf("stripe customer %s lookup failed: %w", customerRef, err)
	}
	if cust.Email == "" {
		return "", fmt.Errorf("stripe customer %s has no email", customerRef)
	}
	return cust.Email, nil
}
