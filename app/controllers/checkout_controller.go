package controllers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"

	"github.com/viniciusbm/onboardly/app/repository"
	"github.com/viniciusbm/onboardly/internal/pkg/env"
)

type checkoutRequest struct {
	AccountID  uint   `json:"account_id"`
	PriceID    string `json:"price_id"`
	Plan       string `json:"plan"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// HandleCreateCheckout opens a provider checkout session for a registered
// account. The metadata carries the account id and the transport-encoded
// credential so the webhook path can correlate the completed checkout back to
// this registration.
func HandleCreateCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}
	if req.AccountID == 0 || req.PriceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "account_id and price_id are required"})
	}

	account, err := deps.Repos.Account.GetByID(req.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "account_lookup_failed"})
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = env.GetEnv("CHECKOUT_SUCCESS_URL", "")
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = env.GetEnv("CHECKOUT_CANCEL_URL", "")
	}

	metadata := map[string]string{
		"user_id": strconv.FormatUint(uint64(account.ID), 10),
	}
	if req.Plan != "" {
		metadata["plan"] = req.Plan
	}
	if account.PendingCredentialSecret != nil && *account.PendingCredentialSecret != "" {
		metadata["senha"] = *account.PendingCredentialSecret
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:    stripe.String(successURL),
		CancelURL:     stripe.String(cancelURL),
		CustomerEmail: stripe.String(account.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: metadata,
	}

	sess, err := deps.Stripe.CheckoutSessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			log.Printf("stripe API error creating checkout for account %d: code=%s message=%s", account.ID, stripeErr.Code, stripeErr.Msg)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "stripe_error", "detail": string(stripeErr.Code)})
		}
		log.Printf("checkout session creation for account %d failed: %v", account.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "checkout_creation_failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id":   sess.ID,
		"checkout_url": sess.URL,
	})
}
