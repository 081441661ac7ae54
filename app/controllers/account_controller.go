package controllers

import (
	"encoding/base64"
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/viniciusbm/onboardly/app/models"
	"github.com/viniciusbm/onboardly/app/repository"
	"github.com/viniciusbm/onboardly/internal/pkg/entitlements"
	"github.com/viniciusbm/onboardly/internal/pkg/hcaptcha"
	"github.com/viniciusbm/onboardly/internal/pkg/utils"
)

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	CaptchaToken string `json:"captcha_token"`
}

// HandleRegister creates a pending account from the landing-page signup. The
// chosen password is kept transport-encoded until the payment provider
// confirms checkout and the reconciler creates the identity with it.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}
	if req.Password == "" || len(req.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password_too_short"})
	}
	if hcaptcha.IsEnabled() {
		if ok, err := hcaptcha.Verify(req.CaptchaToken); !ok {
			log.Printf("captcha verification failed for %s: %v", req.Email, err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "captcha_failed"})
		}
	}

	account := models.NewPendingAccount(req.Email, req.Name)
	if account.DisplayName == "" {
		account.DisplayName = models.DisplayNameFromEmail(req.Email)
	}
	if err := account.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "detail": err.Error()})
	}

	if err := deps.Repos.Account.Create(account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email_already_registered"})
		}
		log.Printf("account creation for %s failed: %v", account.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "account_creation_failed"})
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(req.Password))
	if err := deps.Repos.Account.SetPendingCredential(account.ID, encoded); err != nil {
		log.Printf("failed to store pending credential for account %d: %v", account.ID, err)
	}

	if deps.Contacts != nil {
		if err := deps.Contacts.AddContact(account.DisplayName, account.Email); err != nil {
			log.Printf("marketing contact sync for %s failed: %v", account.Email, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(account)
}

// HandleGetAccount returns an account with its subscription record. The main
// diagnostic surface for accounts stuck in pending.
func HandleGetAccount(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_account_id"})
	}

	account, err := deps.Repos.Account.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "account_lookup_failed"})
	}

	resp := fiber.Map{
		"account":      account,
		"has_identity": account.HasIdentity(),
		"avatar_url":   utils.GetGravatarURL(account.Email, 200),
	}
	sub, err := deps.Repos.Subscription.GetByAccountID(account.ID)
	if err == nil {
		resp["subscription"] = sub
		resp["entitlements"] = entitlements.ForAccount(account, sub)
	} else if errors.Is(err, repository.ErrNoSubscription) {
		resp["entitlements"] = entitlements.ForAccount(account, nil)
	} else {
		log.Printf("subscription lookup for account %d failed: %v", account.ID, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
