package controllers

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/viniciusbm/onboardly/app/models"
	"github.com/viniciusbm/onboardly/app/repository"
	"github.com/viniciusbm/onboardly/internal/pkg/env"
	"github.com/viniciusbm/onboardly/internal/pkg/metrics/counter"
)

// AdminTokenMiddleware guards administrative routes with a shared token.
func AdminTokenMiddleware(c *fiber.Ctx) error {
	expected := env.GetEnv("ADMIN_TOKEN", "")
	if expected == "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin_api_disabled"})
	}
	got := c.Get("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	return c.Next()
}

// HandleAdminListAccounts pages through accounts for operators.
func HandleAdminListAccounts(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit > 200 {
		limit = 200
	}

	accounts, err := deps.Repos.Account.List(offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "account_list_failed"})
	}
	total, err := deps.Repos.Account.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "account_count_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"accounts": accounts,
		"total":    total,
	})
}

// HandleAdminDeleteIdentity removes an account's provider identity. This is
// the administrative path outside the reconciler; the reconciler itself never
// deletes or reassigns identities.
func HandleAdminDeleteIdentity(c *fiber.Ctx) error {
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
	if !account.HasIdentity() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "account_has_no_identity"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := deps.Identity.Delete(ctx, *account.IdentityRef); err != nil {
		log.Printf("admin identity deletion for account %d failed: %v", account.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "identity_deletion_failed"})
	}

	account.IdentityRef = nil
	account.Status = models.AccountStatusPending
	if err := deps.Repos.Account.Update(account); err != nil {
		log.Printf("failed to clear identity ref on account %d after deletion: %v", account.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "account_update_failed"})
	}

	log.Printf("admin deleted identity for account %d (%s)", account.ID, account.Email)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"deleted": true})
}

// HandleAdminStats exposes delivery and notification counters for operators.
func HandleAdminStats(c *fiber.Ctx) error {
	webhookEvents, emailsSent, err := counter.Snapshot()
	if err != nil {
		log.Printf("counter snapshot failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_unavailable"})
	}

	total, err := deps.Repos.Account.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "account_count_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"accounts_total": total,
		"webhook_events": webhookEvents,
		"emails_sent":    emailsSent,
	})
}
