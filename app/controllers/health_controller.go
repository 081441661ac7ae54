package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/viniciusbm/onboardly/internal/pkg/database"
)

// HandleHealth reports service liveness plus DB reachability.
func HandleHealth(c *fiber.Ctx) error {
	dbOK := false
	if db := database.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err == nil && sqlDB.Ping() == nil {
			dbOK = true
		}
	}

	status := fiber.StatusOK
	if !dbOK {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"ok": dbOK,
		"db": dbOK,
	})
}
