package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/viniciusbm/onboardly/app/controllers"
	"github.com/viniciusbm/onboardly/internal/pkg/constants"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get(constants.HealthRoute, controllers.HandleHealth)

	// Provider webhooks. The test endpoint only answers in dev mode.
	app.Post(constants.StripeWebhookRoute, controllers.HandleStripeWebhook)
	app.Post(constants.TestWebhookRoute, controllers.HandleTestWebhook)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
