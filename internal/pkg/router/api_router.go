package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/viniciusbm/onboardly/app/controllers"
	"github.com/viniciusbm/onboardly/internal/pkg/constants"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIGroup, limiter.New())

	v1 := api.Group(constants.V1Group)
	v1.Post(constants.RegisterRoute, controllers.HandleRegister)
	v1.Post(constants.CheckoutRoute, controllers.HandleCreateCheckout)
	v1.Get(constants.AccountsRoute, controllers.HandleGetAccount)

	admin := v1.Group(constants.AdminGroup, controllers.AdminTokenMiddleware)
	admin.Get(constants.AdminAccountsRoute, controllers.HandleAdminListAccounts)
	admin.Get(constants.AdminStatsRoute, controllers.HandleAdminStats)
	admin.Delete(constants.AdminDeleteIdentityRoute, controllers.HandleAdminDeleteIdentity)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
