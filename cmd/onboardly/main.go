package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/viniciusbm/onboardly/app/controllers"
	"github.com/viniciusbm/onboardly/app/repository"
	"github.com/viniciusbm/onboardly/internal/pkg/billing"
	"github.com/viniciusbm/onboardly/internal/pkg/cache"
	"github.com/viniciusbm/onboardly/internal/pkg/database"
	"github.com/viniciusbm/onboardly/internal/pkg/env"
	"github.com/viniciusbm/onboardly/internal/pkg/identity"
	"github.com/viniciusbm/onboardly/internal/pkg/jobqueue"
	"github.com/viniciusbm/onboardly/internal/pkg/mail"
	"github.com/viniciusbm/onboardly/internal/pkg/marketing"
	"github.com/viniciusbm/onboardly/internal/pkg/router"
)

func main() {
	app, queue := NewApplication()
	defer queue.Stop()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *jobqueue.Queue) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repos := repository.NewRepositories(database.GetDB())

	idp, err := identity.NewFirebaseProvider(context.Background())
	if err != nil {
		log.Fatalf("identity provider setup failed: %v", err)
	}

	mailer := mail.NewSMTPSender()
	contacts := marketing.NewClientFromEnv()

	queue := jobqueue.NewQueue(cache.GetClient(), mailer, contacts, 2)
	queue.Start()
	dispatcher := jobqueue.NewDispatcher(queue, mailer, contacts)

	stripeAPI := &client.API{}
	stripeAPI.Init(env.GetEnv("STRIPE_SECRET_KEY", ""), nil)

	customers := billing.NewStripeCustomerResolver(env.GetEnv("STRIPE_SECRET_KEY", ""))

	policy := billing.DefaultPolicy()
	policy.BlockOnFirstInvoiceFailure = env.GetEnv("BLOCK_ON_FIRST_INVOICE_FAILURE", "false") == "true"

	reconciler := billing.NewReconciler(
		repos.Account,
		repos.Subscription,
		idp,
		dispatcher,
		dispatcher,
		customers,
		policy,
	)
	normalizer := billing.NewNormalizer(env.GetEnv("STRIPE_WEBHOOK_SECRET", ""))

	controllers.Initialize(&controllers.Dependencies{
		Repos:      repos,
		Normalizer: normalizer,
		Reconciler: reconciler,
		Identity:   idp,
		Contacts:   dispatcher,
		Stripe:     stripeAPI,
	})

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 1048576, // webhooks and API calls only, 1 MiB is plenty
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// ROUTER
	router.InstallRouter(app)

	return app, queue
}
