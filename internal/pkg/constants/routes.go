package constants

// Static route constants
const (
	HealthRoute        = "/health"
	StripeWebhookRoute = "/webhook/stripe"
	TestWebhookRoute   = "/webhook/test"

	APIGroup = "/api"
	V1Group  = "/v1"

	RegisterRoute = "/register"
	CheckoutRoute = "/checkout"
	AccountsRoute = "/accounts/:id"

	AdminGroup               = "/admin"
	AdminAccountsRoute       = "/accounts"
	AdminDeleteIdentityRoute = "/accounts/:id/identity"
	AdminStatsRoute          = "/stats"
)
