package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/mirocommunity/localtv/app/controllers"
	"github.com/mirocommunity/localtv/app/repository"
	"github.com/mirocommunity/localtv/internal/pkg/env"
	"github.com/mirocommunity/localtv/internal/pkg/middleware"
	"github.com/mirocommunity/localtv/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	repos := repository.GetGlobalRepositories()

	// Resolve the target site for every request before anything else.
	app.Use(middleware.SiteContextMiddleware(repos))

	h.registerWebhookRoutes(app)
	h.registerPublicRoutes(app)
	h.registerAdminRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

// registerWebhookRoutes installs gateway callbacks. No CSRF here: the
// payment secret in the path plus gateway postback verification
// authenticate these.
func (h HttpRouter) registerWebhookRoutes(app *fiber.App) {
	app.Post("/webhooks/paypal/:payment_secret", controllers.HandlePayPalIPN)
	app.All("/admin/paypal_return", controllers.HandlePayPalReturn)
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Post("/login", controllers.HandleLogin)
	group.Post("/logout", middleware.RequireAuth, controllers.HandleLogout)
	group.Post("/submit", controllers.HandleSubmitVideo)
}

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireSiteAdmin)

	// Tier management
	adminGroup.Get("/upgrade", controllers.HandleTierUpgrade)
	adminGroup.Post("/downgrade_confirm", controllers.HandleDowngradeConfirm)
	adminGroup.Post("/confirmed_change_tier", controllers.HandleConfirmedChangeTier)
	adminGroup.Post("/apply_downgrade_remediation", controllers.HandleApplyDowngradeRemediation)
	adminGroup.Get("/begin_free_trial/:payment_secret", controllers.HandleBeginFreeTrial)

	// Video moderation
	adminGroup.Get("/bulk_edit", controllers.HandleBulkEditList)
	adminGroup.Post("/bulk_edit", controllers.HandleBulkEditUpdate)
}
