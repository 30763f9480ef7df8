package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mirocommunity/localtv/app/repository"
	"github.com/mirocommunity/localtv/internal/pkg/bootstrap"
	"github.com/mirocommunity/localtv/internal/pkg/cache"
	"github.com/mirocommunity/localtv/internal/pkg/database"
	"github.com/mirocommunity/localtv/internal/pkg/env"
	"github.com/mirocommunity/localtv/internal/pkg/payments"
	"github.com/mirocommunity/localtv/internal/pkg/reconcile"
	"github.com/mirocommunity/localtv/internal/pkg/router"
	"github.com/mirocommunity/localtv/internal/pkg/tiers"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	repos := repository.GetGlobalRepositories()
	if err := bootstrap.EnsureDefaultSite(repos); err != nil {
		log.Fatalf("site provisioning failed: %v", err)
	}

	// Nightly tier/payment sanity check.
	var verifier tiers.AmountVerifier
	if !env.SkipPayPal() {
		verifier = payments.NewPayPalClientFromEnv()
	}
	engine := tiers.NewEngine(repository.NewTxRunner(database.GetDB()), repos, verifier, env.SkipPayPal())
	if err := reconcile.NewReconciler(engine, repos).Start(); err != nil {
		log.Fatalf("reconciliation schedule failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName: "localtv",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
