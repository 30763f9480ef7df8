package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/mirocommunity/localtv/app/models"
	"github.com/mirocommunity/localtv/app/repository"
	"github.com/mirocommunity/localtv/internal/pkg/database"
	"github.com/mirocommunity/localtv/internal/pkg/env"
	"github.com/mirocommunity/localtv/internal/pkg/mail"
	"github.com/mirocommunity/localtv/internal/pkg/payments"
	"github.com/mirocommunity/localtv/internal/pkg/tiers"
)

// tierEngine builds the switch engine on the global DB handle. Payment
// verification is wired unless the deployment skips PayPal.
func tierEngine() *tiers.Engine {
	db := database.GetDB()
	repos := repository.GetGlobalRepositories()
	var verifier tiers.AmountVerifier
	if !env.SkipPayPal() {
		verifier = payments.NewPayPalClientFromEnv()
	}
	return tiers.NewEngine(repository.NewTxRunner(db), repos, verifier, env.SkipPayPal())
}

// webhookProcessor builds the IPN processor on the global DB handle.
func webhookProcessor() *payments.Processor {
	return payments.NewProcessor(tierEngine(),
		repository.NewTxRunner(database.GetDB()), repository.GetGlobalRepositories())
}

// ipnVerifier returns the delivery validator used before any IPN field is
// trusted.
func ipnVerifier() payments.Verifier {
	if env.SkipPayPal() {
		return payments.SkipVerifier{}
	}
	return payments.NewPayPalClientFromEnv()
}

// notifyTierChange mails every site admin about a confirmed tier switch.
// Failures are logged; a switch never fails because mail is down.
func notifyTierChange(site *models.Site, result *tiers.SwitchResult) {
	admins, err := repository.GetGlobalRepositories().User.ListAdminsBySite(site.ID)
	if err != nil {
		log.Errorf("tier change mail: list admins for site %d: %v", site.ID, err)
		return
	}
	subject := fmt.Sprintf("%s is now on the %s level", site.Name, result.Tier.DisplayName)
	body := fmt.Sprintf(
		"Your site %s has been switched to the %s level ($%s/month).\r\n",
		site.Host, result.Tier.DisplayName, result.Tier.DollarCost(),
	)
	for _, admin := range admins {
		if admin.Email == "" {
			continue
		}
		if err := mail.SendMail(admin.Email, subject, body); err != nil {
			log.Errorf("tier change mail to %s failed: %v", admin.Email, err)
		}
	}
}
