package bootstrap

import (
	"errors"
	"log"

	"github.com/mirocommunity/localtv/app/models"
	"github.com/mirocommunity/localtv/app/repository"
	"github.com/mirocommunity/localtv/internal/pkg/env"
	"github.com/mirocommunity/localtv/internal/pkg/security"
	"github.com/mirocommunity/localtv/internal/pkg/tiers"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureDefaultSite provisions the site named by SITE_HOST on first boot:
// the site record on the lowest tier, its subscription ledger with a fresh
// payment secret, and an initial admin account. Subsequent boots are
// no-ops.
func EnsureDefaultSite(repos *repository.Repositories) error {
	host := env.GetEnv("SITE_HOST", "localhost")

	if _, err := repos.Site.GetByHost(host); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	site := &models.Site{
		Name:     env.GetEnv("SITE_NAME", host),
		Host:     host,
		TierName: tiers.Lowest().Name,
	}
	if err := repos.Site.Create(site); err != nil {
		return err
	}

	secret, err := security.GeneratePaymentSecret()
	if err != nil {
		return err
	}
	info := &models.TierInfo{
		SiteID:             site.ID,
		PaymentSecret:      secret,
		FreeTrialAvailable: true,
	}
	if err := repos.TierInfo.Create(info); err != nil {
		return err
	}

	adminUser := env.GetEnv("SITE_ADMIN_USER", "admin")
	adminPass := env.GetEnv("SITE_ADMIN_PASSWORD", "")
	if adminPass == "" {
		log.Printf("SITE_ADMIN_PASSWORD not set, skipping admin account for %s", host)
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		SiteID:       site.ID,
		Username:     adminUser,
		Email:        env.GetEnv("SITE_ADMIN_EMAIL", ""),
		PasswordHash: string(hash),
		IsAdmin:      true,
		IsActive:     true,
	}
	if err := repos.User.Create(admin); err != nil {
		return err
	}

	log.Printf("Provisioned site %s on the %s level", host, site.TierName)
	return nil
}
