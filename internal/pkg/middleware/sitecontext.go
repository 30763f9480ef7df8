package middleware

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mirocommunity/localtv/app/repository"
	"github.com/mirocommunity/localtv/internal/pkg/session"
	"github.com/mirocommunity/localtv/internal/pkg/sitecontext"
	"gorm.io/gorm"
)

// SiteContextMiddleware resolves the target site from the request host and
// the user from the session, and stores both for downstream handlers.
// Unknown hosts get a 404; nothing below this middleware runs without a
// resolved site.
func SiteContextMiddleware(repos *repository.Repositories) fiber.Handler {
	return func(c *fiber.Ctx) error {
		site, err := repos.Site.GetByHost(c.Hostname())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "unknown site",
				})
			}
			return err
		}

		sc := sitecontext.SiteContext{
			SiteID:   site.ID,
			Host:     site.Host,
			TierName: site.TierName,
		}

		if raw, err := session.GetSessionValue(c, sitecontext.KeyUserID); err == nil && raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
				if user, err := repos.User.GetByID(uint(id)); err == nil && user.SiteID == site.ID && user.IsActive {
					sc.UserID = user.ID
					sc.Username = user.Username
					sc.IsLoggedIn = true
					sc.IsAdmin = user.IsAdmin
				}
			}
		}

		sitecontext.SetSiteContext(c, sc)
		return c.Next()
	}
}
