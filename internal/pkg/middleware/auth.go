package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mirocommunity/localtv/internal/pkg/sitecontext"
)

// RequireAuth ensures a logged-in web session; redirects to /login if missing.
func RequireAuth(c *fiber.Ctx) error {
	if !sitecontext.GetSiteContext(c).IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	return c.Next()
}

// RequireSiteAdmin ensures the logged-in user administers the current site.
func RequireSiteAdmin(c *fiber.Ctx) error {
	sc := sitecontext.GetSiteContext(c)
	if !sc.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	if !sc.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "site admin required",
		})
	}
	return c.Next()
}
