package sitecontext

import "github.com/gofiber/fiber/v2"

// SiteContext identifies the site and user a request acts on. Every
// operation takes its target site from here; there is no ambient
// "current site" lookup anywhere else.
type SiteContext struct {
	SiteID     uint   `json:"site_id"`
	Host       string `json:"host"`
	TierName   string `json:"tier_name"`
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
}

// GetSiteContext retrieves the site context from fiber context.
// Returns a zero context if none is set.
func GetSiteContext(c *fiber.Ctx) SiteContext {
	if ctx := c.Locals(ContextKey); ctx != nil {
		return ctx.(SiteContext)
	}
	return SiteContext{}
}

// SetSiteContext stores the resolved context for downstream handlers.
func SetSiteContext(c *fiber.Ctx, sc SiteContext) {
	c.Locals(ContextKey, sc)
}

// SiteID returns the current request's site id, or 0 if unresolved.
func SiteID(c *fiber.Ctx) uint {
	return GetSiteContext(c).SiteID
}

// IsAdmin checks if the current user administers the current site.
func IsAdmin(c *fiber.Ctx) bool {
	return GetSiteContext(c).IsAdmin
}
