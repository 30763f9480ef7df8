package sitecontext

// Shared Locals/session keys used across controllers and middlewares
const (
	ContextKey  = "SITE_CONTEXT"
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyIsAdmin  = "is_admin"
	KeyLoggedIn = "logged_in"
)
