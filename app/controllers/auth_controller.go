package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mirocommunity/localtv/app/repository"
	"github.com/mirocommunity/localtv/internal/pkg/session"
	"github.com/mirocommunity/localtv/internal/pkg/sitecontext"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// HandleLogin authenticates a site member and stores the user id in the
// session.
func HandleLogin(c *fiber.Ctx) error {
	sc := sitecontext.GetSiteContext(c)
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password required"})
	}

	user, err := repository.GetGlobalRepositories().User.GetBySiteAndUsername(sc.SiteID, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
		}
		return err
	}
	if !user.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	if err := session.SetSessionValue(c, sitecontext.KeyUserID, strconv.FormatUint(uint64(user.ID), 10)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true, "username": user.Username, "is_admin": user.IsAdmin})
}

// HandleLogout drops the session's user binding.
func HandleLogout(c *fiber.Ctx) error {
	if err := session.SetSessionValue(c, sitecontext.KeyUserID, ""); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}
