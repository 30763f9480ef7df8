package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mirocommunity/localtv/app/repository"
	"github.com/mirocommunity/localtv/internal/pkg/cache"
	"github.com/mirocommunity/localtv/internal/pkg/env"
	"github.com/mirocommunity/localtv/internal/pkg/sitecontext"
	"github.com/mirocommunity/localtv/internal/pkg/tiers"
)

const upgradePageCacheTTL = 60 * time.Second

type tierChoice struct {
	Tier          tiers.Tier          `json:"tier"`
	Current       bool                `json:"current"`
	SwitchMessage string              `json:"switch_message"`
	WouldLose     *tiers.SwitchResult `json:"would_lose,omitempty"`
}

type upgradePage struct {
	SiteID         uint         `json:"site_id"`
	CurrentTier    string       `json:"current_tier"`
	Choices        []tierChoice `json:"choices"`
	OfferFreeTrial bool         `json:"offer_free_trial"`
	PaymentSecret  string       `json:"payment_secret"`
	SkipPayPal     bool         `json:"skip_paypal"`
	PayPalEmail    string       `json:"paypal_email,omitempty"`
	PayPalSandbox  bool         `json:"paypal_sandbox"`
}

// HandleTierUpgrade renders the tier comparison data for the admin upgrade
// page: per-tier downgrade consequences, free trial availability and the
// payment secret the PayPal forms embed.
func HandleTierUpgrade(c *fiber.Ctx) error {
	sc := sitecontext.GetSiteContext(c)
	repos := repository.GetGlobalRepositories()

	cacheKey := fmt.Sprintf("tierpage:%d", sc.SiteID)
	if cached, err := cache.Get(cacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	info, err := repos.TierInfo.GetBySiteID(sc.SiteID)
	if err != nil {
		return fmt.Errorf("load tier info for site %d: %w", sc.SiteID, err)
	}

	engine := tierEngine()
	page := upgradePage{
		SiteID:         sc.SiteID,
		CurrentTier:    sc.TierName,
		OfferFreeTrial: info.FreeTrialAvailable,
		PaymentSecret:  info.PaymentSecret,
		SkipPayPal:     env.SkipPayPal(),
		PayPalEmail:    env.GetEnv("PAYPAL_RECEIVER_EMAIL", ""),
		PayPalSandbox:  env.PayPalSandbox(),
	}

	for _, t := range tiers.All() {
		choice := tierChoice{Tier: t, Current: t.Name == sc.TierName}
		if !choice.Current {
			preview, err := engine.PreviewSwitch(c.Context(), sc.SiteID, t.Name)
			if err != nil {
				return err
			}
			choice.WouldLose = preview
			if preview.IsDowngrade() {
				choice.SwitchMessage = "Switch to this"
			} else {
				choice.SwitchMessage = "Upgrade Your Account"
			}
		}
		page.Choices = append(page.Choices, choice)
	}

	if raw, err := json.Marshal(page); err == nil {
		if err := cache.Set(cacheKey, string(raw), upgradePageCacheTTL); err != nil {
			log.Warnf("cache tier page for site %d: %v", sc.SiteID, err)
		}
	}
	return c.JSON(page)
}

// HandleDowngradeConfirm computes what a switch would cost the site so the
// admin can confirm. Nothing is mutated here.
func HandleDowngradeConfirm(c *fiber.Ctx) error {
	sc := sitecontext.GetSiteContext(c)
	target := strings.TrimSpace(c.FormValue("target_tier_name"))

	preview, err := tierEngine().PreviewSwitch(c.Context(), sc.SiteID, target)
	if err != nil {
		if errors.Is(err, tiers.ErrUnknownTier) {
			// In some weird error case, redirect back to the tiers page.
			return c.Redirect("/admin/upgrade", fiber.StatusSeeOther)
		}
		return err
	}

	info, err := repository.GetGlobalRepositories().TierInfo.GetBySiteID(sc.SiteID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"tier_name":                  preview.Tier.Name,
		"would_lose":                 preview.WouldLose,
		"would_lose_admin_usernames": preview.AdminsOverLimit,
		"videos_over_limit":          preview.VideosOverLimit,
		"new_theme_name":             preview.NewThemeName,
		"payment_secret":             info.PaymentSecret,
		"paypal_sandbox":             env.PayPalSandbox(),
		"paypal_email":               env.GetEnv("PAYPAL_RECEIVER_EMAIL", ""),
	})
}

// HandleConfirmedChangeTier applies an admin-confirmed tier switch. It
// exists so the PayPal form has somewhere to POST when the deployment runs
// without PayPal; with payments enabled the switch happens via IPN instead.
func HandleConfirmedChangeTier(c *fiber.Ctx) error {
	if !env.SkipPayPal() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "direct tier changes are disabled when payments are live",
		})
	}

	sc := sitecontext.GetSiteContext(c)
	target := strings.TrimSpace(c.FormValue("target_tier_name"))

	result, err := tierEngine().SwitchTier(c.Context(), sc.SiteID, target)
	if err != nil {
		if errors.Is(err, tiers.ErrUnknownTier) {
			return c.Redirect("/admin/upgrade", fiber.StatusSeeOther)
		}
		return err
	}

	invalidateTierPage(sc.SiteID)
	if site, err := repository.GetGlobalRepositories().Site.GetByID(sc.SiteID); err == nil {
		go notifyTierChange(site, result)
	}
	return c.Redirect("/admin/upgrade", fiber.StatusSeeOther)
}

// HandleApplyDowngradeRemediation trims resources after a confirmed
// downgrade: demotes excess admins, hides videos over the limit and resets
// a no-longer-allowed custom theme. Explicitly separate from the switch so
// nothing is removed without the admin asking for it.
func HandleApplyDowngradeRemediation(c *fiber.Ctx) error {
	sc := sitecontext.GetSiteContext(c)

	tier, err := tiers.Resolve(sc.TierName)
	if err != nil {
		return err
	}
	engine := tierEngine()

	demoted, err := engine.PushAdminsDown(sc.SiteID, tier.AdminLimit)
	if err != nil {
		return err
	}
	hidden, err := engine.HideVideosAboveLimit(sc.SiteID, tier.VideoLimit)
	if err != nil {
		return err
	}
	newTheme, err := engine.SwitchToBundledThemeIfNeeded(sc.SiteID, tier)
	if err != nil {
		return err
	}

	invalidateTierPage(sc.SiteID)
	return c.JSON(fiber.Map{
		"demoted_admins": demoted,
		"hidden_videos":  hidden,
		"new_theme_name": newTheme,
	})
}

// HandleBeginFreeTrial is where PayPal sends the admin to start a free
// trial. The payment secret in the path authenticates the redirect; the
// IPN for the trial subscription arrives separately in the background.
func HandleBeginFreeTrial(c *fiber.Ctx) error {
	sc := sitecontext.GetSiteContext(c)
	secret := c.Params("payment_secret")
	target := strings.TrimSpace(c.Query("target_tier_name"))

	result, err := tierEngine().BeginFreeTrial(c.Context(), sc.SiteID, target, secret)
	if err != nil {
		switch {
		case errors.Is(err, tiers.ErrAuthentication):
			return c.Status(fiber.StatusForbidden).SendString(
				"You are accessing this URL with invalid parameters.")
		case errors.Is(err, tiers.ErrUnknownTier):
			return c.Status(fiber.StatusBadRequest).SendString(
				"Something went wrong switching your site level.")
		default:
			return err
		}
	}

	invalidateTierPage(sc.SiteID)
	if site, err := repository.GetGlobalRepositories().Site.GetByID(sc.SiteID); err == nil {
		go notifyTierChange(site, result)
	}
	return c.Redirect("/admin/upgrade", fiber.StatusSeeOther)
}

// HandlePayPalReturn is where PayPal sends admins after a successful
// payment. The tier itself changes when the IPN arrives; this endpoint
// only checks the auth token and sends the admin back.
func HandlePayPalReturn(c *fiber.Ctx) error {
	auth := c.FormValue("auth")
	if auth == "" {
		auth = c.Query("auth")
	}
	if auth == "" {
		return c.Status(fiber.StatusForbidden).SendString("You failed to submit an 'auth' token.")
	}
	return c.Redirect("/admin/upgrade", fiber.StatusSeeOther)
}

func invalidateTierPage(siteID uint) {
	if err := cache.Delete(fmt.Sprintf("tierpage:%d", siteID)); err != nil {
		log.Warnf("invalidate tier page cache for site %d: %v", siteID, err)
	}
}
