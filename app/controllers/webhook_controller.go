package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mirocommunity/localtv/app/repository"
	"github.com/mirocommunity/localtv/internal/pkg/cache"
	"github.com/mirocommunity/localtv/internal/pkg/payments"
	"github.com/mirocommunity/localtv/internal/pkg/security"
	"gorm.io/gorm"
)

const ipnDedupeTTL = 24 * time.Hour

// HandlePayPalIPN receives PayPal Instant Payment Notifications. The
// payment secret in the path binds the delivery to one site; the payload
// is validated with the gateway before any field of it is trusted. The
// endpoint never errors on bad event data, only on infrastructure
// failures, so PayPal retries reach us again.
func HandlePayPalIPN(c *fiber.Ctx) error {
	secret := c.Params("payment_secret")
	rawBody := append([]byte(nil), c.BodyRaw()...)

	info, err := repository.GetGlobalRepositories().TierInfo.GetByPaymentSecret(secret)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusForbidden).SendString(
				"You submitted something invalid to this IPN handler.")
		}
		return err
	}
	if !security.SecretsEqual(secret, info.PaymentSecret) {
		return c.Status(fiber.StatusForbidden).SendString(
			"You submitted something invalid to this IPN handler.")
	}

	// Fast duplicate check before the postback round-trip. The persisted
	// event log below is the authoritative dedupe.
	sum := sha256.Sum256(rawBody)
	bodyKey := "ipn:" + hex.EncodeToString(sum[:])
	if fresh, err := cache.SetNX(bodyKey, 1, ipnDedupeTTL); err == nil && !fresh {
		return c.JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	verified, err := ipnVerifier().VerifyIPN(c.Context(), rawBody)
	if err != nil {
		log.Errorf("IPN postback verification for site %d failed: %v", info.SiteID, err)
		releaseIPNKey(bodyKey)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "verification_unavailable",
		})
	}

	event, err := payments.ParseIPN(rawBody)
	if err != nil {
		if errors.Is(err, payments.ErrNotSubscriptionEvent) {
			return c.JSON(fiber.Map{"ok": true, "ignored": true})
		}
		log.Warnf("unparseable IPN for site %d: %v", info.SiteID, err)
		return c.JSON(fiber.Map{"ok": true, "ignored": true})
	}
	event.Flagged = !verified

	if err := webhookProcessor().HandleEvent(c.Context(), info.SiteID, event); err != nil {
		releaseIPNKey(bodyKey)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "event_persist_failed",
		})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// releaseIPNKey drops the fast-path dedupe key after a failed delivery so
// the gateway's retry reaches processing instead of the duplicate answer.
func releaseIPNKey(bodyKey string) {
	if err := cache.Delete(bodyKey); err != nil {
		log.Warnf("release IPN dedupe key %s: %v", bodyKey, err)
	}
}
