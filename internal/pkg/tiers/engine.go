package tiers

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/mirocommunity/localtv/app/models"
	"github.com/mirocommunity/localtv/app/repository"
)

// AmountVerifier answers what the gateway currently charges for a
// subscription, in cents. Used to refuse paid switches the money does not
// cover.
type AmountVerifier interface {
	SubscriptionAmountCents(ctx context.Context, profileID string) (int64, error)
}

// SwitchResult reports what a tier switch means for a site. It is computed
// before the admin confirms a downgrade and returned after a switch is
// applied.
type SwitchResult struct {
	Tier            Tier      `json:"tier"`
	WouldLose       []Feature `json:"would_lose"`
	AdminsOverLimit []string  `json:"admins_over_limit"`
	VideosOverLimit int64     `json:"videos_over_limit"`
	NewThemeName    string    `json:"new_theme_name,omitempty"`
}

// IsDowngrade reports whether confirming this switch costs the site
// anything it currently uses.
func (r *SwitchResult) IsDowngrade() bool {
	return len(r.WouldLose) > 0 || len(r.AdminsOverLimit) > 0 || r.VideosOverLimit > 0
}

// Engine applies tier changes to a site's ledger. It only ever reports
// overages; trimming admins or videos is a separate explicit step.
type Engine struct {
	runner      repository.TxRunner
	repos       *repository.Repositories
	verifier    AmountVerifier
	skipPayment bool
}

// NewEngine creates a tier switch engine. verifier may be nil when
// skipPayment is true.
func NewEngine(runner repository.TxRunner, repos *repository.Repositories, verifier AmountVerifier, skipPayment bool) *Engine {
	return &Engine{runner: runner, repos: repos, verifier: verifier, skipPayment: skipPayment}
}

// PreviewSwitch computes the consequences of switching without mutating
// anything.
func (e *Engine) PreviewSwitch(ctx context.Context, siteID uint, targetName string) (*SwitchResult, error) {
	target, err := Resolve(targetName)
	if err != nil {
		return nil, err
	}
	site, err := e.repos.Site.GetByID(siteID)
	if err != nil {
		return nil, err
	}
	return e.computeSwitch(e.repos, site, target)
}

func (e *Engine) computeSwitch(r *repository.Repositories, site *models.Site, target Tier) (*SwitchResult, error) {
	current, err := Resolve(site.TierName)
	if err != nil {
		// A site with a corrupted tier name is treated as basic rather
		// than wedging every switch.
		log.Warnf("site %d has unknown tier %q, treating as %s", site.ID, site.TierName, TierBasic)
		current = Lowest()
	}

	result := &SwitchResult{
		Tier:      target,
		WouldLose: WouldLose(current, target),
	}

	if target.AdminLimit != Unlimited {
		admins, err := r.User.ListAdminsBySite(site.ID)
		if err != nil {
			return nil, err
		}
		if len(admins) > target.AdminLimit {
			for _, u := range admins[target.AdminLimit:] {
				result.AdminsOverLimit = append(result.AdminsOverLimit, u.Username)
			}
		}
	}

	if target.VideoLimit != Unlimited {
		active, err := r.Video.CountActiveBySite(site.ID)
		if err != nil {
			return nil, err
		}
		if over := active - int64(target.VideoLimit); over > 0 {
			result.VideosOverLimit = over
		}
	}

	if !target.HasFeature(FeatureCustomTheme) && site.ThemeName != "" {
		result.NewThemeName = BundledThemeName
	}

	return result, nil
}

// SwitchTier switches the site to the target tier. Switches to a paid tier
// are verified against the gateway unless the deployment skips payments:
// the ledger must carry a subscription whose charged amount equals the
// target cost. Nothing is mutated on any failure.
func (e *Engine) SwitchTier(ctx context.Context, siteID uint, targetName string) (*SwitchResult, error) {
	target, err := Resolve(targetName)
	if err != nil {
		return nil, err
	}
	if target.IsPaid() && !e.skipPayment {
		if err := e.verifyPayment(ctx, siteID, target); err != nil {
			return nil, err
		}
	}
	return e.applySwitch(siteID, target)
}

// ApplyGatewaySwitch switches tiers on behalf of a verified gateway event.
// The event amount is the source of truth there, so no second verification
// round-trip happens.
func (e *Engine) ApplyGatewaySwitch(ctx context.Context, siteID uint, targetName string) (*SwitchResult, error) {
	target, err := Resolve(targetName)
	if err != nil {
		return nil, err
	}
	return e.applySwitch(siteID, target)
}

// ApplyGatewaySwitchTx is ApplyGatewaySwitch for callers that already hold
// a transaction: the switch joins the caller's repositories so it commits
// or rolls back with the rest of their mutations.
func (e *Engine) ApplyGatewaySwitchTx(r *repository.Repositories, siteID uint, targetName string) (*SwitchResult, error) {
	target, err := Resolve(targetName)
	if err != nil {
		return nil, err
	}
	return e.switchIn(r, siteID, target)
}

func (e *Engine) verifyPayment(ctx context.Context, siteID uint, target Tier) error {
	info, err := e.repos.TierInfo.GetBySiteID(siteID)
	if err != nil {
		return err
	}
	if info.PayPalProfileID == "" {
		return fmt.Errorf("%w: no subscription on file for site %d", ErrPaymentMismatch, siteID)
	}
	amount, err := e.verifier.SubscriptionAmountCents(ctx, info.PayPalProfileID)
	if err != nil {
		return fmt.Errorf("verify subscription %s: %w", info.PayPalProfileID, err)
	}
	if amount != target.MonthlyCostCents {
		return fmt.Errorf("%w: subscription pays %d cents, tier %s costs %d",
			ErrPaymentMismatch, amount, target.Name, target.MonthlyCostCents)
	}
	return nil
}

func (e *Engine) applySwitch(siteID uint, target Tier) (*SwitchResult, error) {
	var result *SwitchResult
	err := e.runner.InTx(func(r *repository.Repositories) error {
		var err error
		result, err = e.switchIn(r, siteID, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) switchIn(r *repository.Repositories, siteID uint, target Tier) (*SwitchResult, error) {
	// Lock the ledger row so a concurrent webhook cannot interleave.
	if _, err := r.TierInfo.GetBySiteIDForUpdate(siteID); err != nil {
		return nil, err
	}
	site, err := r.Site.GetByID(siteID)
	if err != nil {
		return nil, err
	}
	result, err := e.computeSwitch(r, site, target)
	if err != nil {
		return nil, err
	}
	if site.TierName == target.Name {
		return result, nil
	}
	if err := r.Site.UpdateTierName(siteID, target.Name); err != nil {
		return nil, err
	}
	return result, nil
}

// BeginFreeTrial authenticates the caller by payment secret, consumes the
// one-time trial and switches the site to the target tier. Re-invocation
// after the trial is consumed just re-runs the switch.
func (e *Engine) BeginFreeTrial(ctx context.Context, siteID uint, targetName, suppliedSecret string) (*SwitchResult, error) {
	target, err := Resolve(targetName)
	if err != nil {
		return nil, err
	}

	var result *SwitchResult
	err = e.runner.InTx(func(r *repository.Repositories) error {
		info, err := r.TierInfo.GetBySiteIDForUpdate(siteID)
		if err != nil {
			return err
		}
		if subtle.ConstantTimeCompare([]byte(suppliedSecret), []byte(info.PaymentSecret)) != 1 {
			return ErrAuthentication
		}

		// Record the first trial attempt permanently so the nightly
		// reconciliation can catch trials that never produce an IPN.
		changed := false
		if info.FreeTrialStartedAt == nil {
			now := time.Now().UTC()
			info.FreeTrialStartedAt = &now
			changed = true
		}
		if info.FreeTrialAvailable {
			info.FreeTrialAvailable = false
			changed = true
		}
		if changed {
			if err := r.TierInfo.Update(info); err != nil {
				return err
			}
		}

		result, err = e.switchIn(r, siteID, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
