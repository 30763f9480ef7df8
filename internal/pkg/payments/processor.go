package payments

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/mirocommunity/localtv/app/models"
	"github.com/mirocommunity/localtv/app/repository"
	"github.com/mirocommunity/localtv/internal/pkg/tiers"
)

type handlerFunc func(ctx context.Context, siteID uint, ev *Event) error

// Processor applies gateway subscription events to site ledgers. Handlers
// are registered once at construction; there is no hidden subscriber list.
// Every delivery is recorded in the processed-event log first, so retried
// or replayed notifications are applied exactly once, and each handler runs
// its ledger mutations in a single transaction.
type Processor struct {
	engine   *tiers.Engine
	runner   repository.TxRunner
	repos    *repository.Repositories
	handlers map[EventKind]handlerFunc
}

// NewProcessor creates a webhook processor and wires its dispatch table.
func NewProcessor(engine *tiers.Engine, runner repository.TxRunner, repos *repository.Repositories) *Processor {
	p := &Processor{engine: engine, runner: runner, repos: repos}
	p.handlers = map[EventKind]handlerFunc{
		KindSignup:    p.handleSignup,
		KindModify:    p.handleSignup,
		KindCancel:    p.handleCancel,
		KindEndOfTerm: p.handleCancel,
	}
	return p
}

// HandleEvent processes one event for the site the webhook URL resolved.
// Processing failures are logged and recorded, never escalated: a webhook
// listener must survive bad data.
func (p *Processor) HandleEvent(ctx context.Context, siteID uint, ev *Event) error {
	record := &models.PaymentEvent{
		SiteID:         siteID,
		Kind:           string(ev.Kind),
		SubscriptionID: ev.SubscriptionID,
		AmountCents:    ev.AmountCents,
		TxnID:          ev.TxnID,
		EventKey:       ev.Key(),
		Flagged:        ev.Flagged,
		PayloadRaw:     ev.Raw,
	}
	created, stored, err := p.repos.PaymentEvent.CreateIfNotExists(record)
	if err != nil {
		return fmt.Errorf("record payment event: %w", err)
	}
	if !created {
		log.Infof("duplicate payment event %s for site %d, skipping", ev.Key(), siteID)
		return nil
	}

	if ev.Flagged {
		log.Warnf("gateway flagged event %s for site %d as invalid, dropping", ev.Key(), siteID)
		return p.repos.PaymentEvent.MarkProcessed(stored.ID, "gateway flagged invalid")
	}

	handler, ok := p.handlers[ev.Kind]
	if !ok {
		return p.repos.PaymentEvent.MarkProcessed(stored.ID, fmt.Sprintf("unhandled kind %s", ev.Kind))
	}

	if err := handler(ctx, siteID, ev); err != nil {
		log.Errorf("payment event %s for site %d failed: %v", ev.Key(), siteID, err)
		return p.repos.PaymentEvent.MarkProcessed(stored.ID, err.Error())
	}
	return p.repos.PaymentEvent.MarkProcessed(stored.ID, "")
}

// handleSignup covers signup and modify: record the subscription id, then
// make the tier match what the subscription pays. Both mutations commit or
// roll back together.
func (p *Processor) handleSignup(ctx context.Context, siteID uint, ev *Event) error {
	return p.runner.InTx(func(r *repository.Repositories) error {
		info, err := r.TierInfo.GetBySiteIDForUpdate(siteID)
		if err != nil {
			return err
		}
		if info.PayPalProfileID != "" && info.PayPalProfileID != ev.SubscriptionID {
			log.Warnf("site %d: subscription id changed from %s to %s",
				siteID, info.PayPalProfileID, ev.SubscriptionID)
		}
		if err := r.TierInfo.SetSubscription(siteID, ev.SubscriptionID); err != nil {
			return err
		}

		site, err := r.Site.GetByID(siteID)
		if err != nil {
			return err
		}
		current, err := tiers.Resolve(site.TierName)
		if err == nil && current.MonthlyCostCents == ev.AmountCents {
			return nil
		}

		target, err := tiers.ResolveByCost(ev.AmountCents)
		if err != nil {
			// Data-quality gap: the subscription pays an amount no tier
			// costs. The nightly reconciliation picks these up.
			log.Warnf("site %d: %v, leaving tier at %s", siteID, err, site.TierName)
			return nil
		}
		_, err = p.engine.ApplyGatewaySwitchTx(r, siteID, target.Name)
		return err
	})
}

// handleCancel covers cancel and end-of-term: drop to the lowest tier and
// clear the subscription linkage in one transaction, so the ledger never
// ends up half-cancelled. Reapplying it is a no-op by construction.
func (p *Processor) handleCancel(ctx context.Context, siteID uint, ev *Event) error {
	return p.runner.InTx(func(r *repository.Repositories) error {
		info, err := r.TierInfo.GetBySiteIDForUpdate(siteID)
		if err != nil {
			return err
		}
		if info.PayPalProfileID != "" && info.PayPalProfileID != ev.SubscriptionID {
			// The secret in the webhook URL already bound the event to this
			// site; a mismatched id is logged for reconciliation, not refused.
			log.Warnf("site %d: cancel for subscription %s but ledger has %s",
				siteID, ev.SubscriptionID, info.PayPalProfileID)
		}

		if _, err := p.engine.ApplyGatewaySwitchTx(r, siteID, tiers.Lowest().Name); err != nil {
			return err
		}
		return r.TierInfo.ClearSubscription(siteID)
	})
}
