package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/mirocommunity/localtv/app/repository"
	"github.com/mirocommunity/localtv/internal/pkg/mail"
	"github.com/mirocommunity/localtv/internal/pkg/tiers"
	"github.com/robfig/cron/v3"
)

// trialGracePeriod is how long a site may sit on a paid tier backed only
// by a started free trial before the nightly job pulls it back down.
const trialGracePeriod = 30 * 24 * time.Hour

// Reconciler is the nightly safety net for webhook events that were
// silently dropped or never delivered: it re-checks every site's tier
// against its actual payment state.
type Reconciler struct {
	engine *tiers.Engine
	repos  *repository.Repositories
	cron   *cron.Cron
}

// NewReconciler creates the nightly reconciliation job.
func NewReconciler(engine *tiers.Engine, repos *repository.Repositories) *Reconciler {
	return &Reconciler{
		engine: engine,
		repos:  repos,
		cron:   cron.New(),
	}
}

// Start schedules the job at 03:00 server time every day.
func (r *Reconciler) Start() error {
	_, err := r.cron.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()
		if err := r.Run(ctx); err != nil {
			log.Errorf("nightly tier reconciliation failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (r *Reconciler) Stop() {
	<-r.cron.Stop().Done()
}

// Run executes one reconciliation pass. Split out so tests and an
// operator CLI can trigger it directly.
func (r *Reconciler) Run(ctx context.Context) error {
	if err := r.expireUnpaidTrials(ctx); err != nil {
		return err
	}
	r.reportStuckEvents()
	return nil
}

// expireUnpaidTrials downgrades paid-tier sites that have no subscription
// on file once their trial grace period is over. Sites still inside the
// grace period are left alone; the IPN may just be slow.
func (r *Reconciler) expireUnpaidTrials(ctx context.Context) error {
	var paidNames []string
	for _, t := range tiers.All() {
		if t.IsPaid() {
			paidNames = append(paidNames, t.Name)
		}
	}

	infos, err := r.repos.TierInfo.ListPaidWithoutSubscription(paidNames)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-trialGracePeriod)
	for _, info := range infos {
		if info.FreeTrialStartedAt == nil {
			log.Warnf("site %d sits on a paid tier with no subscription and no trial on record", info.SiteID)
			continue
		}
		if info.FreeTrialStartedAt.After(cutoff) {
			continue
		}
		log.Warnf("site %d: trial from %s never produced a subscription, downgrading to %s",
			info.SiteID, info.FreeTrialStartedAt.Format(time.RFC3339), tiers.Lowest().Name)
		if _, err := r.engine.ApplyGatewaySwitch(ctx, info.SiteID, tiers.Lowest().Name); err != nil {
			log.Errorf("downgrade site %d: %v", info.SiteID, err)
			continue
		}
		r.notifyDowngrade(info.SiteID)
	}
	return nil
}

// notifyDowngrade mails the site's admins that the trial ran out.
func (r *Reconciler) notifyDowngrade(siteID uint) {
	site, err := r.repos.Site.GetByID(siteID)
	if err != nil {
		log.Errorf("load site %d for downgrade mail: %v", siteID, err)
		return
	}
	admins, err := r.repos.User.ListAdminsBySite(siteID)
	if err != nil {
		log.Errorf("list admins for site %d: %v", siteID, err)
		return
	}
	subject := fmt.Sprintf("%s has been moved to the %s level", site.Name, tiers.Lowest().DisplayName)
	body := fmt.Sprintf(
		"The trial period for %s ended without a confirmed subscription, so the site is back on the %s level.\r\n",
		site.Host, tiers.Lowest().DisplayName,
	)
	for _, admin := range admins {
		if admin.Email == "" {
			continue
		}
		if err := mail.SendMail(admin.Email, subject, body); err != nil {
			log.Errorf("trial downgrade mail to %s failed: %v", admin.Email, err)
		}
	}
}

// reportStuckEvents surfaces webhook deliveries that were recorded but
// never finished processing.
func (r *Reconciler) reportStuckEvents() {
	stuck, err := r.repos.PaymentEvent.ListUnprocessedOlderThan(time.Now().Add(-time.Hour))
	if err != nil {
		log.Errorf("list stuck payment events: %v", err)
		return
	}
	for _, ev := range stuck {
		log.Warnf("payment event %s for site %d recorded %s but never processed",
			ev.EventKey, ev.SiteID, ev.CreatedAt.Format(time.RFC3339))
	}
}
