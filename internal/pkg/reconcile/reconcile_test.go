package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirocommunity/localtv/app/repository/repositorytest"
	"github.com/mirocommunity/localtv/internal/pkg/tiers"
)

func newTestReconciler(s *repositorytest.Store) *Reconciler {
	repos := s.Repositories()
	engine := tiers.NewEngine(s.Runner(), repos, nil, true)
	return NewReconciler(engine, repos)
}

func TestRunDowngradesExpiredTrials(t *testing.T) {
	longAgo := time.Now().Add(-45 * 24 * time.Hour)
	recently := time.Now().Add(-2 * 24 * time.Hour)

	s := repositorytest.NewStore()
	s.AddSite(1, "expired.example.org", tiers.TierPremium)
	s.Infos[1].FreeTrialStartedAt = &longAgo
	s.AddSite(2, "fresh.example.org", tiers.TierPlus)
	s.Infos[2].FreeTrialStartedAt = &recently
	s.AddSite(3, "paying.example.org", tiers.TierMax)
	s.Infos[3].FreeTrialStartedAt = &longAgo
	s.Infos[3].PayPalProfileID = "I-PAYING"
	r := newTestReconciler(s)

	require.NoError(t, r.Run(context.Background()))

	// Only the trial past its grace period without a subscription drops.
	assert.Equal(t, tiers.TierBasic, s.Sites[1].TierName)
	assert.Equal(t, tiers.TierPlus, s.Sites[2].TierName)
	assert.Equal(t, tiers.TierMax, s.Sites[3].TierName)
}

func TestRunLeavesTierlessTrialAlone(t *testing.T) {
	// Paid tier, no subscription, no recorded trial: reported, not touched.
	s := repositorytest.NewStore()
	s.AddSite(1, "odd.example.org", tiers.TierPlus)
	r := newTestReconciler(s)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, tiers.TierPlus, s.Sites[1].TierName)
}
