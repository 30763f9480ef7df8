package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirocommunity/localtv/app/repository/repositorytest"
	"github.com/mirocommunity/localtv/internal/pkg/tiers"
)

func TestHandleEventSignupSwitchesTier(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierBasic)
	p := newTestProcessor(s)

	ev := &Event{Kind: KindSignup, SubscriptionID: "I-XYZ1", AmountCents: 7500, TxnID: "T1"}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))

	assert.Equal(t, tiers.TierMax, s.Site().TierName)
	assert.Equal(t, "I-XYZ1", s.Info().PayPalProfileID)

	record := s.LastEvent()
	require.NotNil(t, record)
	assert.NotNil(t, record.ProcessedAt)
	assert.Empty(t, record.ProcessingError)
}

func TestHandleEventModifyResolvesByCost(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierMax)
	s.Info().PayPalProfileID = "I-XYZ1"
	p := newTestProcessor(s)

	ev := &Event{Kind: KindModify, SubscriptionID: "I-XYZ1", AmountCents: 1500, TxnID: "T2"}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))

	assert.Equal(t, tiers.TierPlus, s.Site().TierName)
}

func TestHandleEventSignupAmountMatchesCurrentTier(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierPremium)
	p := newTestProcessor(s)

	// The subscription pays exactly what the current tier costs; only the
	// linkage is recorded.
	ev := &Event{Kind: KindSignup, SubscriptionID: "I-NEW", AmountCents: 3500, TxnID: "T3"}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))

	assert.Equal(t, tiers.TierPremium, s.Site().TierName)
	assert.Equal(t, "I-NEW", s.Info().PayPalProfileID)
}

func TestHandleEventSignupUnmatchableAmountLeavesTier(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierPlus)
	p := newTestProcessor(s)

	ev := &Event{Kind: KindSignup, SubscriptionID: "I-ODD", AmountCents: 1234, TxnID: "T4"}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))

	// No tier costs that amount; the tier stays put and the linkage is
	// still recorded for the nightly pass to investigate.
	assert.Equal(t, tiers.TierPlus, s.Site().TierName)
	assert.Equal(t, "I-ODD", s.Info().PayPalProfileID)

	record := s.LastEvent()
	require.NotNil(t, record)
	assert.NotNil(t, record.ProcessedAt)
	assert.Empty(t, record.ProcessingError)
}

func TestHandleEventCancel(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierMax)
	s.Info().PayPalProfileID = "I-XYZ1"
	p := newTestProcessor(s)

	ev := &Event{Kind: KindCancel, SubscriptionID: "I-XYZ1"}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))

	assert.Equal(t, tiers.TierBasic, s.Site().TierName)
	assert.Empty(t, s.Info().PayPalProfileID)
	assert.Nil(t, s.Info().PaymentDueDate)
}

func TestHandleEventEndOfTermEqualsCancel(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierPlus)
	s.Info().PayPalProfileID = "I-XYZ1"
	p := newTestProcessor(s)

	ev := &Event{Kind: KindEndOfTerm, SubscriptionID: "I-XYZ1", TxnID: "T5"}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))

	assert.Equal(t, tiers.TierBasic, s.Site().TierName)
	assert.Empty(t, s.Info().PayPalProfileID)
}

func TestHandleEventCancelMismatchedSubscriptionStillApplies(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierMax)
	s.Info().PayPalProfileID = "I-OLD"
	p := newTestProcessor(s)

	// The webhook URL secret already bound the delivery to this site; a
	// stale subscription id is logged, not refused.
	ev := &Event{Kind: KindCancel, SubscriptionID: "I-OTHER"}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))

	assert.Equal(t, tiers.TierBasic, s.Site().TierName)
	assert.Empty(t, s.Info().PayPalProfileID)
}

func TestHandleEventCancelIsIdempotent(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierMax)
	s.Info().PayPalProfileID = "I-XYZ1"
	p := newTestProcessor(s)

	ev := &Event{Kind: KindCancel, SubscriptionID: "I-XYZ1", TxnID: "T6"}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))

	assert.Equal(t, tiers.TierBasic, s.Site().TierName)
	assert.Len(t, s.Events, 1, "replayed delivery must not create a second record")
}

func TestHandleEventCancelPartialFailureLeavesLedgerConsistent(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierMax)
	s.Info().PayPalProfileID = "I-XYZ1"
	s.ClearSubscriptionErr = assert.AnError
	p := newTestProcessor(s)

	ev := &Event{Kind: KindCancel, SubscriptionID: "I-XYZ1", TxnID: "T11"}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))

	// The downgrade and the linkage clear commit together or not at all:
	// a failed clear must not leave the site on basic with a live
	// subscription id.
	assert.Equal(t, tiers.TierMax, s.Site().TierName)
	assert.Equal(t, "I-XYZ1", s.Info().PayPalProfileID)

	record := s.LastEvent()
	require.NotNil(t, record)
	assert.NotNil(t, record.ProcessedAt)
	assert.NotEmpty(t, record.ProcessingError)
}

func TestHandleEventSignupPartialFailureRollsBackLinkage(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierBasic)
	s.UpdateTierNameErr = assert.AnError
	p := newTestProcessor(s)

	ev := &Event{Kind: KindSignup, SubscriptionID: "I-XYZ1", AmountCents: 7500, TxnID: "T12"}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))

	// A failed tier switch takes the just-recorded subscription id down
	// with it.
	assert.Equal(t, tiers.TierBasic, s.Site().TierName)
	assert.Empty(t, s.Info().PayPalProfileID)
}

func TestHandleEventDuplicateSkipsHandler(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierBasic)
	p := newTestProcessor(s)

	ev := &Event{Kind: KindSignup, SubscriptionID: "I-XYZ1", AmountCents: 7500, TxnID: "T7"}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))
	assert.Equal(t, tiers.TierMax, s.Site().TierName)

	// Manually knock the tier back; a replay of the same delivery must not
	// re-run the handler.
	s.Site().TierName = tiers.TierBasic
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))
	assert.Equal(t, tiers.TierBasic, s.Site().TierName)
	assert.Len(t, s.Events, 1)
}

func TestHandleEventFlaggedNeverMutates(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierBasic)
	p := newTestProcessor(s)

	ev := &Event{Kind: KindSignup, SubscriptionID: "I-XYZ1", AmountCents: 7500, TxnID: "T8", Flagged: true}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))

	assert.Equal(t, tiers.TierBasic, s.Site().TierName)
	assert.Empty(t, s.Info().PayPalProfileID)

	record := s.LastEvent()
	require.NotNil(t, record)
	assert.True(t, record.Flagged)
	assert.NotNil(t, record.ProcessedAt)
	assert.Equal(t, "gateway flagged invalid", record.ProcessingError)
}

func TestHandleEventUnknownKindIsRecorded(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierBasic)
	p := newTestProcessor(s)

	ev := &Event{Kind: EventKind("subscription-paused"), SubscriptionID: "I-XYZ1", TxnID: "T9"}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))

	assert.Equal(t, tiers.TierBasic, s.Site().TierName)
	record := s.LastEvent()
	require.NotNil(t, record)
	assert.NotNil(t, record.ProcessedAt)
	assert.Contains(t, record.ProcessingError, "unhandled kind")
}

func TestHandleEventHandlerErrorIsSwallowed(t *testing.T) {
	s := repositorytest.NewSingleSite(tiers.TierBasic)
	p := newTestProcessor(s)
	delete(s.Sites, 1) // site lookup inside the handler will fail

	ev := &Event{Kind: KindSignup, SubscriptionID: "I-XYZ1", AmountCents: 7500, TxnID: "T10"}
	require.NoError(t, p.HandleEvent(context.Background(), 1, ev))

	record := s.LastEvent()
	require.NotNil(t, record)
	assert.NotNil(t, record.ProcessedAt)
	assert.NotEmpty(t, record.ProcessingError)
	assert.Empty(t, s.Info().PayPalProfileID)
}
