package tiers

import (
	"context"

	"github.com/mirocommunity/localtv/app/repository/repositorytest"
)

func newTestEngine(s *repositorytest.Store, verifier AmountVerifier, skipPayment bool) *Engine {
	return NewEngine(s.Runner(), s.Repositories(), verifier, skipPayment)
}

// fakeVerifier answers a fixed amount for every subscription.
type fakeVerifier struct {
	amount int64
	err    error
	calls  int
}

func (f *fakeVerifier) SubscriptionAmountCents(_ context.Context, _ string) (int64, error) {
	f.calls++
	return f.amount, f.err
}
