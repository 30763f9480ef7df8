package tiers

import "errors"

var (
	// ErrUnknownTier means a tier name is not in the catalog. Callers must
	// not mutate the ledger when they see it.
	ErrUnknownTier = errors.New("unknown tier")

	// ErrNoMatchingTier means no catalog tier has the given monthly cost.
	ErrNoMatchingTier = errors.New("no tier matching amount")

	// ErrAuthentication means a supplied payment secret did not match the
	// site's ledger.
	ErrAuthentication = errors.New("payment secret mismatch")

	// ErrPaymentMismatch means a paid switch was requested but the
	// gateway-verified subscription amount does not cover the target tier.
	ErrPaymentMismatch = errors.New("verified payment amount does not match tier cost")
)
