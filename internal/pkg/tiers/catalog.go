package tiers

import (
	"fmt"
	"strings"
)

// Feature is a capability a tier unlocks for a site.
type Feature string

const (
	FeatureCustomCSS    Feature = "css"
	FeatureCustomDomain Feature = "customdomain"
	FeatureCustomTheme  Feature = "customtheme"
	FeatureAdvertising  Feature = "advertising"
)

const (
	TierBasic   = "basic"
	TierPlus    = "plus"
	TierPremium = "premium"
	TierMax     = "max"
)

// Unlimited marks an admin or video limit that is not enforced.
const Unlimited = -1

// Tier is one subscription level. The catalog is compiled-in configuration;
// prices are integer cents.
type Tier struct {
	Name             string
	DisplayName      string
	MonthlyCostCents int64
	AdminLimit       int
	VideoLimit       int
	Features         []Feature
}

// HasFeature reports whether the tier grants the given capability.
func (t Tier) HasFeature(f Feature) bool {
	for _, have := range t.Features {
		if have == f {
			return true
		}
	}
	return false
}

// DollarCost renders the monthly price for PayPal form fields ("15.00").
func (t Tier) DollarCost() string {
	return fmt.Sprintf("%d.%02d", t.MonthlyCostCents/100, t.MonthlyCostCents%100)
}

// IsPaid reports whether the tier carries a monthly charge.
func (t Tier) IsPaid() bool {
	return t.MonthlyCostCents > 0
}

// catalog is ordered from lowest to highest tier. New sites start on the
// first entry.
var catalog = []Tier{
	{
		Name:             TierBasic,
		DisplayName:      "Basic",
		MonthlyCostCents: 0,
		AdminLimit:       1,
		VideoLimit:       500,
	},
	{
		Name:             TierPlus,
		DisplayName:      "Plus",
		MonthlyCostCents: 1500,
		AdminLimit:       5,
		VideoLimit:       1000,
		Features:         []Feature{FeatureCustomCSS, FeatureCustomDomain},
	},
	{
		Name:             TierPremium,
		DisplayName:      "Premium",
		MonthlyCostCents: 3500,
		AdminLimit:       Unlimited,
		VideoLimit:       5000,
		Features:         []Feature{FeatureCustomCSS, FeatureCustomDomain, FeatureCustomTheme},
	},
	{
		Name:             TierMax,
		DisplayName:      "Max",
		MonthlyCostCents: 7500,
		AdminLimit:       Unlimited,
		VideoLimit:       25000,
		Features:         []Feature{FeatureCustomCSS, FeatureCustomDomain, FeatureCustomTheme, FeatureAdvertising},
	},
}

// All returns the catalog ordered from lowest to highest tier.
func All() []Tier {
	out := make([]Tier, len(catalog))
	copy(out, catalog)
	return out
}

// Names returns the valid tier names in catalog order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, t := range catalog {
		names[i] = t.Name
	}
	return names
}

// Lowest returns the tier every site starts on and falls back to after a
// cancellation.
func Lowest() Tier {
	return catalog[0]
}

// Resolve looks a tier up by name.
func Resolve(name string) (Tier, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, t := range catalog {
		if t.Name == n {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("%w: %q", ErrUnknownTier, name)
}

// ResolveByCost returns the tier whose monthly price exactly equals the
// given amount in cents. Callers decide what to do when nothing matches.
func ResolveByCost(cents int64) (Tier, error) {
	for _, t := range catalog {
		if t.MonthlyCostCents == cents {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("%w: %d cents", ErrNoMatchingTier, cents)
}

// WouldLose returns the features the current tier has that the target tier
// lacks. Empty on upgrades and lateral switches.
func WouldLose(current, target Tier) []Feature {
	var lost []Feature
	for _, f := range current.Features {
		if !target.HasFeature(f) {
			lost = append(lost, f)
		}
	}
	return lost
}
