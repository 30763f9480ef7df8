package tiers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "basic", want: TierBasic},
		{in: "plus", want: TierPlus},
		{in: "premium", want: TierPremium},
		{in: "max", want: TierMax},
		{in: "  Premium  ", want: TierPremium},
		{in: "MAX", want: TierMax},
	}

	for _, tt := range tests {
		got, err := Resolve(tt.in)
		require.NoError(t, err, "Resolve(%q)", tt.in)
		assert.Equal(t, tt.want, got.Name)
	}
}

func TestResolveUnknown(t *testing.T) {
	for _, name := range []string{"", "gold", "basic+"} {
		_, err := Resolve(name)
		assert.ErrorIs(t, err, ErrUnknownTier, "Resolve(%q)", name)
	}
}

func TestResolveByCost(t *testing.T) {
	for _, tier := range All() {
		got, err := ResolveByCost(tier.MonthlyCostCents)
		require.NoError(t, err)
		assert.Equal(t, tier.Name, got.Name)
	}

	_, err := ResolveByCost(1234)
	assert.ErrorIs(t, err, ErrNoMatchingTier)
}

func TestCatalogOrderedByCost(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)
	assert.Equal(t, Lowest().Name, all[0].Name)

	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].MonthlyCostCents, all[i-1].MonthlyCostCents,
			"tier %s must cost more than %s", all[i].Name, all[i-1].Name)
	}
}

func TestCatalogCostsAreUnique(t *testing.T) {
	seen := map[int64]string{}
	for _, tier := range All() {
		prev, dup := seen[tier.MonthlyCostCents]
		require.False(t, dup, "tiers %s and %s share a price, ResolveByCost would be ambiguous", prev, tier.Name)
		seen[tier.MonthlyCostCents] = tier.Name
	}
}

func TestHigherTiersKeepLowerFeatures(t *testing.T) {
	// The catalog is cumulative: upgrading never loses a feature.
	all := All()
	for i := 1; i < len(all); i++ {
		assert.Empty(t, WouldLose(all[i-1], all[i]),
			"upgrade %s -> %s must not lose features", all[i-1].Name, all[i].Name)
	}
}

func TestWouldLose(t *testing.T) {
	max, _ := Resolve(TierMax)
	plus, _ := Resolve(TierPlus)
	basic, _ := Resolve(TierBasic)

	assert.ElementsMatch(t,
		[]Feature{FeatureCustomTheme, FeatureAdvertising},
		WouldLose(max, plus))
	assert.ElementsMatch(t,
		[]Feature{FeatureCustomCSS, FeatureCustomDomain, FeatureCustomTheme, FeatureAdvertising},
		WouldLose(max, basic))
	assert.Empty(t, WouldLose(basic, max))
	assert.Empty(t, WouldLose(plus, plus))
}

func TestDollarCost(t *testing.T) {
	tests := []struct {
		tier string
		want string
	}{
		{tier: TierBasic, want: "0.00"},
		{tier: TierPlus, want: "15.00"},
		{tier: TierPremium, want: "35.00"},
		{tier: TierMax, want: "75.00"},
	}
	for _, tt := range tests {
		tier, err := Resolve(tt.tier)
		require.NoError(t, err)
		assert.Equal(t, tt.want, tier.DollarCost())
		assert.Equal(t, tt.want != "0.00", tier.IsPaid())
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{TierBasic, TierPlus, TierPremium, TierMax}, Names())
}

func TestResolveErrorWrapping(t *testing.T) {
	_, err := Resolve("silver")
	var wrapped error = err
	assert.True(t, errors.Is(wrapped, ErrUnknownTier))
	assert.Contains(t, err.Error(), "silver")
}
