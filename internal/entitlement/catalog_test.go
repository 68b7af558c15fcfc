package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coindaily/entitlements/internal/models"
)

func TestCatalogCompleteness(t *testing.T) {
	for _, tier := range models.AllTiers {
		features, err := FeaturesFor(tier)
		require.NoError(t, err)
		limits, err := LimitsFor(tier)
		require.NoError(t, err)
		priority, err := SupportPriorityFor(tier)
		require.NoError(t, err)

		assert.Len(t, features, len(models.AllFeatures), "tier %s feature set incomplete", tier)
		assert.Len(t, limits, len(models.AllLimits), "tier %s limit set incomplete", tier)
		assert.Greater(t, priority, 0)
	}
}

func TestCatalogUnknownTier(t *testing.T) {
	_, err := FeaturesFor(models.Tier("platinum"))
	assert.ErrorIs(t, err, ErrUnknownTier)

	_, err = LimitsFor(models.Tier(""))
	assert.ErrorIs(t, err, ErrUnknownTier)

	_, err = SupportPriorityFor(models.Tier("gold"))
	assert.ErrorIs(t, err, ErrUnknownTier)
}

// Every feature true under a lower tier stays true under every higher tier,
// and every numeric limit is non-decreasing up the tier order.
func TestCatalogMonotonicity(t *testing.T) {
	for i := 0; i < len(models.AllTiers)-1; i++ {
		lower, higher := models.AllTiers[i], models.AllTiers[i+1]

		lowFeatures, err := FeaturesFor(lower)
		require.NoError(t, err)
		highFeatures, err := FeaturesFor(higher)
		require.NoError(t, err)
		for name, enabled := range lowFeatures {
			if enabled {
				assert.True(t, highFeatures[name], "%s grants %s but %s does not", lower, name, higher)
			}
		}

		lowLimits, err := LimitsFor(lower)
		require.NoError(t, err)
		highLimits, err := LimitsFor(higher)
		require.NoError(t, err)
		for name, value := range lowLimits {
			assert.GreaterOrEqual(t, highLimits[name], value, "limit %s shrinks from %s to %s", name, lower, higher)
		}

		lowPriority, err := SupportPriorityFor(lower)
		require.NoError(t, err)
		highPriority, err := SupportPriorityFor(higher)
		require.NoError(t, err)
		assert.Greater(t, highPriority, lowPriority)
	}
}

func TestCatalogReturnsCopies(t *testing.T) {
	features, err := FeaturesFor(models.TierFree)
	require.NoError(t, err)
	features[models.FeatureCreateVideos] = true

	again, err := FeaturesFor(models.TierFree)
	require.NoError(t, err)
	assert.False(t, again[models.FeatureCreateVideos])

	limits, err := LimitsFor(models.TierFree)
	require.NoError(t, err)
	limits[models.LimitDraftCount] = 999

	limitsAgain, err := LimitsFor(models.TierFree)
	require.NoError(t, err)
	assert.Equal(t, 5, limitsAgain[models.LimitDraftCount])
}

func TestTierPriorityOrder(t *testing.T) {
	for i := 0; i < len(models.AllTiers)-1; i++ {
		assert.Less(t,
			models.TierPriority(models.AllTiers[i]),
			models.TierPriority(models.AllTiers[i+1]))
	}
	assert.Equal(t, 0, models.TierPriority(models.Tier("unknown")))
	assert.True(t, models.TierVIP.AtLeast(models.TierPremium))
	assert.False(t, models.TierBasic.AtLeast(models.TierVIP))
}
