// Package entitlement owns the tier catalog and the resolver that merges
// tier baselines with per-user administrator overrides into an effective
// entitlement snapshot.
package entitlement

import (
	"errors"
	"fmt"

	"github.com/coindaily/entitlements/internal/models"
)

// ErrUnknownTier is returned when a tier value is not in the catalog. An
// unknown tier is a programming error, never silently defaulted to free.
var ErrUnknownTier = errors.New("unknown tier")

// Baseline is the catalog entry for one tier: its feature flags, numeric
// limits and support priority rank.
type Baseline struct {
	Features        map[models.FeatureName]bool
	Limits          map[models.LimitName]int
	SupportPriority int
}

// catalog is the static, versioned tier table. Every tier has a complete
// entry; features and limits grow monotonically with the tier order.
var catalog = map[models.Tier]Baseline{
	models.TierFree: {
		Features: map[models.FeatureName]bool{
			models.FeatureCreateArticles:  false,
			models.FeatureCreateVideos:    false,
			models.FeatureCreatePodcasts:  false,
			models.FeatureHostPodcast:     false,
			models.FeaturePromotePosts:    false,
			models.FeatureCreateAirdrops:  false,
			models.FeatureBoostContent:    false,
			models.FeatureStakeTokens:     true,
			models.FeatureAIAssist:        false,
			models.FeaturePrioritySupport: false,
		},
		Limits: map[models.LimitName]int{
			models.LimitArticlesPerDay: 0,
			models.LimitVideosPerDay:   0,
			models.LimitPodcastsPerDay: 0,
			models.LimitDraftCount:     5,
			models.LimitMaxFollowers:   0,
		},
		SupportPriority: 1,
	},
	models.TierBasic: {
		Features: map[models.FeatureName]bool{
			models.FeatureCreateArticles:  true,
			models.FeatureCreateVideos:    false,
			models.FeatureCreatePodcasts:  false,
			models.FeatureHostPodcast:     false,
			models.FeaturePromotePosts:    false,
			models.FeatureCreateAirdrops:  false,
			models.FeatureBoostContent:    true,
			models.FeatureStakeTokens:     true,
			models.FeatureAIAssist:        false,
			models.FeaturePrioritySupport: false,
		},
		Limits: map[models.LimitName]int{
			models.LimitArticlesPerDay: 1,
			models.LimitVideosPerDay:   0,
			models.LimitPodcastsPerDay: 0,
			models.LimitDraftCount:     10,
			models.LimitMaxFollowers:   200,
		},
		SupportPriority: 2,
	},
	models.TierPremium: {
		Features: map[models.FeatureName]bool{
			models.FeatureCreateArticles:  true,
			models.FeatureCreateVideos:    false,
			models.FeatureCreatePodcasts:  false,
			models.FeatureHostPodcast:     false,
			models.FeaturePromotePosts:    true,
			models.FeatureCreateAirdrops:  true,
			models.FeatureBoostContent:    true,
			models.FeatureStakeTokens:     true,
			models.FeatureAIAssist:        true,
			models.FeaturePrioritySupport: false,
		},
		Limits: map[models.LimitName]int{
			models.LimitArticlesPerDay: 2,
			models.LimitVideosPerDay:   0,
			models.LimitPodcastsPerDay: 0,
			models.LimitDraftCount:     20,
			models.LimitMaxFollowers:   1000,
		},
		SupportPriority: 3,
	},
	models.TierVIP: {
		Features: map[models.FeatureName]bool{
			models.FeatureCreateArticles:  true,
			models.FeatureCreateVideos:    true,
			models.FeatureCreatePodcasts:  true,
			models.FeatureHostPodcast:     false,
			models.FeaturePromotePosts:    true,
			models.FeatureCreateAirdrops:  true,
			models.FeatureBoostContent:    true,
			models.FeatureStakeTokens:     true,
			models.FeatureAIAssist:        true,
			models.FeaturePrioritySupport: true,
		},
		Limits: map[models.LimitName]int{
			models.LimitArticlesPerDay: 10,
			models.LimitVideosPerDay:   3,
			models.LimitPodcastsPerDay: 1,
			models.LimitDraftCount:     50,
			models.LimitMaxFollowers:   10000,
		},
		SupportPriority: 4,
	},
	models.TierEnterprise: {
		Features: map[models.FeatureName]bool{
			models.FeatureCreateArticles:  true,
			models.FeatureCreateVideos:    true,
			models.FeatureCreatePodcasts:  true,
			models.FeatureHostPodcast:     true,
			models.FeaturePromotePosts:    true,
			models.FeatureCreateAirdrops:  true,
			models.FeatureBoostContent:    true,
			models.FeatureStakeTokens:     true,
			models.FeatureAIAssist:        true,
			models.FeaturePrioritySupport: true,
		},
		Limits: map[models.LimitName]int{
			models.LimitArticlesPerDay: 25,
			models.LimitVideosPerDay:   10,
			models.LimitPodcastsPerDay: 5,
			models.LimitDraftCount:     100,
			models.LimitMaxFollowers:   100000,
		},
		SupportPriority: 5,
	},
}

func baselineFor(tier models.Tier) (Baseline, error) {
	base, ok := catalog[tier]
	if !ok {
		return Baseline{}, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	return base, nil
}

// FeaturesFor returns a copy of the baseline feature flags for a tier.
func FeaturesFor(tier models.Tier) (map[models.FeatureName]bool, error) {
	base, err := baselineFor(tier)
	if err != nil {
		return nil, err
	}
	features := make(map[models.FeatureName]bool, len(base.Features))
	for name, enabled := range base.Features {
		features[name] = enabled
	}
	return features, nil
}

// LimitsFor returns a copy of the baseline numeric limits for a tier.
func LimitsFor(tier models.Tier) (map[models.LimitName]int, error) {
	base, err := baselineFor(tier)
	if err != nil {
		return nil, err
	}
	limits := make(map[models.LimitName]int, len(base.Limits))
	for name, value := range base.Limits {
		limits[name] = value
	}
	return limits, nil
}

// SupportPriorityFor returns the support priority rank for a tier.
func SupportPriorityFor(tier models.Tier) (int, error) {
	base, err := baselineFor(tier)
	if err != nil {
		return 0, err
	}
	return base.SupportPriority, nil
}
