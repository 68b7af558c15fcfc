package models

import "time"

// FeatureName identifies a gated platform capability. The set is closed:
// admin overrides may only grant features named here, so an unknown key is a
// compile-time error rather than a silent no-op.
type FeatureName string

// Feature constants
const (
	FeatureCreateArticles  FeatureName = "create_articles"
	FeatureCreateVideos    FeatureName = "create_videos"
	FeatureCreatePodcasts  FeatureName = "create_podcasts"
	FeatureHostPodcast     FeatureName = "host_podcast"
	FeaturePromotePosts    FeatureName = "promote_posts"
	FeatureCreateAirdrops  FeatureName = "create_airdrops"
	FeatureBoostContent    FeatureName = "boost_content"
	FeatureStakeTokens     FeatureName = "stake_tokens"
	FeatureAIAssist        FeatureName = "ai_assist"
	FeaturePrioritySupport FeatureName = "priority_support"
)

// AllFeatures lists every known feature name.
var AllFeatures = []FeatureName{
	FeatureCreateArticles,
	FeatureCreateVideos,
	FeatureCreatePodcasts,
	FeatureHostPodcast,
	FeaturePromotePosts,
	FeatureCreateAirdrops,
	FeatureBoostContent,
	FeatureStakeTokens,
	FeatureAIAssist,
	FeaturePrioritySupport,
}

// IsValidFeature checks if a feature name is part of the closed set.
func IsValidFeature(f FeatureName) bool {
	for _, known := range AllFeatures {
		if f == known {
			return true
		}
	}
	return false
}

// LimitName identifies a numeric entitlement limit.
type LimitName string

// Limit constants
const (
	LimitArticlesPerDay LimitName = "max_articles_per_day"
	LimitVideosPerDay   LimitName = "max_videos_per_day"
	LimitPodcastsPerDay LimitName = "max_podcasts_per_day"
	LimitDraftCount     LimitName = "max_draft_count"
	LimitMaxFollowers   LimitName = "max_followers"
)

// AllLimits lists every known limit name.
var AllLimits = []LimitName{
	LimitArticlesPerDay,
	LimitVideosPerDay,
	LimitPodcastsPerDay,
	LimitDraftCount,
	LimitMaxFollowers,
}

// UserOverride is an administrator-authored exception to a user's tier-derived
// entitlement. A tier replacement fully supersedes the nominal tier; additional
// features are granted on top of whichever baseline applies. An override past
// its expiry becomes inert but is never deleted, so its audit history survives.
type UserOverride struct {
	UserID             string        `json:"user_id" db:"user_id"`
	TierReplacement    *Tier         `json:"tier_replacement,omitempty" db:"tier_replacement"`
	AdditionalFeatures []FeatureName `json:"additional_features" db:"additional_features"`
	ExpiresAt          *time.Time    `json:"expires_at,omitempty" db:"expires_at"`
	CreatedBy          string        `json:"created_by" db:"created_by"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// ActiveAt reports whether the override is in force at the given instant.
func (o *UserOverride) ActiveAt(now time.Time) bool {
	if o == nil {
		return false
	}
	return o.ExpiresAt == nil || o.ExpiresAt.After(now)
}

// EffectiveEntitlement is the resolved capability set for a user at query
// time. It is derived and ephemeral: recomputed on every query, never
// persisted, and identical for identical inputs at the same instant.
type EffectiveEntitlement struct {
	Tier            Tier                 `json:"tier"`
	Features        map[FeatureName]bool `json:"features"`
	Limits          map[LimitName]int    `json:"limits"`
	SupportPriority int                  `json:"support_priority"`
}

// HasFeature reports whether the resolved entitlement grants a feature.
func (e *EffectiveEntitlement) HasFeature(f FeatureName) bool {
	return e.Features[f]
}

// Limit returns the resolved value for a numeric limit.
func (e *EffectiveEntitlement) Limit(l LimitName) int {
	return e.Limits[l]
}
