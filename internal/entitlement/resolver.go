package entitlement

import (
	"time"

	"github.com/coindaily/entitlements/internal/models"
)

// Resolve merges the tier catalog with an optional per-user override into the
// effective entitlement snapshot for a user. It is a pure function of its
// inputs; the instant is only consulted to decide whether the override has
// expired.
//
// An active tier replacement fully supersedes the user's nominal tier: the
// replacement tier's baseline is used wholesale, never merged field by field.
// Additional features can only grant, never revoke. Support priority and
// numeric limits come solely from the resolved baseline tier. An override
// whose expiry has passed is ignored entirely; that is not an error.
func Resolve(user *models.User, override *models.UserOverride, now time.Time) (*models.EffectiveEntitlement, error) {
	tier := user.Tier
	var extra []models.FeatureName

	if override.ActiveAt(now) {
		if override.TierReplacement != nil {
			tier = *override.TierReplacement
		}
		extra = override.AdditionalFeatures
	}

	base, err := baselineFor(tier)
	if err != nil {
		return nil, err
	}

	features := make(map[models.FeatureName]bool, len(base.Features))
	for name, enabled := range base.Features {
		features[name] = enabled
	}
	for _, name := range extra {
		if models.IsValidFeature(name) {
			features[name] = true
		}
	}

	limits := make(map[models.LimitName]int, len(base.Limits))
	for name, value := range base.Limits {
		limits[name] = value
	}

	return &models.EffectiveEntitlement{
		Tier:            tier,
		Features:        features,
		Limits:          limits,
		SupportPriority: base.SupportPriority,
	}, nil
}
