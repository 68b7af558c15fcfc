// Package ratelimit enforces per-tier request limits using Redis sliding
// windows. Limits are keyed by the subscription tiers from the entitlement
// catalog; unauthenticated traffic gets the free tier's limits.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/coindaily/entitlements/internal/cache"
	"github.com/coindaily/entitlements/internal/models"
)

// Limit defines rate limits for a tier
type Limit struct {
	RequestsPerMinute int `json:"requests_per_minute"`
	RequestsPerDay    int `json:"requests_per_day"` // -1 means unlimited
}

// DefaultLimits defines the default rate limits per tier
var DefaultLimits = map[models.Tier]Limit{
	models.TierFree:       {RequestsPerMinute: 10, RequestsPerDay: 500},
	models.TierBasic:      {RequestsPerMinute: 30, RequestsPerDay: 2000},
	models.TierPremium:    {RequestsPerMinute: 60, RequestsPerDay: 10000},
	models.TierVIP:        {RequestsPerMinute: 120, RequestsPerDay: 50000},
	models.TierEnterprise: {RequestsPerMinute: 300, RequestsPerDay: -1},
}

// RateLimitInfo contains rate limit information for response headers
type RateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"` // Unix timestamp
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	cache  *cache.Redis
	limits map[models.Tier]Limit
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cache *cache.Redis) *RateLimiter {
	return &RateLimiter{
		cache:  cache,
		limits: DefaultLimits,
	}
}

// GetLimitForTier returns the limit for a tier, falling back to free limits
// for unknown tiers.
func (r *RateLimiter) GetLimitForTier(tier models.Tier) Limit {
	if limit, ok := r.limits[tier]; ok {
		return limit
	}
	return r.limits[models.TierFree]
}

// Allow checks if a request should be allowed based on the tier's limits
func (r *RateLimiter) Allow(ctx context.Context, identifier string, tier models.Tier) (bool, error) {
	limit := r.GetLimitForTier(tier)

	minuteKey := fmt.Sprintf("ratelimit:minute:%s", identifier)
	allowed, _, err := r.checkSlidingWindowLimit(ctx, minuteKey, limit.RequestsPerMinute, time.Minute)
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, nil
	}

	if limit.RequestsPerDay > 0 {
		dayKey := fmt.Sprintf("ratelimit:day:%s", identifier)
		allowed, _, err = r.checkSlidingWindowLimit(ctx, dayKey, limit.RequestsPerDay, 24*time.Hour)
		if err != nil {
			return false, err
		}
		if !allowed {
			return false, nil
		}
	}

	return true, nil
}

// GetRemaining returns the remaining requests for an identifier
func (r *RateLimiter) GetRemaining(ctx context.Context, identifier string, tier models.Tier) (*RateLimitInfo, error) {
	limit := r.GetLimitForTier(tier)

	minuteKey := fmt.Sprintf("ratelimit:minute:%s", identifier)
	minuteRemaining, err := r.getSlidingWindowRemaining(ctx, minuteKey, limit.RequestsPerMinute, time.Minute)
	if err != nil {
		return nil, err
	}

	remaining := minuteRemaining
	if limit.RequestsPerDay > 0 {
		dayKey := fmt.Sprintf("ratelimit:day:%s", identifier)
		dayRemaining, err := r.getSlidingWindowRemaining(ctx, dayKey, limit.RequestsPerDay, 24*time.Hour)
		if err != nil {
			return nil, err
		}
		if dayRemaining < remaining {
			remaining = dayRemaining
		}
	}

	now := time.Now()
	reset := now.Truncate(time.Minute).Add(time.Minute).Unix()

	return &RateLimitInfo{
		Limit:     limit.RequestsPerMinute,
		Remaining: remaining,
		Reset:     reset,
	}, nil
}
