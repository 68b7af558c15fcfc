// Package service contains the business logic layered between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coindaily/entitlements/internal/cache"
	"github.com/coindaily/entitlements/internal/clock"
	"github.com/coindaily/entitlements/internal/entitlement"
	"github.com/coindaily/entitlements/internal/models"
	"github.com/coindaily/entitlements/internal/repository"
)

// EntitlementService resolves effective entitlements and manages admin
// overrides. Resolved snapshots are cached briefly in Redis; any override
// write invalidates the user's snapshot so stale grants cannot outlive the
// TTL.
type EntitlementService struct {
	users     *repository.UserRepository
	overrides *repository.OverrideRepository
	cache     *cache.Redis
	cacheTTL  time.Duration
	clock     clock.Clock
}

// NewEntitlementService creates a new entitlement service
func NewEntitlementService(
	users *repository.UserRepository,
	overrides *repository.OverrideRepository,
	redis *cache.Redis,
	cacheTTL time.Duration,
	clk clock.Clock,
) *EntitlementService {
	return &EntitlementService{
		users:     users,
		overrides: overrides,
		cache:     redis,
		cacheTTL:  cacheTTL,
		clock:     clk,
	}
}

// GetEffective returns the user's resolved entitlement snapshot.
func (s *EntitlementService) GetEffective(ctx context.Context, userID string) (*models.EffectiveEntitlement, error) {
	cacheKey := cache.GenerateCacheKey("entitlement", userID)

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var ent models.EffectiveEntitlement
		if err := json.Unmarshal([]byte(cached), &ent); err == nil {
			return &ent, nil
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	override, err := s.overrides.Get(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrOverrideNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	ent, err := entitlement.Resolve(user, override, now)
	if err != nil {
		return nil, err
	}

	// The snapshot must not outlive the override it was resolved from.
	if ttl := snapshotTTL(override, now, s.cacheTTL); ttl > 0 {
		if data, err := json.Marshal(ent); err == nil {
			_ = s.cache.Set(ctx, cacheKey, string(data), ttl)
		}
	}

	return ent, nil
}

// snapshotTTL bounds the cache TTL for a resolved snapshot. A snapshot
// carrying an active override that expires before the configured TTL is
// cached only until that expiry; anything already at or past expiry resolves
// to the baseline and keeps the full TTL.
func snapshotTTL(override *models.UserOverride, now time.Time, configured time.Duration) time.Duration {
	if override == nil || !override.ActiveAt(now) || override.ExpiresAt == nil {
		return configured
	}
	if until := override.ExpiresAt.Sub(now); until < configured {
		return until
	}
	return configured
}

// GetOverride returns the user's admin override, expired or not.
func (s *EntitlementService) GetOverride(ctx context.Context, userID string) (*models.UserOverride, error) {
	return s.overrides.Get(ctx, userID)
}

// SetOverride validates and stores an admin override for a user, then drops
// the user's cached snapshot.
func (s *EntitlementService) SetOverride(ctx context.Context, override *models.UserOverride) error {
	if override.UserID == "" {
		return models.NewValidationError("user_id", "must not be empty")
	}
	if override.TierReplacement != nil && !models.IsValidTier(*override.TierReplacement) {
		return fmt.Errorf("%w: %s", entitlement.ErrUnknownTier, *override.TierReplacement)
	}
	for _, f := range override.AdditionalFeatures {
		if !models.IsValidFeature(f) {
			return models.NewValidationError("additional_features", fmt.Sprintf("unknown feature %q", f))
		}
	}

	// The override must attach to a real user.
	if _, err := s.users.GetByID(ctx, override.UserID); err != nil {
		return err
	}

	if err := s.overrides.Upsert(ctx, override); err != nil {
		return err
	}

	s.invalidate(ctx, override.UserID)
	return nil
}

// ClearOverride removes a user's admin override and drops the cached snapshot.
func (s *EntitlementService) ClearOverride(ctx context.Context, userID string) error {
	if err := s.overrides.Delete(ctx, userID); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	return nil
}

func (s *EntitlementService) invalidate(ctx context.Context, userID string) {
	_ = s.cache.Delete(ctx, cache.GenerateCacheKey("entitlement", userID))
}
