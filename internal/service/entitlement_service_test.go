package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coindaily/entitlements/internal/models"
)

// A cached snapshot must expire no later than the override that shaped it;
// otherwise a temporary grant would keep serving after its expiry for up to
// the configured TTL.
func TestSnapshotTTLClampedToOverrideExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	configured := 30 * time.Second
	expiry := func(d time.Duration) *time.Time {
		at := now.Add(d)
		return &at
	}

	tests := []struct {
		name     string
		override *models.UserOverride
		want     time.Duration
	}{
		{
			name:     "no override keeps the configured TTL",
			override: nil,
			want:     configured,
		},
		{
			name:     "permanent override keeps the configured TTL",
			override: &models.UserOverride{UserID: "user-1"},
			want:     configured,
		},
		{
			name:     "override expiring within the TTL shortens it",
			override: &models.UserOverride{UserID: "user-1", ExpiresAt: expiry(10 * time.Second)},
			want:     10 * time.Second,
		},
		{
			name:     "override expiring after the TTL keeps the configured TTL",
			override: &models.UserOverride{UserID: "user-1", ExpiresAt: expiry(time.Hour)},
			want:     configured,
		},
		{
			name:     "expired override resolves to baseline, full TTL",
			override: &models.UserOverride{UserID: "user-1", ExpiresAt: expiry(-time.Minute)},
			want:     configured,
		},
		{
			name:     "override expiring this instant is inert, full TTL",
			override: &models.UserOverride{UserID: "user-1", ExpiresAt: &now},
			want:     configured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snapshotTTL(tt.override, now, configured))
		})
	}
}
