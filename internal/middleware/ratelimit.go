package middleware

import (
	"log"
	"net/http"
	"strconv"

	"github.com/coindaily/entitlements/internal/api/response"
	"github.com/coindaily/entitlements/internal/auth"
	"github.com/coindaily/entitlements/internal/models"
	"github.com/coindaily/entitlements/internal/ratelimit"
)

// TierRateLimit limits requests per subscription tier. Authenticated users
// are keyed by user id; anonymous traffic is keyed by client IP and gets the
// free tier's limits. Redis failures let the request through rather than
// failing the whole API on a cache outage.
func TierRateLimit(limiter *ratelimit.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := getClientIP(r)
			tier := models.TierFree
			if claims := auth.GetClaims(r.Context()); claims != nil {
				identifier = claims.UserID
				tier = claims.Tier
			}

			allowed, err := limiter.Allow(r.Context(), identifier, tier)
			if err != nil {
				log.Printf("[ratelimit] check failed for %s: %v", identifier, err)
				next.ServeHTTP(w, r)
				return
			}

			if info, err := limiter.GetRemaining(r.Context(), identifier, tier); err == nil {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			}

			if !allowed {
				w.Header().Set("Retry-After", "60")
				response.TooManyRequests(w, "Rate limit exceeded. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// X-Forwarded-For first (proxies and load balancers)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// RemoteAddr is "IP:port"
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
