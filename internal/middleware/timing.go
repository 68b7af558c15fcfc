package middleware

import (
	"context"
	"net/http"
	"time"
)

type startTimeKey struct{}

// Timing records the instant a request entered the middleware chain so
// downstream code can report elapsed time without threading it by hand.
func Timing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), startTimeKey{}, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestStartTime returns when the request entered the chain. Outside the
// chain it falls back to now, yielding a zero elapsed time.
func GetRequestStartTime(ctx context.Context) time.Time {
	if start, ok := ctx.Value(startTimeKey{}).(time.Time); ok {
		return start
	}
	return time.Now()
}

// GetResponseTimeMs returns milliseconds elapsed since the request started.
func GetResponseTimeMs(ctx context.Context) int64 {
	return time.Since(GetRequestStartTime(ctx)).Milliseconds()
}
