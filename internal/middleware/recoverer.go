package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/coindaily/entitlements/internal/api/response"
)

// Recoverer turns a handler panic into a 500 response instead of tearing
// down the connection, logging the stack under the request's correlation id.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[http] panic on %s %s id=%s: %v\n%s",
					r.Method, r.URL.Path, GetRequestID(r.Context()), rec, debug.Stack())
				response.InternalError(w, "An unexpected error occurred")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
