package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware enforces a request deadline by cancelling the request
// context. The session core imposes no timeout of its own on collaborator
// calls; this is the surrounding deadline that keeps a hung model call from
// pinning a request forever. Handlers must cooperate via context.Done().
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
