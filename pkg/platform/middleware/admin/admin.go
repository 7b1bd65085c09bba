// Package admin guards rule administration routes with a shared token.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	request "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/middleware/request"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/requestcontext"
)

// HeaderAdminToken carries the rule administration token.
const HeaderAdminToken = "X-Admin-Token"

// DefaultActor is recorded as the author of changes made with the admin
// token when no operator token identified someone more specific.
const DefaultActor = "admin"

// RequireAdminToken rejects requests without the expected X-Admin-Token.
// An empty expected token rejects everything.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderAdminToken)
			// Use constant-time comparison to prevent timing attacks
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}

			ctx := r.Context()
			if requestcontext.Actor(ctx) == "" {
				ctx = requestcontext.WithActor(ctx, DefaultActor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
