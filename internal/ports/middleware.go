package ports

import (
	"fmt"
	"net/http"

	"github.com/Amund211/gamenight/internal/app"
	"github.com/Amund211/gamenight/internal/logging"
	"github.com/Amund211/gamenight/internal/ratelimiting"
	"github.com/Amund211/gamenight/internal/reporting"
)

const userEmailHeader = "X-User-Email"

func NewRateLimitMiddleware(rateLimiter ratelimiting.RequestRateLimiter, onLimitExceeded http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !rateLimiter.Consume(r) {
				onLimitExceeded(w, r)
				return
			}

			next(w, r)
		}
	}
}

func writeRateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusTooManyRequests, errorResponse{
		Success: false,
		Cause:   "rate limit exceeded",
	})
}

// NewAdminMiddleware only lets requests from admins through.
//
// The caller is identified by the X-User-Email header set by the proxy in front of us.
func NewAdminMiddleware(isAdmin app.IsAdmin) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			email := r.Header.Get(userEmailHeader)
			if email == "" {
				writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
					Success: false,
					Cause:   fmt.Sprintf("missing %s header", userEmailHeader),
				})
				return
			}

			admin, err := isAdmin(ctx, email)
			if err != nil {
				writeError(ctx, w, err)
				return
			}
			if !admin {
				logging.FromContext(ctx).InfoContext(ctx, "Rejected request from non-admin")
				writeJSON(ctx, w, http.StatusForbidden, errorResponse{
					Success: false,
					Cause:   "not an admin",
				})
				return
			}

			ctx = reporting.SetUserEmailInContext(ctx, email)
			next(w, r.WithContext(ctx))
		}
	}
}

func ComposeMiddlewares(middlewares ...func(http.HandlerFunc) http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	if len(middlewares) == 1 {
		return middlewares[0]
	}
	first := middlewares[0]
	rest := ComposeMiddlewares(middlewares[1:]...)
	return func(h http.HandlerFunc) http.HandlerFunc {
		return first(rest(h))
	}
}
