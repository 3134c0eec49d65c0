package middleware

import (
	"net/http"

	"go-wiki-api/internal/logger"

	"github.com/casbin/casbin/v2"
)

// Authorizer creates a new middleware for authorization.
// It checks the principal's permissions using Casbin, matching the request
// path and method against the stored policies.
func Authorizer(e casbin.IEnforcer, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := GetUserInfo(r.Context()).Subject

			allowed, err := e.Enforce(subject, r.URL.Path, r.Method)
			if err != nil {
				log.Error(err, "Authorization error")
				WriteError(w, Internal(err, "Internal server error"))
				return
			}

			if !allowed {
				WriteError(w, NewError(http.StatusForbidden, "auth/forbidden", "Forbidden"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
