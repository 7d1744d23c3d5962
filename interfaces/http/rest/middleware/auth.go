package middleware

import (
	"net/http"

	"notegraph/pkg/auth"
	"notegraph/pkg/common"
)

// Authenticate validates the bearer token and attaches the user to the
// request context. A nil validator disables authentication, the default
// outside production.
func Authenticate(validator *auth.JWTValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validator == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validator.ValidateToken(r.Header.Get("Authorization"))
			if err != nil {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), claims)))
		})
	}
}
