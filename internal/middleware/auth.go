package middleware

import (
	"context"
	"net/http"

	"center-booking-api/internal/session"
)

// RequireVerified admits only sessions that completed two-factor
// verification. A session that exists but is still temporary is treated as
// unauthenticated for privileged calls.
func RequireVerified(sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookie)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}
			sess, ok := sessions.Get(c.Value)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}
			if !sess.TwoFactorVerified {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "two-factor verification required"})
				return
			}
			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CSRF enforces the token header on state-changing requests. Read-only
// methods are exempt by policy.
func CSRF(store *session.CSRFStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if !store.Verify(r.Header.Get(CSRFHeader)) {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid or missing CSRF token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
