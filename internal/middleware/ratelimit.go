package middleware

import (
	"net/http"
	"time"

	"center-booking-api/internal/ratelimit"
)

type rateLimitResponse struct {
	Error        string     `json:"error"`
	ResetTime    time.Time  `json:"resetTime"`
	BlockedUntil *time.Time `json:"blockedUntil,omitempty"`
}

// RateLimit applies p per client fingerprint, answering 429 with precise
// back-off timing when the window or a block denies the request.
func RateLimit(l *ratelimit.Limiter, p ratelimit.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ratelimit.ClientKey(ClientIP(r), r.UserAgent())
			res := l.Check(key, p)
			if !res.Allowed {
				body := rateLimitResponse{Error: "too many requests", ResetTime: res.ResetAt}
				if !res.BlockedUntil.IsZero() {
					body.BlockedUntil = &res.BlockedUntil
				}
				writeJSON(w, http.StatusTooManyRequests, body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Throttle applies the soft per-client limiter to read-mostly endpoints.
// Denials carry no block: the client may retry right after backing off.
func Throttle(s *ratelimit.SoftLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.Allow(ratelimit.ClientKey(ClientIP(r), r.UserAgent())) {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
