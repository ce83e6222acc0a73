package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
)

type ctxKey string

// SessionKey carries the verified admin session through the request context.
const SessionKey ctxKey = "admin_session"

// SessionCookie is the name of the admin session cookie. The core only
// produces and validates the opaque token; this layer moves it over HTTP.
const SessionCookie = "admin_session"

// CSRFHeader must carry a valid token on every non-GET admin call.
const CSRFHeader = "X-CSRF-Token"

// ClientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
