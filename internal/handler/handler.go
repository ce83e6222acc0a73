package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"center-booking-api/internal/booking"
	"center-booking-api/internal/middleware"
	"center-booking-api/internal/notify"
	"center-booking-api/internal/ratelimit"
	"center-booking-api/internal/session"
	"center-booking-api/internal/store"
)

type Deps struct {
	Store         *store.Store
	Allocator     *booking.Allocator
	Sessions      *session.Store
	CSRF          *session.CSRFStore
	TwoFactor     *session.Challenge
	Limiter       *ratelimit.Limiter
	Soft          *ratelimit.SoftLimiter
	Sender        notify.Sender
	Logger        *zap.Logger
	BaseURL       string
	SecureCookies bool
}

type Handler struct {
	d Deps
}

func New(d Deps) *Handler {
	return &Handler{d: d}
}

// Routes wires the public and admin endpoints.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	form := middleware.RateLimit(h.d.Limiter, ratelimit.Form)
	throttle := middleware.Throttle(h.d.Soft)
	verified := middleware.RequireVerified(h.d.Sessions)
	csrf := middleware.CSRF(h.d.CSRF)

	mux.Handle("POST /api/appointments", form(http.HandlerFunc(h.CreateAppointment)))
	mux.HandleFunc("GET /cancel", h.CancelPage)
	mux.Handle("GET /api/slots", throttle(http.HandlerFunc(h.ListSlots)))

	mux.HandleFunc("POST /api/admin/login", h.AdminLogin)
	mux.HandleFunc("POST /api/admin/verify-2fa", h.VerifyTwoFactor)
	mux.HandleFunc("GET /api/admin/csrf-token", h.CSRFToken)
	mux.Handle("POST /api/admin/logout", csrf(http.HandlerFunc(h.Logout)))
	mux.Handle("GET /api/admin/appointments", verified(http.HandlerFunc(h.AdminListAppointments)))
	mux.Handle("POST /api/admin/appointments/{id}/cancel", verified(csrf(http.HandlerFunc(h.AdminCancelAppointment))))

	return mux
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.d.SecureCookies,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.d.SecureCookies,
	})
}
