package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"center-booking-api/internal/auth"
	"center-booking-api/internal/middleware"
	"center-booking-api/internal/model"
	"center-booking-api/internal/notify"
	"center-booking-api/internal/ratelimit"
	"center-booking-api/internal/store"
)

type adminJSON struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key := ratelimit.LoginKey(req.Email, middleware.ClientIP(r), r.UserAgent())
	res := h.d.Limiter.Check(key, ratelimit.Login)
	if !res.Allowed {
		// repeated breaches on one identity look like brute force
		h.d.Logger.Warn("login rate limited",
			zap.String("ip", middleware.ClientIP(r)),
			zap.Bool("blocked", !res.BlockedUntil.IsZero()),
		)
		body := map[string]any{"error": "too many login attempts", "resetTime": res.ResetAt}
		if !res.BlockedUntil.IsZero() {
			body["blockedUntil"] = res.BlockedUntil
		}
		writeJSON(w, http.StatusTooManyRequests, body)
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	admin, err := h.d.Store.AdminByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !auth.CheckPassword(admin.PasswordHash, req.Password)) {
		// never reveal which of the two was wrong
		h.d.Logger.Warn("failed admin login",
			zap.String("ip", middleware.ClientIP(r)),
			zap.Int("attempts_remaining", res.Remaining),
		)
		writeError(w, http.StatusUnauthorized, "email or password incorrect")
		return
	}
	if err != nil {
		h.d.Logger.Error("admin lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !admin.IsActive {
		h.d.Logger.Warn("login on disabled account", zap.String("admin_id", admin.ID))
		writeError(w, http.StatusForbidden, "account disabled")
		return
	}

	if !admin.TwoFactorEnabled {
		tok, err := h.d.Sessions.Create(admin, true)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		h.setSessionCookie(w, tok)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"admin":   adminJSON{ID: admin.ID, Email: admin.Email, FullName: admin.FullName, Role: admin.Role},
		})
		return
	}

	tok, err := h.d.Sessions.Create(admin, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	code, err := h.d.TwoFactor.Issue(admin.Email)
	if err != nil {
		h.d.Sessions.Delete(tok)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	go h.sendTwoFactorCode(context.WithoutCancel(r.Context()), admin, code)

	h.setSessionCookie(w, tok)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"requiresTwoFactor": true,
	})
}

func (h *Handler) sendTwoFactorCode(ctx context.Context, admin *model.Admin, code string) {
	bindings := map[string]string{"code": code}
	_ = h.d.Sender.Send(ctx, notify.Message{
		To:      admin.Email,
		Subject: notify.TwoFactorSubject,
		Body:    notify.Render(notify.TwoFactorBody, bindings),
	})
}

func (h *Handler) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(middleware.SessionCookie)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "no active login session")
		return
	}
	sess, ok := h.d.Sessions.Get(c.Value)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no active login session")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "code required")
		return
	}

	if err := h.d.TwoFactor.Verify(sess.Email, req.Code); err != nil {
		h.d.Logger.Warn("two-factor verification failed",
			zap.String("admin_id", sess.AdminID),
			zap.String("reason", err.Error()),
		)
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.d.Sessions.MarkVerified(sess.Token)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"admin":   adminJSON{ID: sess.AdminID, Email: sess.Email, FullName: sess.FullName, Role: sess.Role},
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookie); err == nil {
		h.d.Sessions.Delete(c.Value)
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if c, err := r.Cookie(middleware.SessionCookie); err == nil {
		sessionID = c.Value
	}
	tok, ttl, err := h.d.CSRF.Issue(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"csrfToken": tok,
		"expiresIn": int(ttl.Seconds()),
	})
}

func (h *Handler) AdminListAppointments(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	apts, err := h.d.Store.ListAppointmentsByDate(r.Context(), date, r.URL.Query().Get("centerId"))
	if err != nil {
		h.d.Logger.Error("list appointments failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]appointmentJSON, 0, len(apts))
	for i := range apts {
		out = append(out, toJSON(&apts[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": out})
}

func (h *Handler) AdminCancelAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}

	_, err := h.d.Allocator.Cancel(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, store.ErrAlreadyCancelled):
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "alreadyCancelled": true})
	case err != nil:
		h.d.Logger.Error("admin cancel failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
