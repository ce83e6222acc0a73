package handler

import (
	"errors"
	"html"
	"net/http"

	"go.uber.org/zap"

	"center-booking-api/internal/auth"
	"center-booking-api/internal/notify"
	"center-booking-api/internal/store"
)

// The cancellation endpoint is reached from an email link outside any app
// session, so every outcome renders a self-contained HTML page.
const cancelPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{title}}</title>
<style>
body { font-family: sans-serif; max-width: 40rem; margin: 4rem auto; padding: 0 1rem; color: #222; }
h1 { font-size: 1.4rem; }
</style>
</head>
<body>
<h1>{{title}}</h1>
<p>{{message}}</p>
</body>
</html>`

func renderCancelPage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(notify.Render(cancelPageHTML, map[string]string{
		"title":   html.EscapeString(title),
		"message": html.EscapeString(message),
	})))
}

func (h *Handler) CancelPage(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	token := r.URL.Query().Get("token")
	if id == "" || token == "" {
		renderCancelPage(w, http.StatusBadRequest, "Invalid link",
			"This cancellation link is incomplete. Please use the link from your confirmation email.")
		return
	}

	apt, err := h.d.Store.GetAppointment(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		renderCancelPage(w, http.StatusNotFound, "Appointment not found",
			"We could not find this appointment. It may have been removed.")
		return
	}
	if err != nil {
		h.d.Logger.Error("cancel lookup failed", zap.Error(err))
		renderCancelPage(w, http.StatusInternalServerError, "Something went wrong",
			"We could not process your request. Please try again later or call the center.")
		return
	}

	if !auth.VerifyCancelToken(apt.ID, apt.Email, token) {
		h.d.Logger.Warn("cancellation token rejected", zap.String("appointment_id", id))
		renderCancelPage(w, http.StatusForbidden, "Invalid link",
			"This cancellation link is not valid for this appointment.")
		return
	}

	_, err = h.d.Allocator.Cancel(r.Context(), id)
	if errors.Is(err, store.ErrAlreadyCancelled) {
		renderCancelPage(w, http.StatusOK, "Already cancelled",
			"This appointment has already been cancelled. Nothing else to do.")
		return
	}
	if err != nil {
		h.d.Logger.Error("cancellation failed", zap.String("appointment_id", id), zap.Error(err))
		renderCancelPage(w, http.StatusInternalServerError, "Something went wrong",
			"We could not cancel your appointment. Please try again later or call the center.")
		return
	}

	renderCancelPage(w, http.StatusOK, "Appointment cancelled",
		"Your appointment on "+apt.Date+" at "+apt.StartTime+" has been cancelled. The slot is available for others again.")
}
