package handler

import (
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"center-booking-api/internal/booking"
	"center-booking-api/internal/model"
	"center-booking-api/internal/store"
)

type createAppointmentRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Reason    string `json:"reason"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	CenterID  string `json:"centerId"`
	Honeypot  string `json:"honeypot"`
}

type appointmentJSON struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	CenterID  string `json:"centerId"`
	Status    string `json:"status"`
}

func toJSON(a *model.Appointment) appointmentJSON {
	return appointmentJSON{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Phone:     a.Phone,
		Date:      a.Date,
		Time:      a.StartTime,
		CenterID:  a.CenterID,
		Status:    a.Status,
	}
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// a human never fills the hidden field; pretend it worked and move on
	if req.Honeypot != "" {
		h.d.Logger.Info("honeypot tripped, submission discarded")
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"appointment": map[string]string{"id": uuid.New().String()},
		})
		return
	}

	if msg := validateBooking(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	apt, err := h.d.Allocator.Reserve(r.Context(), booking.Request{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Reason:    req.Reason,
		Date:      req.Date,
		StartTime: req.Time,
		CenterID:  req.CenterID,
	})
	if err != nil {
		var dup *booking.DuplicateError
		switch {
		case errors.As(err, &dup):
			writeError(w, http.StatusConflict, dup.Error())
		case errors.Is(err, store.ErrSlotTaken):
			writeError(w, http.StatusConflict, "slot no longer available, please pick another time")
		default:
			h.d.Logger.Error("booking failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not complete the booking, please try again or call the center")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"appointment": toJSON(apt),
	})
}

func validateBooking(req *createAppointmentRequest) string {
	switch {
	case req.FirstName == "":
		return "firstName is required"
	case req.LastName == "":
		return "lastName is required"
	case req.Email == "":
		return "email is required"
	case req.Phone == "":
		return "phone is required"
	case req.Date == "":
		return "date is required"
	case req.Time == "":
		return "time is required"
	case req.CenterID == "":
		return "centerId is required"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "email is invalid"
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return "date must be YYYY-MM-DD"
	}
	at, err := time.Parse("15:04", req.Time)
	if err != nil {
		return "time must be HH:MM"
	}
	when := day.Add(time.Duration(at.Hour())*time.Hour + time.Duration(at.Minute())*time.Minute)
	if when.Before(time.Now()) {
		return "cannot book in the past"
	}
	return ""
}

func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	centerID := r.URL.Query().Get("centerId")
	if date == "" || centerID == "" {
		writeError(w, http.StatusBadRequest, "date and centerId are required")
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	slots, err := h.d.Store.ListAvailableSlots(r.Context(), date, centerID)
	if err != nil {
		h.d.Logger.Error("list slots failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]map[string]string, 0, len(slots))
	for _, sl := range slots {
		out = append(out, map[string]string{
			"date":      sl.Date,
			"startTime": sl.StartTime,
			"centerId":  sl.CenterID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": out})
}
