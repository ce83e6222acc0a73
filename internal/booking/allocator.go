package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"center-booking-api/internal/auth"
	"center-booking-api/internal/model"
	"center-booking-api/internal/notify"
	"center-booking-api/internal/store"
)

// Request carries a validated booking submission.
type Request struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Reason    string
	Date      string
	StartTime string
	CenterID  string
}

// DuplicateError reports an active appointment already held by the
// requester, naming the existing date/time so the caller can self-serve a
// cancellation.
type DuplicateError struct {
	ByEmail   bool
	ByName    bool
	Date      string
	StartTime string
}

func (e *DuplicateError) Error() string {
	var how string
	switch {
	case e.ByEmail && e.ByName:
		how = "this name and email"
	case e.ByEmail:
		how = "this email"
	default:
		how = "this name"
	}
	return fmt.Sprintf("an appointment under %s already exists on %s at %s; cancel it first to book a new one",
		how, e.Date, e.StartTime)
}

// Allocator owns slot reservation and release. Reservation is atomic at the
// store level, so two concurrent requests for one slot get exactly one
// winner.
type Allocator struct {
	store    *store.Store
	sender   notify.Sender
	logger   *zap.Logger
	baseURL  string
	opsEmail string
}

func NewAllocator(st *store.Store, sender notify.Sender, logger *zap.Logger, baseURL, opsEmail string) *Allocator {
	return &Allocator{store: st, sender: sender, logger: logger, baseURL: baseURL, opsEmail: opsEmail}
}

// CancelURL builds the stateless cancellation link embedded in emails.
func CancelURL(baseURL string, apt *model.Appointment) string {
	return fmt.Sprintf("%s/cancel?id=%s&token=%s",
		baseURL, apt.ID, auth.DeriveCancelToken(apt.ID, apt.Email))
}

// Reserve books the slot for req: duplicate guard, then the atomic
// reserve-and-insert. The confirmation email goes out asynchronously; a
// delivery failure never undoes the booking.
func (a *Allocator) Reserve(ctx context.Context, req Request) (*model.Appointment, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	byEmail, byName, err := a.store.FindActiveMatch(ctx, email, req.FirstName, req.LastName)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if byEmail != nil || byName != nil {
		existing := byEmail
		if existing == nil {
			existing = byName
		}
		return nil, &DuplicateError{
			ByEmail:   byEmail != nil,
			ByName:    byName != nil,
			Date:      existing.Date,
			StartTime: existing.StartTime,
		}
	}

	apt := &model.Appointment{
		ID:        uuid.New().String(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Phone:     req.Phone,
		Reason:    req.Reason,
		Date:      req.Date,
		StartTime: req.StartTime,
		CenterID:  req.CenterID,
		Status:    model.StatusConfirmed,
		CreatedAt: time.Now(),
	}
	if err := a.store.CreateAppointment(ctx, apt); err != nil {
		return nil, err
	}

	a.logger.Info("slot reserved",
		zap.String("appointment_id", apt.ID),
		zap.String("date", apt.Date),
		zap.String("start_time", apt.StartTime),
		zap.String("center_id", apt.CenterID),
	)

	go a.sendConfirmation(context.WithoutCancel(ctx), apt)
	return apt, nil
}

// Cancel transitions the appointment to cancelled and frees its slot. A
// repeat cancellation surfaces store.ErrAlreadyCancelled alongside the
// appointment so callers can render the idempotent outcome.
func (a *Allocator) Cancel(ctx context.Context, id string) (*model.Appointment, error) {
	apt, err := a.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.store.CancelAppointment(ctx, id); err != nil {
		return apt, err
	}
	apt.Status = model.StatusCancelled

	a.logger.Info("appointment cancelled",
		zap.String("appointment_id", apt.ID),
		zap.String("date", apt.Date),
		zap.String("start_time", apt.StartTime),
		zap.String("center_id", apt.CenterID),
	)

	go a.alertOperators(context.WithoutCancel(ctx), apt)
	return apt, nil
}

// Release frees a slot directly. Idempotent.
func (a *Allocator) Release(ctx context.Context, date, startTime, centerID string) error {
	return a.store.ReleaseSlot(ctx, date, startTime, centerID)
}

func (a *Allocator) sendConfirmation(ctx context.Context, apt *model.Appointment) {
	bindings := map[string]string{
		"firstName": apt.FirstName,
		"lastName":  apt.LastName,
		"center":    apt.CenterID,
		"date":      apt.Date,
		"time":      apt.StartTime,
		"cancelUrl": CancelURL(a.baseURL, apt),
	}
	_ = a.sender.Send(ctx, notify.Message{
		To:      apt.Email,
		Subject: notify.Render(notify.ConfirmationSubject, bindings),
		Body:    notify.Render(notify.ConfirmationBody, bindings),
	})
}

func (a *Allocator) alertOperators(ctx context.Context, apt *model.Appointment) {
	if a.opsEmail == "" {
		return
	}
	bindings := map[string]string{
		"firstName": apt.FirstName,
		"lastName":  apt.LastName,
		"center":    apt.CenterID,
		"date":      apt.Date,
		"time":      apt.StartTime,
	}
	_ = a.sender.Send(ctx, notify.Message{
		To:      a.opsEmail,
		Subject: notify.Render(notify.CancellationAlertSubject, bindings),
		Body:    notify.Render(notify.CancellationAlertBody, bindings),
	})
}
