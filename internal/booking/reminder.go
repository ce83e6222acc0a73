package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"center-booking-api/internal/notify"
	"center-booking-api/internal/store"
)

// Reminder sends next-day reminders for confirmed appointments that have
// not been reminded yet, stamping reminder_sent_at on success so each
// appointment is reminded at most once.
type Reminder struct {
	store   *store.Store
	sender  notify.Sender
	logger  *zap.Logger
	baseURL string
}

func NewReminder(st *store.Store, sender notify.Sender, logger *zap.Logger, baseURL string) *Reminder {
	return &Reminder{store: st, sender: sender, logger: logger, baseURL: baseURL}
}

// Run sweeps hourly until ctx is cancelled.
func (r *Reminder) Run(ctx context.Context) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep processes everything due tomorrow. Failed deliveries are skipped
// without stamping, so they are retried on the next sweep.
func (r *Reminder) Sweep(ctx context.Context) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	due, err := r.store.ListDueReminders(ctx, tomorrow)
	if err != nil {
		r.logger.Error("reminder sweep failed", zap.Error(err))
		return
	}

	for i := range due {
		apt := &due[i]
		bindings := map[string]string{
			"firstName": apt.FirstName,
			"center":    apt.CenterID,
			"date":      apt.Date,
			"time":      apt.StartTime,
			"cancelUrl": CancelURL(r.baseURL, apt),
		}
		err := r.sender.Send(ctx, notify.Message{
			To:      apt.Email,
			Subject: notify.Render(notify.ReminderSubject, bindings),
			Body:    notify.Render(notify.ReminderBody, bindings),
		})
		if err != nil {
			continue
		}
		if err := r.store.MarkReminderSent(ctx, apt.ID); err != nil {
			r.logger.Error("mark reminder sent", zap.String("appointment_id", apt.ID), zap.Error(err))
		}
	}
}
