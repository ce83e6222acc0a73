package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"center-booking-api/internal/model"
)

const appointmentCols = `id, first_name, last_name, email, phone, reason,
	date, start_time, center_id, status, created_at, reminder_sent_at`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.Reason,
		&a.Date, &a.StartTime, &a.CenterID, &a.Status, &a.CreatedAt, &a.ReminderSentAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAppointment inserts the appointment and flips its slot unavailable
// as one transaction. The conditional slot update decides the single winner
// under concurrency; when no slot row exists (implicit slots) the partial
// unique index on active appointments is the backstop. Either failure mode
// rolls the whole reservation back and surfaces ErrSlotTaken.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE slots SET is_available = false
		 WHERE date = $1 AND start_time = $2 AND center_id = $3 AND is_available = true`,
		a.Date, a.StartTime, a.CenterID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM slots WHERE date = $1 AND start_time = $2 AND center_id = $3)`,
			a.Date, a.StartTime, a.CenterID,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrSlotTaken
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO appointments (id, first_name, last_name, email, phone, reason,
		                           date, start_time, center_id, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.FirstName, a.LastName, a.Email, a.Phone, a.Reason,
		a.Date, a.StartTime, a.CenterID, a.Status, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return err
	}

	return tx.Commit(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// FindActiveMatch looks for confirmed or pending appointments clashing with
// the requester's identity: email match is case-insensitive, name match is
// exact first+last. A single row can match both ways.
func (s *Store) FindActiveMatch(ctx context.Context, email, firstName, lastName string) (byEmail, byName *model.Appointment, err error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+`
		 FROM appointments
		 WHERE status IN ('confirmed','pending')
		   AND (lower(email) = lower($1) OR (first_name = $2 AND last_name = $3))`,
		email, firstName, lastName,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, nil, err
		}
		if byEmail == nil && strings.EqualFold(a.Email, email) {
			byEmail = a
		}
		if byName == nil && a.FirstName == firstName && a.LastName == lastName {
			byName = a
		}
	}
	return byEmail, byName, rows.Err()
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// CancelAppointment marks the appointment cancelled and frees its slot in
// one transaction. A repeat call returns ErrAlreadyCancelled without
// touching the slot again.
func (s *Store) CancelAppointment(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var date, start, center string
	err = tx.QueryRow(ctx,
		`UPDATE appointments SET status = 'cancelled'
		 WHERE id = $1 AND status <> 'cancelled'
		 RETURNING date, start_time, center_id`, id,
	).Scan(&date, &start, &center)
	if errors.Is(err, pgx.ErrNoRows) {
		var status string
		err = tx.QueryRow(ctx, `SELECT status FROM appointments WHERE id = $1`, id).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadyCancelled
	}
	if err != nil {
		return err
	}

	// idempotent; implicit slots have no row to flip
	_, err = tx.Exec(ctx,
		`UPDATE slots SET is_available = true
		 WHERE date = $1 AND start_time = $2 AND center_id = $3`,
		date, start, center,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListAppointmentsByDate returns appointments for a date, optionally
// filtered by center, most recent slot first.
func (s *Store) ListAppointmentsByDate(ctx context.Context, date, centerID string) ([]model.Appointment, error) {
	q := `SELECT ` + appointmentCols + ` FROM appointments WHERE date = $1`
	args := []any{date}
	if centerID != "" {
		q += ` AND center_id = $2`
		args = append(args, centerID)
	}
	q += ` ORDER BY start_time`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// ListDueReminders returns confirmed appointments on date that have not
// been reminded yet.
func (s *Store) ListDueReminders(ctx context.Context, date string) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+`
		 FROM appointments
		 WHERE date = $1 AND status = 'confirmed' AND reminder_sent_at IS NULL`,
		date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) MarkReminderSent(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE appointments SET reminder_sent_at = now() WHERE id = $1`, id)
	return err
}
