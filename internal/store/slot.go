package store

import (
	"context"

	"center-booking-api/internal/model"
)

func (s *Store) GetSlot(ctx context.Context, date, startTime, centerID string) (*model.Slot, error) {
	sl := &model.Slot{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, date, start_time, center_id, is_available
		 FROM slots WHERE date = $1 AND start_time = $2 AND center_id = $3`,
		date, startTime, centerID,
	).Scan(&sl.ID, &sl.Date, &sl.StartTime, &sl.CenterID, &sl.IsAvailable)
	if err != nil {
		return nil, err
	}
	return sl, nil
}

// ReleaseSlot makes the slot bookable again. Idempotent: releasing an
// already-available or non-existent slot does nothing.
func (s *Store) ReleaseSlot(ctx context.Context, date, startTime, centerID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE slots SET is_available = true
		 WHERE date = $1 AND start_time = $2 AND center_id = $3`,
		date, startTime, centerID,
	)
	return err
}

func (s *Store) ListAvailableSlots(ctx context.Context, date, centerID string) ([]model.Slot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, date, start_time, center_id, is_available
		 FROM slots
		 WHERE date = $1 AND center_id = $2 AND is_available = true
		 ORDER BY start_time`,
		date, centerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Slot
	for rows.Next() {
		var sl model.Slot
		if err := rows.Scan(&sl.ID, &sl.Date, &sl.StartTime, &sl.CenterID, &sl.IsAvailable); err != nil {
			return nil, err
		}
		out = append(out, sl)
	}
	return out, rows.Err()
}

func (s *Store) CreateSlot(ctx context.Context, sl *model.Slot) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO slots (id, date, start_time, center_id, is_available)
		 VALUES ($1,$2,$3,$4,$5)`,
		sl.ID, sl.Date, sl.StartTime, sl.CenterID, sl.IsAvailable,
	)
	return err
}
