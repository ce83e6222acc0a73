package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"center-booking-api/internal/model"
)

func (s *Store) CreateAdmin(ctx context.Context, a *model.Admin) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO admins (id, email, password_hash, full_name, role, is_active, two_factor_enabled)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.Email, a.PasswordHash, a.FullName, a.Role, a.IsActive, a.TwoFactorEnabled,
	)
	return err
}

func (s *Store) AdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	a := &model.Admin{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, full_name, role, is_active, two_factor_enabled, created_at
		 FROM admins WHERE lower(email) = lower($1)`, email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.Role, &a.IsActive, &a.TwoFactorEnabled, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
