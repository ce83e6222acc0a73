package session

import (
	"time"

	"center-booking-api/internal/auth"
	"center-booking-api/internal/cache"
	"center-booking-api/internal/model"
)

const sessionTTL = 30 * 24 * time.Hour

// Session is the server-side state of an admin login. A session created
// before two-factor verification exists but must not authorize privileged
// calls until MarkVerified flips it.
type Session struct {
	Token             string
	AdminID           string
	Email             string
	FullName          string
	Role              string
	CreatedAt         time.Time
	ExpiresAt         time.Time
	TwoFactorVerified bool
}

type Store struct {
	sessions *cache.Cache[Session]
}

func NewStore() *Store {
	return &Store{sessions: cache.New[Session](5 * time.Minute)}
}

func (s *Store) Stop() { s.sessions.Stop() }

func (s *Store) Create(admin *model.Admin, twoFactorVerified bool) (string, error) {
	tok, err := auth.NewToken()
	if err != nil {
		return "", err
	}
	now := time.Now()
	s.sessions.Set(tok, Session{
		Token:             tok,
		AdminID:           admin.ID,
		Email:             admin.Email,
		FullName:          admin.FullName,
		Role:              admin.Role,
		CreatedAt:         now,
		ExpiresAt:         now.Add(sessionTTL),
		TwoFactorVerified: twoFactorVerified,
	}, sessionTTL)
	return tok, nil
}

func (s *Store) Get(token string) (Session, bool) {
	return s.sessions.Get(token)
}

// MarkVerified promotes a temporary session after a successful 2FA check.
// Reports false when the session is gone or expired.
func (s *Store) MarkVerified(token string) bool {
	promoted := false
	s.sessions.Mutate(token, func(sess Session, ok bool) (Session, time.Duration, bool) {
		if !ok {
			return sess, 0, false
		}
		sess.TwoFactorVerified = true
		promoted = true
		return sess, time.Until(sess.ExpiresAt), true
	})
	return promoted
}

func (s *Store) Delete(token string) {
	s.sessions.Delete(token)
}
