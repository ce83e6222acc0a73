package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"center-booking-api/internal/model"
	"center-booking-api/internal/session"
)

func testAdmin() *model.Admin {
	return &model.Admin{
		ID:       "admin-1",
		Email:    "admin@center.fr",
		FullName: "Ada Admin",
		Role:     "admin",
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := session.NewStore()
	defer s.Stop()

	tok, err := s.Create(testAdmin(), false)
	require.NoError(t, err)
	require.Len(t, tok, 64)

	sess, ok := s.Get(tok)
	require.True(t, ok)
	assert.Equal(t, "admin-1", sess.AdminID)
	assert.False(t, sess.TwoFactorVerified, "fresh session must start unverified")

	require.True(t, s.MarkVerified(tok))
	sess, ok = s.Get(tok)
	require.True(t, ok)
	assert.True(t, sess.TwoFactorVerified)

	s.Delete(tok)
	_, ok = s.Get(tok)
	assert.False(t, ok)
}

func TestCreateVerified(t *testing.T) {
	s := session.NewStore()
	defer s.Stop()

	tok, err := s.Create(testAdmin(), true)
	require.NoError(t, err)

	sess, ok := s.Get(tok)
	require.True(t, ok)
	assert.True(t, sess.TwoFactorVerified)
}

func TestMarkVerifiedMissingSession(t *testing.T) {
	s := session.NewStore()
	defer s.Stop()

	assert.False(t, s.MarkVerified("nope"))
}

func TestTokensAreUnique(t *testing.T) {
	s := session.NewStore()
	defer s.Stop()

	a, err := s.Create(testAdmin(), false)
	require.NoError(t, err)
	b, err := s.Create(testAdmin(), false)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
