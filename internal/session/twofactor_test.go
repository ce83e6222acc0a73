package session_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"center-booking-api/internal/session"
)

func TestIssueFormat(t *testing.T) {
	c := session.NewChallenge()
	defer c.Stop()

	code, err := c.Issue("admin@center.fr")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
}

func TestVerifyConsumesOnSuccess(t *testing.T) {
	c := session.NewChallenge()
	defer c.Stop()

	code, err := c.Issue("admin@center.fr")
	require.NoError(t, err)

	require.NoError(t, c.Verify("admin@center.fr", code))
	// replaying the same code must fail: the entry is gone
	assert.ErrorIs(t, c.Verify("admin@center.fr", code), session.ErrCodeNotFound)
}

func TestVerifySecondAttemptSucceeds(t *testing.T) {
	c := session.NewChallenge()
	defer c.Stop()

	code, err := c.Issue("admin@center.fr")
	require.NoError(t, err)

	err = c.Verify("admin@center.fr", "000000")
	if code == "000000" {
		require.NoError(t, err)
		return
	}
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 attempt(s) remaining")

	require.NoError(t, c.Verify("admin@center.fr", code))
}

func TestBoundedRetries(t *testing.T) {
	c := session.NewChallenge()
	defer c.Stop()

	code, err := c.Issue("admin@center.fr")
	require.NoError(t, err)

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	for i := 0; i < 3; i++ {
		require.Error(t, c.Verify("admin@center.fr", wrong))
	}

	// the 4th attempt is rejected before comparison, even with the right code
	assert.ErrorIs(t, c.Verify("admin@center.fr", code), session.ErrTooManyAttempts)
	// and the entry is gone, forcing re-issuance
	assert.ErrorIs(t, c.Verify("admin@center.fr", code), session.ErrCodeNotFound)
}

func TestReissueReplacesPendingCode(t *testing.T) {
	c := session.NewChallenge()
	defer c.Stop()

	first, err := c.Issue("admin@center.fr")
	require.NoError(t, err)
	second, err := c.Issue("admin@center.fr")
	require.NoError(t, err)

	if first != second {
		require.Error(t, c.Verify("admin@center.fr", first), "discarded code must not verify")
	}
	require.NoError(t, c.Verify("admin@center.fr", second))
}

func TestVerifyUnknownEmail(t *testing.T) {
	c := session.NewChallenge()
	defer c.Stop()

	assert.ErrorIs(t, c.Verify("nobody@center.fr", "123456"), session.ErrCodeNotFound)
}

func TestEmailKeyIsCaseInsensitive(t *testing.T) {
	c := session.NewChallenge()
	defer c.Stop()

	code, err := c.Issue("Admin@Center.FR")
	require.NoError(t, err)
	require.NoError(t, c.Verify("admin@center.fr", code))
}
