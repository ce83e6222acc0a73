package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clocked(t *testing.T) (*Limiter, *time.Time) {
	t.Helper()
	now := time.Now()
	l := New()
	t.Cleanup(l.Stop)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestFirstAttemptAllowed(t *testing.T) {
	l, _ := clocked(t)
	res := l.Check("fresh", Policy{MaxAttempts: 5, Window: time.Minute})
	require.True(t, res.Allowed)
	assert.Equal(t, 4, res.Remaining)
}

func TestWindowDeniesAndResets(t *testing.T) {
	l, now := clocked(t)
	p := Policy{MaxAttempts: 5, Window: time.Minute}

	for i := 0; i < 5; i++ {
		res := l.Check("id", p)
		require.True(t, res.Allowed, "attempt %d should pass", i+1)
		assert.Equal(t, 4-i, res.Remaining)
	}

	res := l.Check("id", p)
	require.False(t, res.Allowed, "6th attempt in the window must be denied")
	assert.True(t, res.BlockedUntil.IsZero(), "no block configured")

	*now = now.Add(time.Minute + time.Millisecond)
	res = l.Check("id", p)
	require.True(t, res.Allowed, "new window should admit again")
	assert.Equal(t, 4, res.Remaining, "counter must restart at 1")
}

func TestBlockEscalation(t *testing.T) {
	l, now := clocked(t)
	start := *now
	p := Policy{MaxAttempts: 5, Window: time.Minute, BlockDuration: 30 * time.Minute}

	for i := 0; i < 5; i++ {
		require.True(t, l.Check("id", p).Allowed)
	}
	res := l.Check("id", p)
	require.False(t, res.Allowed)
	require.Equal(t, start.Add(30*time.Minute), res.BlockedUntil)
	blockedUntil := res.BlockedUntil

	// blocked attempts are denied without counting, even past the window
	*now = start.Add(5 * time.Minute)
	res = l.Check("id", p)
	require.False(t, res.Allowed)
	assert.Equal(t, blockedUntil, res.BlockedUntil)

	*now = blockedUntil.Add(-time.Millisecond)
	require.False(t, l.Check("id", p).Allowed)

	*now = blockedUntil.Add(time.Millisecond)
	res = l.Check("id", p)
	require.True(t, res.Allowed, "attempt after the block and window must pass")
	assert.Equal(t, 4, res.Remaining)
}

func TestIdentitiesAreIndependent(t *testing.T) {
	l, _ := clocked(t)
	p := Policy{MaxAttempts: 1, Window: time.Minute}

	require.True(t, l.Check("a", p).Allowed)
	require.False(t, l.Check("a", p).Allowed)
	require.True(t, l.Check("b", p).Allowed)
}

func TestSoftLimiter(t *testing.T) {
	s := NewSoft(1, 1)
	defer s.Stop()

	assert.True(t, s.Allow("a"))
	assert.False(t, s.Allow("a"), "burst exhausted")
	assert.True(t, s.Allow("b"), "other clients are unaffected")
}

func TestClientKey(t *testing.T) {
	assert.Equal(t, ClientKey("1.2.3.4", "ua"), ClientKey("1.2.3.4", "ua"))
	assert.NotEqual(t, ClientKey("1.2.3.4", "ua"), ClientKey("1.2.3.5", "ua"))
	assert.NotEqual(t, ClientKey("1.2.3.4", "ua"), ClientKey("1.2.3.4", "other"))
}

func TestLoginKey(t *testing.T) {
	assert.Equal(t, "login:admin@center.fr", LoginKey(" Admin@Center.FR ", "1.2.3.4", "ua"))
	assert.Equal(t, LoginKey("", "1.2.3.4", "ua"), "login:"+ClientKey("1.2.3.4", "ua"))
}
