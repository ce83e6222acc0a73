package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"center-booking-api/internal/cache"
)

// Policy bounds attempts per identity within a fixed window. A zero
// BlockDuration means a breach is denied only for the rest of the window.
type Policy struct {
	MaxAttempts   int
	Window        time.Duration
	BlockDuration time.Duration
}

var (
	// Login covers credential submissions, keyed by the submitted email
	// when present so lockouts follow the account rather than the address.
	Login = Policy{MaxAttempts: 5, Window: 15 * time.Minute, BlockDuration: 30 * time.Minute}
	// Form covers public form submissions such as bookings.
	Form = Policy{MaxAttempts: 10, Window: time.Minute, BlockDuration: 5 * time.Minute}
)

type Result struct {
	Allowed      bool
	Remaining    int
	ResetAt      time.Time
	BlockedUntil time.Time
}

type entry struct {
	count        int
	windowEndsAt time.Time
	blockedUntil time.Time
}

// Limiter counts attempts per identity in fixed windows and escalates to
// timed blocks when a policy ceiling is breached.
type Limiter struct {
	entries *cache.Cache[entry]
	now     func() time.Time
}

func New() *Limiter {
	return &Limiter{
		entries: cache.New[entry](time.Minute),
		now:     time.Now,
	}
}

func (l *Limiter) Stop() { l.entries.Stop() }

// Check counts one attempt for identity against p. Attempts made while a
// block is active are denied without touching the counter.
func (l *Limiter) Check(identity string, p Policy) Result {
	now := l.now()
	var res Result
	l.entries.Mutate(identity, func(e entry, ok bool) (entry, time.Duration, bool) {
		if ok && now.Before(e.blockedUntil) {
			res = Result{ResetAt: e.windowEndsAt, BlockedUntil: e.blockedUntil}
			return e, retention(e, now), true
		}
		if !ok || !now.Before(e.windowEndsAt) {
			e = entry{windowEndsAt: now.Add(p.Window)}
		}
		e.count++
		if e.count > p.MaxAttempts {
			if p.BlockDuration > 0 {
				e.blockedUntil = now.Add(p.BlockDuration)
			}
			res = Result{ResetAt: e.windowEndsAt, BlockedUntil: e.blockedUntil}
			return e, retention(e, now), true
		}
		res = Result{Allowed: true, Remaining: p.MaxAttempts - e.count, ResetAt: e.windowEndsAt}
		return e, retention(e, now), true
	})
	return res
}

// retention keeps the entry alive until both the window and any block have
// elapsed, after which the cache sweep collects it.
func retention(e entry, now time.Time) time.Duration {
	end := e.windowEndsAt
	if e.blockedUntil.After(end) {
		end = e.blockedUntil
	}
	return end.Sub(now)
}

// ClientKey derives a throttling identity from the source address and a
// coarse client fingerprint.
func ClientKey(ip, userAgent string) string {
	h := sha256.Sum256([]byte(ip + "|" + userAgent))
	return hex.EncodeToString(h[:16])
}

// LoginKey keys login attempts by the submitted email when present, falling
// back to the client fingerprint.
func LoginKey(email, ip, userAgent string) string {
	if e := strings.ToLower(strings.TrimSpace(email)); e != "" {
		return "login:" + e
	}
	return "login:" + ClientKey(ip, userAgent)
}
